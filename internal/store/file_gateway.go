package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/session"
)

// FileGateway is the local fallback store: one pretty-printed JSON
// document per tenant. Change notifications come from watching the
// store directory, so even this instance's own writes echo back through
// the subscription like they would from a remote store.
type FileGateway struct {
	path   string
	tenant string
	token  string
	logger *zap.Logger

	mu   sync.Mutex
	sess *session.Session

	debounce debouncer
}

func NewFileGateway(path, tenant, token string, logger *zap.Logger) *FileGateway {
	return &FileGateway{
		path:   path,
		tenant: tenant,
		token:  token,
		logger: logger,
	}
}

func (g *FileGateway) Open() error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

func (g *FileGateway) EnsureSession(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sess != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := session.Establish(g.token)
	if err != nil {
		return err
	}
	g.sess = &sess
	g.logger.Debug("session established", zap.String("session_id", sess.ID))
	return nil
}

func (g *FileGateway) Exists() (bool, error) {
	_, err := os.Stat(g.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check document: %w", err)
	}
	return true, nil
}

func (g *FileGateway) Subscribe(onSnapshot func(models.PersistedState), onError func(error)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &SubscriptionError{Err: err}
	}
	// Watch the directory, not the file: the document may not exist yet
	// and editors replace files via rename.
	if err := watcher.Add(filepath.Dir(g.path)); err != nil {
		watcher.Close()
		return nil, &SubscriptionError{Err: err}
	}

	if state, err := g.readDocument(); err == nil {
		onSnapshot(state)
	} else if !os.IsNotExist(err) {
		onError(&SubscriptionError{Err: err})
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(g.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				state, err := g.readDocument()
				if err != nil {
					if !os.IsNotExist(err) {
						onError(&SubscriptionError{Err: err})
					}
					continue
				}
				onSnapshot(state)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onError(&SubscriptionError{Err: err})
			}
		}
	}()

	return cancel, nil
}

func (g *FileGateway) readDocument() (models.PersistedState, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return models.PersistedState{}, err
	}
	var state models.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.PersistedState{}, fmt.Errorf("failed to parse document: %w", err)
	}
	return state, nil
}

func (g *FileGateway) WriteImmediate(state models.PersistedState) error {
	g.debounce.cancel()

	g.mu.Lock()
	sess := g.sess
	g.mu.Unlock()
	if sess == nil {
		return &WriteError{Err: &session.AuthError{Reason: "no session, writes disabled"}}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &WriteError{Err: fmt.Errorf("failed to serialize document: %w", err)}
	}
	if err := os.WriteFile(g.path, data, 0600); err != nil {
		return &WriteError{Err: fmt.Errorf("failed to write document: %w", err)}
	}
	return nil
}

func (g *FileGateway) WriteDebounced(state models.PersistedState, delay time.Duration) {
	g.debounce.schedule(state, delay, func(latest models.PersistedState) {
		if err := g.WriteImmediate(latest); err != nil {
			g.logger.Warn("debounced write failed", zap.Error(err))
		}
	})
}

func (g *FileGateway) CancelPending() {
	g.debounce.cancel()
}

func (g *FileGateway) Close() error {
	g.debounce.cancel()
	return nil
}
