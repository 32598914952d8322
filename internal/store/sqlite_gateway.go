package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	tenant     TEXT PRIMARY KEY,
	rev        INTEGER NOT NULL,
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// pollInterval is how often the subscription checks the document
// revision. The revision counter makes the check a single indexed read.
const pollInterval = 250 * time.Millisecond

// SQLiteGateway stores the tenant's document as a single row with a
// revision counter. It mirrors a remote document store: subscribers see
// every revision change, including this instance's own writes.
type SQLiteGateway struct {
	path   string
	tenant string
	token  string
	logger *zap.Logger

	mu   sync.Mutex
	db   *sql.DB
	sess *session.Session

	debounce debouncer
}

func NewSQLiteGateway(path, tenant, token string, logger *zap.Logger) *SQLiteGateway {
	return &SQLiteGateway{
		path:   path,
		tenant: tenant,
		token:  token,
		logger: logger,
	}
}

// Open creates the store directory and schema if needed.
func (g *SQLiteGateway) Open() error {
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", g.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	g.mu.Lock()
	g.db = db
	g.mu.Unlock()
	return nil
}

func (g *SQLiteGateway) EnsureSession(ctx context.Context) error {
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

func (g *SQLiteGateway) Exists() (bool, error) {
	db, err := g.handle()
	if err != nil {
		return false, err
	}
	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM documents WHERE tenant = ?`, g.tenant).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check document: %w", err)
	}
	return n > 0, nil
}

func (g *SQLiteGateway) Subscribe(onSnapshot func(models.PersistedState), onError func(error)) (func(), error) {
	db, err := g.handle()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }

	// Deliver the current document immediately if it exists, then watch
	// the revision counter.
	lastRev := int64(-1)
	if state, rev, err := g.read(db); err == nil && rev >= 0 {
		lastRev = rev
		onSnapshot(state)
	}

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				state, rev, err := g.read(db)
				if err != nil {
					onError(&SubscriptionError{Err: err})
					continue
				}
				if rev >= 0 && rev != lastRev {
					lastRev = rev
					onSnapshot(state)
				}
			}
		}
	}()

	return cancel, nil
}

// read returns the document and its revision, or rev -1 when the
// document does not exist yet.
func (g *SQLiteGateway) read(db *sql.DB) (models.PersistedState, int64, error) {
	var rev int64
	var doc string
	err := db.QueryRow(`SELECT rev, doc FROM documents WHERE tenant = ?`, g.tenant).Scan(&rev, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PersistedState{}, -1, nil
	}
	if err != nil {
		return models.PersistedState{}, -1, fmt.Errorf("failed to read document: %w", err)
	}

	var state models.PersistedState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return models.PersistedState{}, -1, fmt.Errorf("failed to parse document: %w", err)
	}
	return state, rev, nil
}

func (g *SQLiteGateway) WriteImmediate(state models.PersistedState) error {
	g.debounce.cancel()

	db, err := g.writableHandle()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(state)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("failed to serialize document: %w", err)}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.Exec(`
		INSERT INTO documents (tenant, rev, doc, updated_at) VALUES (?, 1, ?, ?)
		ON CONFLICT(tenant) DO UPDATE SET rev = rev + 1, doc = excluded.doc, updated_at = excluded.updated_at`,
		g.tenant, string(doc), now)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("failed to write document: %w", err)}
	}
	return nil
}

func (g *SQLiteGateway) WriteDebounced(state models.PersistedState, delay time.Duration) {
	g.debounce.schedule(state, delay, func(latest models.PersistedState) {
		if err := g.WriteImmediate(latest); err != nil {
			g.logger.Warn("debounced write failed", zap.Error(err))
		}
	})
}

func (g *SQLiteGateway) CancelPending() {
	g.debounce.cancel()
}

func (g *SQLiteGateway) Close() error {
	g.debounce.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		return err
	}
	return nil
}

func (g *SQLiteGateway) handle() (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil, fmt.Errorf("store not opened")
	}
	return g.db, nil
}

func (g *SQLiteGateway) writableHandle() (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil, &WriteError{Err: fmt.Errorf("store not opened")}
	}
	if g.sess == nil {
		return nil, &WriteError{Err: &session.AuthError{Reason: "no session, writes disabled"}}
	}
	return g.db, nil
}
