package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amholt/bravely/internal/goal"
	"github.com/amholt/bravely/internal/ledger"
	"github.com/amholt/bravely/internal/leveling"
	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/store"
)

// ConnState is the connection indicator shown to the user. Error states
// are advisory and self-heal on the next successful round-trip.
type ConnState string

const (
	ConnConnecting ConnState = "connecting"
	ConnConnected  ConnState = "connected"
	ConnSaving     ConnState = "saving"
	ConnError      ConnState = "error"
)

// Reconciler owns the single authoritative in-memory copy of the
// persisted state plus the UI-only fields beside it. All mutation
// funnels through ApplyLocalMutation and ApplyRemoteSnapshot; the two
// asynchronous boundaries (the debounce timer firing and the gateway
// subscription callback) both land here under one mutex.
type Reconciler struct {
	gateway  store.Gateway
	ledger   *ledger.Ledger
	logger   *zap.Logger
	debounce time.Duration

	mu        sync.Mutex
	state     models.PersistedState
	ui        UIState
	status    ConnState
	lastErr   error
	timer     *time.Timer
	cancelSub func()

	onChange func()
}

func New(gateway store.Gateway, debounce time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		gateway:  gateway,
		ledger:   ledger.New(),
		logger:   logger,
		debounce: debounce,
		state:    models.DefaultState(),
		status:   ConnConnecting,
	}
}

// SetOnChange registers a hook fired after any state or status change.
// The hook runs outside the reconciler lock.
func (r *Reconciler) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Start establishes the session, subscribes for snapshots, and performs
// the initial creating write when no document exists yet. It blocks
// until the first snapshot has been applied, an error occurs, or ctx
// expires.
func (r *Reconciler) Start(ctx context.Context) error {
	r.setStatus(ConnConnecting, nil)

	if err := r.gateway.EnsureSession(ctx); err != nil {
		r.setStatus(ConnError, err)
		return err
	}

	exists, err := r.gateway.Exists()
	if err != nil {
		r.setStatus(ConnError, err)
		return err
	}

	first := make(chan struct{}, 1)
	cancel, err := r.gateway.Subscribe(
		func(remote models.PersistedState) {
			r.ApplyRemoteSnapshot(remote)
			select {
			case first <- struct{}{}:
			default:
			}
		},
		func(err error) {
			r.logger.Warn("subscription error", zap.Error(err))
			r.setStatus(ConnError, err)
		},
	)
	if err != nil {
		r.setStatus(ConnError, err)
		return err
	}
	r.mu.Lock()
	r.cancelSub = cancel
	r.mu.Unlock()

	if !exists {
		// First run for this tenant: create the document from defaults.
		if err := r.gateway.WriteImmediate(r.Snapshot()); err != nil {
			r.setStatus(ConnError, err)
			return err
		}
		r.setStatus(ConnConnected, nil)
		return nil
	}

	// The gateway delivers the current document synchronously on
	// subscribe, so in the common case this returns immediately.
	select {
	case <-first:
		return nil
	case <-ctx.Done():
		r.setStatus(ConnError, ctx.Err())
		return ctx.Err()
	}
}

// Stop cancels the subscription and flushes any pending debounced
// write so a clean shutdown does not lose the last mutation.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancelSub
	r.cancelSub = nil
	pending := r.timer != nil
	if pending {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pending {
		r.flush()
	}
}

// ApplyLocalMutation applies a pure transformation to the persisted
// state, recomputes the level, and schedules a write: debounced by
// default, immediate for goal commits and action submissions.
func (r *Reconciler) ApplyLocalMutation(fn func(models.PersistedState) models.PersistedState, immediate bool) models.PersistedState {
	r.mu.Lock()
	next := fn(r.state.Clone())
	next.Level = leveling.LevelFor(next.Experience)
	r.state = next
	if r.status == ConnConnected {
		r.status = ConnSaving
	}
	snap := r.state.Clone()
	r.mu.Unlock()

	if immediate {
		r.cancelTimer()
		r.flush()
	} else {
		r.scheduleFlush()
	}
	r.notify()
	return snap
}

// ApplyRemoteSnapshot merges a snapshot delivered by the gateway
// subscription. Persisted fields are copied field-by-field from an
// explicit allow-list; the level is recomputed locally rather than
// trusted from the wire, and UI-only fields are untouched. The merge is
// last-writer-wins at snapshot granularity. A pending debounced write
// is left armed: it re-reads the live state at fire time, so after the
// merge it can only write the merged state back, never a stale one.
func (r *Reconciler) ApplyRemoteSnapshot(remote models.PersistedState) {
	r.mu.Lock()
	r.state.Experience = remote.Experience
	r.state.Streak = remote.Streak
	r.state.Actions = make([]models.Action, len(remote.Actions))
	copy(r.state.Actions, remote.Actions)
	r.state.WeeklyGoal = remote.WeeklyGoal
	r.state.Level = leveling.LevelFor(remote.Experience)
	if r.status == ConnConnecting || r.status == ConnError {
		r.status = ConnConnected
		r.lastErr = nil
	}
	r.mu.Unlock()
	r.notify()
}

// RecordAction logs a brave act. Action submissions persist
// immediately, not debounced.
func (r *Reconciler) RecordAction(draft ledger.Draft) (models.Action, models.PersistedState) {
	var action models.Action
	state := r.ApplyLocalMutation(func(s models.PersistedState) models.PersistedState {
		var next models.PersistedState
		action, next = r.ledger.Record(s, draft)
		return next
	}, true)
	return action, state
}

// CommitGoal replaces the weekly goal with the draft merged over it.
// Goal commits persist immediately, not debounced.
func (r *Reconciler) CommitGoal(draft goal.Draft) error {
	r.mu.Lock()
	current := r.state.WeeklyGoal
	r.mu.Unlock()

	merged, err := goal.Commit(current, draft)
	if err != nil {
		return err
	}
	r.ApplyLocalMutation(func(s models.PersistedState) models.PersistedState {
		s.WeeklyGoal = merged
		return s
	}, true)
	return nil
}

// BumpGoalProgress adds delta to the weekly goal's progress counter.
// Progress may exceed the target; rapid bumps coalesce via the
// debounced write path.
func (r *Reconciler) BumpGoalProgress(delta int) models.PersistedState {
	return r.ApplyLocalMutation(func(s models.PersistedState) models.PersistedState {
		p := s.WeeklyGoal.Progress + delta
		if p < 0 {
			p = 0
		}
		s.WeeklyGoal.Progress = p
		return s
	}, false)
}

// UpdateUI mutates the UI-only fields. No persistence write is ever
// scheduled for UI changes.
func (r *Reconciler) UpdateUI(fn func(*UIState)) UIState {
	r.mu.Lock()
	fn(&r.ui)
	out := r.ui
	r.mu.Unlock()
	r.notify()
	return out
}

// UI returns a copy of the UI-only fields.
func (r *Reconciler) UI() UIState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ui
}

// Snapshot returns a deep copy of the persisted state.
func (r *Reconciler) Snapshot() models.PersistedState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Status returns the connection indicator and the last error observed,
// if any.
func (r *Reconciler) Status() (ConnState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.lastErr
}

func (r *Reconciler) scheduleFlush() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.flush)
	r.mu.Unlock()
}

func (r *Reconciler) cancelTimer() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()
}

// flush writes the live snapshot. Reading the state at fire time, not
// at schedule time, is what keeps a late debounce from resurrecting a
// state older than the last remote merge.
func (r *Reconciler) flush() {
	r.mu.Lock()
	r.timer = nil
	snap := r.state.Clone()
	r.mu.Unlock()

	err := r.gateway.WriteImmediate(snap)

	r.mu.Lock()
	if err != nil {
		r.status = ConnError
		r.lastErr = err
		// In-memory state is not rolled back: local edits survive and
		// the next mutation retries the write.
	} else if r.status == ConnSaving || r.status == ConnError {
		r.status = ConnConnected
		r.lastErr = nil
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("persistence write failed", zap.Error(err))
	}
	r.notify()
}

func (r *Reconciler) setStatus(s ConnState, err error) {
	r.mu.Lock()
	r.status = s
	r.lastErr = err
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}
