package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/amholt/bravely/internal/goal"
	"github.com/amholt/bravely/internal/ledger"
	"github.com/amholt/bravely/internal/models"
	"github.com/amholt/bravely/internal/session"
	"github.com/amholt/bravely/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGateway is an in-memory store.Gateway for exercising the
// reconciler without a real backend.
type fakeGateway struct {
	mu         sync.Mutex
	doc        *models.PersistedState
	writes     []models.PersistedState
	subs       []func(models.PersistedState)
	sessionErr error
	writeErr   error
}

func (f *fakeGateway) EnsureSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionErr
}

func (f *fakeGateway) Exists() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc != nil, nil
}

func (f *fakeGateway) Subscribe(onSnapshot func(models.PersistedState), onError func(error)) (func(), error) {
	f.mu.Lock()
	f.subs = append(f.subs, onSnapshot)
	doc := f.doc
	f.mu.Unlock()
	if doc != nil {
		onSnapshot(doc.Clone())
	}
	return func() {}, nil
}

func (f *fakeGateway) WriteImmediate(state models.PersistedState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	clone := state.Clone()
	f.doc = &clone
	f.writes = append(f.writes, state.Clone())
	return nil
}

func (f *fakeGateway) WriteDebounced(state models.PersistedState, delay time.Duration) {}
func (f *fakeGateway) CancelPending()                                                  {}
func (f *fakeGateway) Close() error                                                    { return nil }

// deliver pushes a snapshot to every subscriber, as if another device
// had written the document.
func (f *fakeGateway) deliver(state models.PersistedState) {
	f.mu.Lock()
	subs := append([]func(models.PersistedState){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(state.Clone())
	}
}

func (f *fakeGateway) writeLog() []models.PersistedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PersistedState, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeGateway) setWriteErr(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

func newTestReconciler(t *testing.T, gw *fakeGateway, debounce time.Duration) *Reconciler {
	t.Helper()
	r := New(gw, debounce, zap.NewNop())
	t.Cleanup(r.Stop)
	return r
}

func TestStart_CreatesDocumentWhenMissing(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestReconciler(t, gw, time.Second)

	require.NoError(t, r.Start(context.Background()))

	status, err := r.Status()
	assert.Equal(t, ConnConnected, status)
	assert.NoError(t, err)

	writes := gw.writeLog()
	require.Len(t, writes, 1, "missing document must trigger one creating write")
	assert.Equal(t, models.DefaultState().Experience, writes[0].Experience)
	assert.Equal(t, 1, writes[0].Level)
}

func TestStart_LoadsExistingDocument(t *testing.T) {
	doc := models.PersistedState{
		Experience: 580,
		Level:      42, // stale writer: never trusted from the wire
		Streak:     3,
		Actions:    []models.Action{{ID: 1, Title: "t", Discomfort: 8, Feeling: models.FeelingProud, Date: "2026-08-24", XP: 130}},
		WeeklyGoal: models.WeeklyGoal{Title: "g", Target: 5, Progress: 1},
	}
	gw := &fakeGateway{doc: &doc}
	r := newTestReconciler(t, gw, time.Second)

	require.NoError(t, r.Start(context.Background()))

	state := r.Snapshot()
	assert.Equal(t, 580, state.Experience)
	assert.Equal(t, 2, state.Level, "level must be recomputed locally from experience")
	assert.Equal(t, 3, state.Streak)
	assert.Empty(t, gw.writeLog(), "loading an existing document must not write")

	status, _ := r.Status()
	assert.Equal(t, ConnConnected, status)
}

func TestStart_AuthFailure(t *testing.T) {
	gw := &fakeGateway{sessionErr: &session.AuthError{Reason: "bad token"}}
	r := newTestReconciler(t, gw, time.Second)

	err := r.Start(context.Background())
	require.Error(t, err)

	status, lastErr := r.Status()
	assert.Equal(t, ConnError, status)
	assert.Error(t, lastErr)
}

func TestApplyRemoteSnapshot_NeverTouchesUIFields(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestReconciler(t, gw, time.Second)
	require.NoError(t, r.Start(context.Background()))

	draft := &ledger.Draft{Title: "half-typed entry", Discomfort: 7, Feeling: models.FeelingNeutral}
	goalDraft := &goal.Draft{}
	goalDraft.SetTitle("in-progress edit")

	before := r.UpdateUI(func(ui *UIState) {
		ui.Screen = ScreenLog
		ui.ActiveTab = TabMentor
		ui.PINBuffer = "12"
		ui.PINError = true
		ui.ActionDraft = draft
		ui.GoalEditing = true
		ui.GoalDraft = goalDraft
		ui.Celebrating = true
	})

	gw.deliver(models.PersistedState{
		Experience: 4000,
		Streak:     9,
		Actions:    []models.Action{{ID: 2, Title: "remote", XP: 60}},
		WeeklyGoal: models.WeeklyGoal{Title: "remote goal", Target: 3},
	})

	assert.Equal(t, before, r.UI(), "remote merge must leave every UI-only field bit-identical")

	state := r.Snapshot()
	assert.Equal(t, 4000, state.Experience)
	assert.Equal(t, 5, state.Level)
	assert.Equal(t, "remote goal", state.WeeklyGoal.Title)
}

func TestApplyLocalMutation_DebounceCoalesces(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Target: 5}}}
	r := newTestReconciler(t, gw, 40*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))

	r.BumpGoalProgress(1) // M1
	r.BumpGoalProgress(1) // M2, inside the quiet period

	require.Eventually(t, func() bool {
		return len(gw.writeLog()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	// Give a second write a chance to appear if coalescing were broken.
	time.Sleep(80 * time.Millisecond)

	writes := gw.writeLog()
	require.Len(t, writes, 1, "two mutations inside the window must produce exactly one write")
	assert.Equal(t, 2, writes[0].WeeklyGoal.Progress, "the write must carry the state after M2")
}

func TestLateDebounceFlushReadsLiveState(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Target: 5}}}
	r := newTestReconciler(t, gw, 50*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))

	r.BumpGoalProgress(1)

	// A remote snapshot lands before the debounce fires. The eventual
	// write must carry the merged state, not the one captured at
	// schedule time.
	gw.deliver(models.PersistedState{
		Experience: 9999,
		WeeklyGoal: models.WeeklyGoal{Title: "remote", Target: 8, Progress: 6},
	})

	require.Eventually(t, func() bool {
		return len(gw.writeLog()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	writes := gw.writeLog()
	last := writes[len(writes)-1]
	assert.Equal(t, 9999, last.Experience)
	assert.Equal(t, 6, last.WeeklyGoal.Progress)
}

func TestRecordAction_WritesImmediately(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{Experience: 450, WeeklyGoal: models.WeeklyGoal{Target: 1}}}
	r := newTestReconciler(t, gw, time.Hour) // debounce would never fire in this test
	require.NoError(t, r.Start(context.Background()))

	action, state := r.RecordAction(ledger.Draft{Title: "gave the demo", Discomfort: 8, Feeling: models.FeelingProud})

	assert.Equal(t, 130, action.XP)
	assert.Equal(t, 580, state.Experience)
	assert.Equal(t, 2, state.Level)
	assert.Equal(t, "gave the demo", state.Actions[0].Title)

	writes := gw.writeLog()
	require.Len(t, writes, 1, "action submission must bypass the debounce")
	assert.Equal(t, 580, writes[0].Experience)

	status, _ := r.Status()
	assert.Equal(t, ConnConnected, status)
}

func TestCommitGoal_WritesImmediately(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Title: "old", Target: 5, Progress: 2}}}
	r := newTestReconciler(t, gw, time.Hour)
	require.NoError(t, r.Start(context.Background()))

	draft := goal.BeginEdit()
	draft.SetTitle("new goal")

	require.NoError(t, r.CommitGoal(draft))

	writes := gw.writeLog()
	require.Len(t, writes, 1)
	assert.Equal(t, "new goal", writes[0].WeeklyGoal.Title)
	assert.Equal(t, 5, writes[0].WeeklyGoal.Target, "unset draft fields keep current values")
	assert.Equal(t, 2, writes[0].WeeklyGoal.Progress)
}

func TestCommitGoal_RejectsInvalidTarget(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Title: "old", Target: 5}}}
	r := newTestReconciler(t, gw, time.Hour)
	require.NoError(t, r.Start(context.Background()))

	draft := goal.BeginEdit()
	draft.SetTarget(0)

	require.Error(t, r.CommitGoal(draft))
	assert.Empty(t, gw.writeLog(), "a rejected commit must not write")
	assert.Equal(t, "old", r.Snapshot().WeeklyGoal.Title)
}

func TestWriteFailure_SetsErrorAndSelfHeals(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Target: 1}}}
	r := newTestReconciler(t, gw, time.Hour)
	require.NoError(t, r.Start(context.Background()))

	gw.setWriteErr(&store.WriteError{Err: assert.AnError})

	_, state := r.RecordAction(ledger.Draft{Title: "x", Discomfort: 5, Feeling: models.FeelingNeutral})

	status, lastErr := r.Status()
	assert.Equal(t, ConnError, status)
	assert.Error(t, lastErr)
	assert.Equal(t, 100, state.Experience, "in-memory state is not rolled back on write failure")

	// The next successful operation is the de facto retry and returns
	// the indicator to connected.
	gw.setWriteErr(nil)
	r.RecordAction(ledger.Draft{Title: "y", Discomfort: 5, Feeling: models.FeelingNeutral})

	status, lastErr = r.Status()
	assert.Equal(t, ConnConnected, status)
	assert.NoError(t, lastErr)

	writes := gw.writeLog()
	require.Len(t, writes, 1)
	assert.Equal(t, 200, writes[0].Experience, "retry carries both mutations")
}

func TestUpdateUI_NeverSchedulesWrites(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Target: 1}}}
	r := newTestReconciler(t, gw, 20*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))

	r.UpdateUI(func(ui *UIState) {
		ui.Screen = ScreenHistory
		ui.Celebrating = true
	})

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, gw.writeLog(), "UI-only changes must never reach the gateway")
}

func TestStop_FlushesPendingWrite(t *testing.T) {
	gw := &fakeGateway{doc: &models.PersistedState{WeeklyGoal: models.WeeklyGoal{Target: 5}}}
	r := New(gw, time.Hour, zap.NewNop())
	require.NoError(t, r.Start(context.Background()))

	r.BumpGoalProgress(1)
	require.Empty(t, gw.writeLog())

	r.Stop()

	writes := gw.writeLog()
	require.Len(t, writes, 1, "shutdown must flush the pending debounced write")
	assert.Equal(t, 1, writes[0].WeeklyGoal.Progress)
}
