package ledger

import (
	"time"

	"github.com/amholt/bravely/internal/leveling"
	"github.com/amholt/bravely/internal/models"
)

const (
	// BaseXP is awarded for any logged action regardless of difficulty.
	BaseXP = 50
	// DiscomfortBonus is the per-point linear bonus, deliberately
	// rewarding harder actions more.
	DiscomfortBonus = 10

	MinDiscomfort = 1
	MaxDiscomfort = 10
)

// Draft is the caller-supplied input for a new action.
type Draft struct {
	Title      string
	Discomfort int
	Feeling    models.Feeling
}

// Ledger creates immutable action records and computes their XP award.
// IDs are wall-clock milliseconds, with a monotonic guard so two
// creations in the same process never collide even when the clock does
// not advance between them.
type Ledger struct {
	now    func() time.Time
	lastID int64
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

// NewWithClock is used by tests to pin the clock.
func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Award returns the XP for a given discomfort rating, after clamping the
// rating into the 1-10 range.
func Award(discomfort int) int {
	return BaseXP + clampDiscomfort(discomfort)*DiscomfortBonus
}

func clampDiscomfort(d int) int {
	if d < MinDiscomfort {
		return MinDiscomfort
	}
	if d > MaxDiscomfort {
		return MaxDiscomfort
	}
	return d
}

// Record creates an action from the draft and returns it along with the
// state after the award: the action prepended (newest-first) and
// experience and level updated. The input state is not modified.
func (l *Ledger) Record(state models.PersistedState, draft Draft) (models.Action, models.PersistedState) {
	now := l.now()

	action := models.Action{
		ID:         l.nextID(now),
		Title:      draft.Title,
		Discomfort: clampDiscomfort(draft.Discomfort),
		Feeling:    draft.Feeling,
		Date:       now.Format("2006-01-02"),
		XP:         Award(draft.Discomfort),
	}

	next := state.Clone()
	next.Actions = append([]models.Action{action}, next.Actions...)
	next.Experience = state.Experience + action.XP
	next.Level = leveling.LevelFor(next.Experience)

	return action, next
}

func (l *Ledger) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}
