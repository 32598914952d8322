package reconcile

import (
	"github.com/amholt/bravely/internal/goal"
	"github.com/amholt/bravely/internal/ledger"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenLog
	ScreenGoal
	ScreenHistory
	ScreenPIN
)

type Tab int

const (
	TabCoachee Tab = iota
	TabMentor
)

// UIState is everything that never leaves the process: it is not
// persisted, not sent to the gateway, and a remote snapshot merge must
// never touch it.
type UIState struct {
	Screen    Screen
	ActiveTab Tab

	PINBuffer string
	PINError  bool

	ActionDraft *ledger.Draft

	GoalEditing bool
	GoalDraft   *goal.Draft

	Celebrating bool
}
