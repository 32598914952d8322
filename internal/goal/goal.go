package goal

import (
	"fmt"

	"github.com/amholt/bravely/internal/models"
)

// Draft is a staged, partial edit of the weekly goal. Nil fields mean
// "unchanged"; Commit only overwrites fields that were explicitly set.
type Draft struct {
	Title       *string
	Description *string
	Deadline    *string
	Progress    *int
	Target      *int
}

// BeginEdit stages an empty draft against the current goal. Fields stay
// unset until the caller writes them, so cancelling is a no-op.
func BeginEdit() Draft {
	return Draft{}
}

func (d *Draft) SetTitle(v string)       { d.Title = &v }
func (d *Draft) SetDescription(v string) { d.Description = &v }
func (d *Draft) SetDeadline(v string)    { d.Deadline = &v }
func (d *Draft) SetProgress(v int)       { d.Progress = &v }
func (d *Draft) SetTarget(v int)         { d.Target = &v }

// Commit merges the draft over the current goal. Only set fields are
// overwritten. A non-positive target is rejected; progress is allowed to
// exceed the target (overachieving is not clamped).
func Commit(current models.WeeklyGoal, draft Draft) (models.WeeklyGoal, error) {
	if draft.Target != nil && *draft.Target <= 0 {
		return current, fmt.Errorf("goal target must be positive, got %d", *draft.Target)
	}
	if draft.Progress != nil && *draft.Progress < 0 {
		return current, fmt.Errorf("goal progress must be non-negative, got %d", *draft.Progress)
	}

	out := current
	if draft.Title != nil {
		out.Title = *draft.Title
	}
	if draft.Description != nil {
		out.Description = *draft.Description
	}
	if draft.Deadline != nil {
		out.Deadline = *draft.Deadline
	}
	if draft.Progress != nil {
		out.Progress = *draft.Progress
	}
	if draft.Target != nil {
		out.Target = *draft.Target
	}
	return out, nil
}
