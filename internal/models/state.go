package models

// PersistedState is the subset of application data that survives a
// restart and syncs across devices. It is the document the persistence
// gateway reads and writes; everything else is UI-only and never leaves
// the process.
type PersistedState struct {
	Experience int        `json:"experience"`
	Level      int        `json:"level"` // derived from Experience, never authoritative
	Streak     int        `json:"streak"`
	Actions    []Action   `json:"actions"` // newest-first, insertion order is truth
	WeeklyGoal WeeklyGoal `json:"weekly_goal"`
}

// DefaultState is the document written on first run, before any remote
// snapshot has been observed.
func DefaultState() PersistedState {
	return PersistedState{
		Experience: 0,
		Level:      1,
		Streak:     0,
		Actions:    []Action{},
		WeeklyGoal: WeeklyGoal{
			Title:    "Set your first weekly goal",
			Deadline: "this week",
			Progress: 0,
			Target:   1,
		},
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the Actions backing array.
func (s PersistedState) Clone() PersistedState {
	out := s
	out.Actions = make([]Action, len(s.Actions))
	copy(out.Actions, s.Actions)
	return out
}
