package models

// WeeklyGoal is the single current mentor-defined objective. There is
// exactly one active goal at a time and no history of past goals.
type WeeklyGoal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"` // free-text label, e.g. "Sunday"
	Progress    int    `json:"progress"` // may exceed Target (overachieving)
	Target      int    `json:"target"`
}
