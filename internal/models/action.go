package models

type Feeling string

const (
	FeelingProud    Feeling = "proud"
	FeelingRelieved Feeling = "relieved"
	FeelingNeutral  Feeling = "neutral"
	FeelingStressed Feeling = "stressed"
)

// Action is one logged brave act. Actions are immutable once created:
// there is no update or delete path anywhere in the codebase.
type Action struct {
	ID         int64   `json:"id"` // creation time in ms, strictly increasing
	Title      string  `json:"title"`
	Discomfort int     `json:"discomfort"` // 1-10
	Feeling    Feeling `json:"feeling"`
	Date       string  `json:"date"` // YYYY-MM-DD format
	XP         int     `json:"xp"`   // computed at creation, frozen
}
