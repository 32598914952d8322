package store

import "fmt"

// SubscriptionError marks a dropped or failing live feed. The last
// delivered snapshot remains authoritative; the subscription keeps
// retrying.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// WriteError marks a failed persistence write. In-memory state is not
// rolled back; the next mutation is the de facto retry.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
