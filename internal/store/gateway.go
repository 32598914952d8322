package store

import (
	"context"
	"time"

	"github.com/amholt/bravely/internal/models"
)

// Gateway abstracts the backing document store. Exactly one document
// exists per tenant; Subscribe delivers it whenever it changes,
// including this instance's own writes echoed back.
type Gateway interface {
	// EnsureSession establishes the opaque identity required before any
	// write is accepted. It must be called before WriteImmediate or
	// WriteDebounced; writes without a session fail.
	EnsureSession(ctx context.Context) error

	// Exists reports whether the tenant's document has been created.
	Exists() (bool, error)

	// Subscribe delivers the current document immediately if it exists,
	// then on every subsequent change. The returned cancel func stops
	// delivery.
	Subscribe(onSnapshot func(models.PersistedState), onError func(error)) (cancel func(), err error)

	// WriteImmediate persists the state now, superseding any pending
	// debounced write.
	WriteImmediate(state models.PersistedState) error

	// WriteDebounced schedules a write after a quiet period. Rapid
	// successive calls coalesce into one write carrying the latest
	// payload. A later call to either write method supersedes it.
	WriteDebounced(state models.PersistedState, delay time.Duration)

	// CancelPending drops a scheduled debounced write, if any.
	CancelPending()

	Close() error
}
