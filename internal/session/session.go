package session

import (
	"fmt"

	"github.com/google/uuid"
)

// Session is the opaque identity that must exist before any write is
// accepted by a gateway.
type Session struct {
	ID    string
	Token string
}

// AuthError marks a failed session establishment. Writes are disabled
// until a later Establish succeeds; reads may still come from a local
// cache.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Reason)
}

// Establish exchanges a token for a session. The token is opaque: it is
// not validated beyond being non-empty, matching the "an identity must
// exist" precondition rather than any particular auth scheme.
func Establish(token string) (Session, error) {
	if token == "" {
		return Session{}, &AuthError{Reason: "no session token configured"}
	}
	return Session{ID: uuid.New().String(), Token: token}, nil
}
