package session

import (
	"errors"
	"testing"
)

func TestEstablish_RequiresToken(t *testing.T) {
	_, err := Establish("")
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("expected *AuthError, got %T", err)
	}
}

func TestEstablish_OpaqueToken(t *testing.T) {
	sess, err := Establish("anything-goes")
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if sess.ID == "" {
		t.Error("session id must be set")
	}
	if sess.Token != "anything-goes" {
		t.Errorf("token = %q, want passthrough", sess.Token)
	}

	other, err := Establish("anything-goes")
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if other.ID == sess.ID {
		t.Error("each establishment must get a fresh session id")
	}
}
