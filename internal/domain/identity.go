package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("resource not found")

// Identity is the authenticated principal behind a Supabase session.
type Identity struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEventType discriminates session change notifications.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent is delivered to OnSessionChange subscribers.
// Identity is set only for SessionSignedIn.
type SessionEvent struct {
	Type     SessionEventType `json:"type"`
	Identity *Identity        `json:"identity,omitempty"`
}

// IdentityProvider exposes the current session and its changes.
type IdentityProvider interface {
	// GetCurrentSession returns nil, nil when there is no session.
	GetCurrentSession(ctx context.Context) (*Identity, error)
	// OnSessionChange registers cb and returns a function that unsubscribes it.
	OnSessionChange(cb func(SessionEvent)) (unsubscribe func())
}

// Navigator changes the visible location.
type Navigator interface {
	Navigate(path string) error
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(path string) error

func (f NavigatorFunc) Navigate(path string) error { return f(path) }
