// Package session keeps the state recorded for each successful login, keyed by the
// session id carried in the access token.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/playdesk/support-desk/internal/domain"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// State is the per-login session state.
type State struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Avatar    *string     `json:"avatar,omitempty"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the session lifetime has elapsed at now.
func (s State) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ChangeKind describes a store mutation.
type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is delivered to subscribers after a mutation.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	SessionID string     `json:"session_id"`
	State     *State     `json:"state,omitempty"`
	// Origin identifies the store instance that made the change.
	Origin string `json:"origin,omitempty"`
}

// Listener observes store changes.
type Listener func(Change)

// Store persists session state.
type Store interface {
	Save(ctx context.Context, state State) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	// Subscribe registers a listener and returns a func that removes it.
	Subscribe(listener Listener) func()
}
