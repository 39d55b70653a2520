package domain

import (
	"strings"
	"time"
)

// Role discriminates the two kinds of user.
type Role string

const (
	RolePlayer Role = "Player"
	RoleAgent  Role = "Agent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleAgent
}

// User is either a Player (ticket creator) or an Agent (ticket responder).
// PlayerNumber is set for players only.
type User struct {
	ID           string
	Role         Role
	Email        string
	Name         string
	Avatar       *string
	PasswordHash string
	PlayerNumber *string
	CreatedAt    time.Time
}

// NewPlayer builds a player account.
func NewPlayer(id, email, name, playerNumber, passwordHash string, avatar *string, now time.Time) *User {
	number := strings.TrimSpace(playerNumber)
	return &User{
		ID:           id,
		Role:         RolePlayer,
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Avatar:       avatar,
		PasswordHash: passwordHash,
		PlayerNumber: &number,
		CreatedAt:    now,
	}
}

// NewAgent builds an agent account.
func NewAgent(id, email, name, passwordHash string, avatar *string, now time.Time) *User {
	return &User{
		ID:           id,
		Role:         RoleAgent,
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Avatar:       avatar,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

// IsPlayer reports whether the user raises tickets.
func (u *User) IsPlayer() bool {
	return u != nil && u.Role == RolePlayer
}

// IsAgent reports whether the user works tickets.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == RoleAgent
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
