package dto

import (
	"time"

	"github.com/playdesk/support-desk/internal/domain"
)

// LoginRequest payload for player and agent login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	SessionID string       `json:"session_id"`
	User      UserResponse `json:"user"`
}

// SessionResponse describes the caller's live session.
type SessionResponse struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Avatar    *string     `json:"avatar,omitempty"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// CreatePlayerRequest payload for player self-registration.
type CreatePlayerRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	PlayerNumber string  `json:"player_number" validate:"required,max=50"`
	Avatar       *string `json:"avatar" validate:"omitempty,url"`
}

// CreateAgentRequest payload for agent accounts.
type CreateAgentRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string      `json:"id"`
	Role         domain.Role `json:"role"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Avatar       *string     `json:"avatar,omitempty"`
	PlayerNumber *string     `json:"player_number,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserSummary identifies a ticket creator or reply author.
type UserSummary struct {
	ID     string      `json:"id"`
	Role   domain.Role `json:"role"`
	Name   string      `json:"name"`
	Avatar *string     `json:"avatar,omitempty"`
}

// NewUserResponse maps a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Role:         user.Role,
		Email:        user.Email,
		Name:         user.Name,
		Avatar:       user.Avatar,
		PlayerNumber: user.PlayerNumber,
		CreatedAt:    user.CreatedAt,
	}
}

// NewUserSummary maps a user to its short form.
func NewUserSummary(user *domain.User) UserSummary {
	return UserSummary{ID: user.ID, Role: user.Role, Name: user.Name, Avatar: user.Avatar}
}
