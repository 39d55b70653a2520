package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/repository"
	"github.com/playdesk/support-desk/internal/session"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User      *domain.User
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// AuthenticationService coordinates login and logout flows.
type AuthenticationService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	sessions session.Store
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Sessions     session.Store
	Logger       *zap.Logger
	Clock        func() time.Time
	NewID        func() string
}

// NewAuthenticationService builds the service.
func NewAuthenticationService(deps AuthDependencies) *AuthenticationService {
	s := &AuthenticationService{
		users:    deps.UserRepo,
		tokenMgr: deps.TokenManager,
		sessions: deps.Sessions,
		logger:   deps.Logger,
		now:      deps.Clock,
		newID:    deps.NewID,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// LoginPlayer authenticates a player.
func (s *AuthenticationService) LoginPlayer(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, domain.RolePlayer, email, password)
}

// LoginAgent authenticates an agent.
func (s *AuthenticationService) LoginAgent(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, domain.RoleAgent, email, password)
}

func (s *AuthenticationService) login(ctx context.Context, role domain.Role, email, password string) (*LoginResult, error) {
	result, err := s.issue(ctx, role, email, password)
	if err != nil {
		return nil, fail(s.logger, "login", err, zap.String("role", string(role)), zap.String("email", domain.NormalizeEmail(email)))
	}
	s.logger.Info("login succeeded", zap.String("user_id", result.User.ID), zap.String("session_id", result.SessionID))
	return result, nil
}

func (s *AuthenticationService) issue(ctx context.Context, role domain.Role, email, password string) (*LoginResult, error) {
	invalid := apperrors.NewUnauthorized("invalid credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if user.Role != role {
		return nil, invalid
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}

	issuedAt := s.now()
	sessionID := s.newID()
	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role, sessionID, issuedAt)
	if err != nil {
		return nil, err
	}
	state := session.State{
		ID:        sessionID,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Avatar:    user.Avatar,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session so its token is no longer accepted.
func (s *AuthenticationService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fail(s.logger, "logout", err, zap.String("session_id", sessionID))
	}
	s.logger.Info("logout", zap.String("session_id", sessionID))
	return nil
}

// CurrentSession returns the stored state of a live session.
func (s *AuthenticationService) CurrentSession(ctx context.Context, sessionID string) (*session.State, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			err = apperrors.NewUnauthorized("session expired or revoked")
		}
		return nil, fail(s.logger, "current_session", err, zap.String("session_id", sessionID))
	}
	return state, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthenticationService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
