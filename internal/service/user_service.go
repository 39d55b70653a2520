package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/repository"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// UserService manages player and agent accounts.
type UserService struct {
	uow        repository.UnitOfWork
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UnitOfWork repository.UnitOfWork
	Logger     *zap.Logger
	BcryptCost int
	Clock      func() time.Time
	NewID      func() string
}

// CreatePlayerInput describes a player registration.
type CreatePlayerInput struct {
	Name         string
	Email        string
	Password     string
	PlayerNumber string
	Avatar       *string
}

// CreateAgentInput describes an agent account.
type CreateAgentInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	s := &UserService{
		uow:        deps.UnitOfWork,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
		now:        deps.Clock,
		newID:      deps.NewID,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreatePlayer registers a player. Email and player number must be unused.
func (s *UserService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fail(s.logger, "create_player", err)
	}
	player := domain.NewPlayer(s.newID(), input.Email, input.Name, input.PlayerNumber, hash, cleanAvatar(input.Avatar), s.now())

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ensureEmailFree(ctx, repos.Users(), player.Email); err != nil {
			return err
		}
		taken, err := repos.Users().ExistsByPlayerNumber(ctx, *player.PlayerNumber)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewConflict("player number already registered", map[string]any{"player_number": *player.PlayerNumber})
		}
		return createUser(ctx, repos.Users(), player)
	})
	if err != nil {
		return nil, fail(s.logger, "create_player", err, zap.String("email", player.Email))
	}
	s.logger.Info("player registered", zap.String("user_id", player.ID))
	return player, nil
}

// CreateAgent creates an agent account.
func (s *UserService) CreateAgent(ctx context.Context, input CreateAgentInput) (*domain.User, error) {
	agent, err := s.createAgent(ctx, input)
	if err != nil {
		return nil, fail(s.logger, "create_agent", err, zap.String("email", domain.NormalizeEmail(input.Email)))
	}
	s.logger.Info("agent created", zap.String("user_id", agent.ID))
	return agent, nil
}

func (s *UserService) createAgent(ctx context.Context, input CreateAgentInput) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	agent := domain.NewAgent(s.newID(), input.Email, input.Name, hash, cleanAvatar(input.Avatar), s.now())

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := ensureEmailFree(ctx, repos.Users(), agent.Email); err != nil {
			return err
		}
		return createUser(ctx, repos.Users(), agent)
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.uow.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.logger, "get_user", notFoundOr(err, "user", map[string]any{"user_id": id}), zap.String("user_id", id))
	}
	return user, nil
}

// EnsureAgent creates the agent described by input unless an account with that email
// already exists. It reports whether an account was created.
func (s *UserService) EnsureAgent(ctx context.Context, input CreateAgentInput) (*domain.User, bool, error) {
	existing, err := s.uow.Users().GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if !existing.IsAgent() {
			return nil, false, apperrors.NewConflict("bootstrap email belongs to a player", map[string]any{"email": existing.Email})
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fail(s.logger, "ensure_agent", err)
	}

	agent, err := s.CreateAgent(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return agent, true, nil
}

func ensureEmailFree(ctx context.Context, users repository.UserRepository, email string) error {
	taken, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

// createUser maps a unique violation lost to a concurrent registration onto Conflict.
func createUser(ctx context.Context, users repository.UserRepository, user *domain.User) error {
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("user already registered", map[string]any{"email": user.Email})
		}
		return err
	}
	return nil
}

func cleanAvatar(avatar *string) *string {
	if avatar == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*avatar)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
