package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/playdesk/support-desk/internal/api/dto"
	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/service"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// AuthenticationHandler exposes login, logout and session endpoints.
type AuthenticationHandler struct {
	service *service.AuthenticationService
}

// NewAuthenticationHandler constructs handler.
func NewAuthenticationHandler(authService *service.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{service: authService}
}

// PlayerLogin POST /api/authentication/player/login.
func (h *AuthenticationHandler) PlayerLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	result, err := h.service.LoginPlayer(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// AgentLogin POST /api/authentication/agent/login.
func (h *AuthenticationHandler) AgentLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	result, err := h.service.LoginAgent(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Logout POST /api/authentication/logout.
func (h *AuthenticationHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Logout(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /api/authentication/me.
func (h *AuthenticationHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	state, err := h.service.CurrentSession(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		SessionID: state.ID,
		UserID:    state.UserID,
		Name:      state.Name,
		Email:     state.Email,
		Role:      state.Role,
		Avatar:    state.Avatar,
		IssuedAt:  state.IssuedAt,
		ExpiresAt: state.ExpiresAt,
	}})
}

func parseLogin(c *fiber.Ctx) (*dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func authResponse(result *service.LoginResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		SessionID: result.SessionID,
		User:      dto.NewUserResponse(result.User),
	}
}
