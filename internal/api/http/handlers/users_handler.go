package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/playdesk/support-desk/internal/api/dto"
	"github.com/playdesk/support-desk/internal/service"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// UsersHandler handles account endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// CreatePlayer POST /api/users/players.
func (h *UsersHandler) CreatePlayer(c *fiber.Ctx) error {
	var req dto.CreatePlayerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	user, err := h.service.CreatePlayer(c.UserContext(), service.CreatePlayerInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		PlayerNumber: req.PlayerNumber,
		Avatar:       req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// CreateAgent POST /api/users/agents.
func (h *UsersHandler) CreateAgent(c *fiber.Ctx) error {
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	user, err := h.service.CreateAgent(c.UserContext(), service.CreateAgentInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetUser GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
