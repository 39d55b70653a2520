package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// pathID reads a UUID path parameter in canonical form.
func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id.String(), nil
}
