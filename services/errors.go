package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Domain error kinds. Services wrap these with context via fmt.Errorf("%w: ...")
// and handlers translate them to HTTP statuses with HTTPError.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// HTTPError maps a domain error onto the service's JSON error body.
func HTTPError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// callerID pulls the identity the middleware attached; create-type operations
// require it for attribution.
func callerID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals("user_id").(string); ok && id != "" {
		return id, nil
	}
	return "", ErrUnauthenticated
}
