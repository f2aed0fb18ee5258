package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/farmrakshaa/backend/internal/apperr"
)

// respondError translates service errors into HTTP responses. Anything not
// in the taxonomy is logged and reported as a generic 500 so internals never
// leak to the client.
func respondError(c *fiber.Ctx, err error) error {
	var dup *apperr.DuplicateError
	if errors.As(err, &dup) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": dup.Error()})
	}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, apperr.ErrInvalidCurrentPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Current password is incorrect"})
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	case errors.Is(err, apperr.ErrPendingApproval):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Account is pending approval"})
	case errors.Is(err, apperr.ErrEmailNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Email not found"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	default:
		log.Printf("internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
