package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/candidate-assistant/internal/services"
)

// ErrorHandler renders every error as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionEnded):
		return fiber.StatusGone
	case errors.Is(err, services.ErrCVRequired):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrEmptyInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSearchDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, code int, err error) error {
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func lookupSession(c *fiber.Ctx, registry services.SessionRegistry) (*services.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session ID format")
	}

	session, err := registry.Get(id)
	if err != nil {
		return nil, fiber.NewError(statusFor(err), err.Error())
	}

	return session, nil
}
