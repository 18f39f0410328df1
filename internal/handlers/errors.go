package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

// ErrorHandler maps pipeline errors onto HTTP status codes.
func ErrorHandler(log *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err,
			)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
	}
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, models.ErrNoResumes),
		errors.Is(err, models.ErrNoValidResumes),
		errors.Is(err, models.ErrEmptyJobDescription):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrMissingCredentials):
		return fiber.StatusServiceUnavailable
	case models.IsAuthError(err):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
