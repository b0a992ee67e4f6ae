package controller

import (
	"errors"

	"auth_core_ms/apperrors"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to an HTTP status. Challenge and
// verification failures both come back as 401 so a caller cannot probe which
// check blew up.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrChallengeExpiredOrMissing),
		errors.Is(err, apperrors.ErrCredentialNotRecognized),
		errors.Is(err, apperrors.ErrVerificationFailed):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrExternalDependency):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
