package middleware

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var Validate *validator.Validate

// InitValidator initializes validator and custom rules
func InitValidator() {
	Validate = validator.New()

	Validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 8 {
			return false
		}
		hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
		hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
		hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)
		hasSymbol := regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`).MatchString(password)
		return hasUpper && hasLower && hasDigit && hasSymbol
	})

	// A TOTP code is exactly six digits.
	Validate.RegisterValidation("totp_code", func(fl validator.FieldLevel) bool {
		return regexp.MustCompile(`^[0-9]{6}$`).MatchString(fl.Field().String())
	})
}

func translateValidationErrors(err validator.ValidationErrors) map[string]string {
	errorsMap := make(map[string]string)
	for _, e := range err {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errorsMap[field] = field + " is required"
		case "email":
			errorsMap[field] = field + " must be a valid email"
		case "password":
			errorsMap[field] = field + " must be at least 8 characters, with 1 uppercase, 1 lowercase, 1 number, and 1 symbol"
		case "totp_code":
			errorsMap[field] = field + " must be a 6-digit code"
		default:
			errorsMap[field] = field + " is invalid"
		}
	}
	return errorsMap
}

// ValidateBody is Fiber middleware that validates request body
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body T

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		if err := Validate.Struct(&body); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"errors": translateValidationErrors(errs),
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// Store validated body in context for controller
		c.Locals("body", &body)
		return c.Next()
	}
}
