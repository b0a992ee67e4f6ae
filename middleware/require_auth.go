package middleware

import (
	"strings"
	"time"

	"auth_core_ms/config"
	"auth_core_ms/services"

	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sec := config.Conf.Application.Security
		jwt := services.NewJWTService([]byte(sec.Secret), sec.Issuer,
			time.Duration(sec.TokenValidityInSeconds)*time.Second,
			time.Duration(sec.TokenValidityInSecondsForRememberMe)*time.Second)

		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid token",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseJWT(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, err := jwt.GetClaims(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		c.Locals("userId", claims["sub"])

		return c.Next()
	}
}
