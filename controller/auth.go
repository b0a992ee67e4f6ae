package controller

import (
	"auth_core_ms/dtos/request"
	"auth_core_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	Register(c *fiber.Ctx) error
	Login(c *fiber.Ctx) error
	RefreshToken(c *fiber.Ctx) error
}

type AuthController struct {
	userService services.IUserService
}

func NewAuthController(service services.IUserService) IAuthController {
	return &AuthController{userService: service}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.RegisterRequest)

	resp, err := ac.userService.RegisterPrimary(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.LoginRequest)

	resp, err := ac.userService.LoginPrimary(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req request.RefreshTokenReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	tokens, err := ac.userService.RefreshToken(&req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tokens)
}
