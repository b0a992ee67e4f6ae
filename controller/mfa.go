package controller

import (
	"encoding/base64"

	"auth_core_ms/dtos/request"
	"auth_core_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IMfaController interface {
	Setup(c *fiber.Ctx) error
	Verify(c *fiber.Ctx) error
	Login(c *fiber.Ctx) error
}

type MfaController struct {
	totp services.ITotpService
}

func NewMfaController(totp services.ITotpService) IMfaController {
	return &MfaController{totp: totp}
}

func currentUserId(c *fiber.Ctx) (uint, bool) {
	sub, ok := c.Locals("userId").(float64)
	if !ok {
		return 0, false
	}
	return uint(sub), true
}

func (mc *MfaController) Setup(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid token"})
	}

	resp, err := mc.totp.Provision(userId)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"secret":           resp.Secret,
		"provisioning_uri": resp.ProvisioningURI,
		"qr_code":          base64.StdEncoding.EncodeToString(resp.QRCode),
	})
}

func (mc *MfaController) Verify(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid token"})
	}
	req := c.Locals("body").(*request.MfaCodeRequest)

	if err := mc.totp.Confirm(userId, req.Code); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "mfa_enabled"})
}

func (mc *MfaController) Login(c *fiber.Ctx) error {
	req := c.Locals("body").(*request.MfaLoginRequest)

	tokens, err := mc.totp.LoginVerify(req.UserId, req.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tokens)
}
