package controller

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"auth_core_ms/dtos/request"
	"auth_core_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type IPasskeyController interface {
	RegisterBegin(c *fiber.Ctx) error
	RegisterFinish(c *fiber.Ctx) error
	LoginBegin(c *fiber.Ctx) error
	LoginFinish(c *fiber.Ctx) error
	ListCredentials(c *fiber.Ctx) error
	RevokeCredential(c *fiber.Ctx) error
}

type PasskeyController struct {
	registration services.IRegistrationFlow
	login        services.IAuthenticationFlow
}

func NewPasskeyController(registration services.IRegistrationFlow, login services.IAuthenticationFlow) IPasskeyController {
	return &PasskeyController{registration: registration, login: login}
}

func (pc *PasskeyController) RegisterBegin(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if sub, ok := currentUserId(c); !ok || sub != uint(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	options, err := pc.registration.Begin(c.Context(), uint(userID))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(options)
}

func (pc *PasskeyController) RegisterFinish(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if sub, ok := currentUserId(c); !ok || sub != uint(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	// Convert Fiber (fasthttp) request to *http.Request for the webauthn library
	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	cred, err := pc.registration.Finish(c.Context(), uint(userID), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":        "ok",
		"credential_id": base64.RawURLEncoding.EncodeToString(cred.CredentialID),
	})
}

func (pc *PasskeyController) LoginBegin(c *fiber.Ctx) error {
	var req request.CredentialLoginBegin
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	options, err := pc.login.Begin(c.Context(), req.Username)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(options)
}

func (pc *PasskeyController) LoginFinish(c *fiber.Ctx) error {
	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	result, err := pc.login.Finish(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (pc *PasskeyController) ListCredentials(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if sub, ok := currentUserId(c); !ok || sub != uint(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	creds, err := pc.login.ListCredentials(uint(userID))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(creds)
}

func (pc *PasskeyController) RevokeCredential(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	if sub, ok := currentUserId(c); !ok || sub != uint(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := pc.login.Revoke(uint(userID), c.Params("credentialId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "revoked"})
}
