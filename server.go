package main

import (
	"time"

	"auth_core_ms/config"
	"auth_core_ms/controller"
	"auth_core_ms/dtos/request"
	"auth_core_ms/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	logger            *zap.Logger
	AuthController    controller.IAuthController
	MfaController     controller.IMfaController
	PasskeyController controller.IPasskeyController
}

func NewServer(
	logger *zap.Logger,
	authController controller.IAuthController,
	mfaController controller.IMfaController,
	passkeyController controller.IPasskeyController,
) *Server {
	return &Server{
		logger:            logger,
		AuthController:    authController,
		MfaController:     mfaController,
		PasskeyController: passkeyController,
	}
}

func (s *Server) Start() *fiber.App {
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware(s.logger))
	app.Use(middleware.LoggingMiddleware(s.logger))
	app.Use(middleware.GlobalRateLimiter())

	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	authGroup := apiVersion.Group("/auth")
	authGroup.Post("/register", middleware.RouteRateLimiter(10, 30*time.Second), middleware.ValidateBody[request.RegisterRequest](), s.AuthController.Register)
	authGroup.Post("/login", middleware.RouteRateLimiter(10, 30*time.Second), middleware.ValidateBody[request.LoginRequest](), s.AuthController.Login)
	authGroup.Post("/refresh-token", s.AuthController.RefreshToken)

	mfaGroup := authGroup.Group("/mfa")
	mfaGroup.Post("/setup", middleware.AuthMiddleware(), s.MfaController.Setup)
	mfaGroup.Post("/verify", middleware.AuthMiddleware(), middleware.ValidateBody[request.MfaCodeRequest](), s.MfaController.Verify)
	mfaGroup.Post("/login", middleware.RouteRateLimiter(10, 30*time.Second), middleware.ValidateBody[request.MfaLoginRequest](), s.MfaController.Login)

	webauthnGroup := authGroup.Group("/webauthn")
	webauthnGroup.Post("/register/begin/:userId", middleware.AuthMiddleware(), s.PasskeyController.RegisterBegin)
	webauthnGroup.Post("/register/finish/:userId", middleware.AuthMiddleware(), s.PasskeyController.RegisterFinish)
	webauthnGroup.Post("/login/begin", s.PasskeyController.LoginBegin)
	webauthnGroup.Post("/login/finish", middleware.RouteRateLimiter(10, 30*time.Second), s.PasskeyController.LoginFinish)
	webauthnGroup.Get("/credentials/:userId", middleware.AuthMiddleware(), s.PasskeyController.ListCredentials)
	webauthnGroup.Delete("/credentials/:userId/:credentialId", middleware.AuthMiddleware(), s.PasskeyController.RevokeCredential)

	return app
}
