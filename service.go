package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_core_ms/config"
	"auth_core_ms/controller"
	"auth_core_ms/middleware"
	"auth_core_ms/repository"
	"auth_core_ms/services"
	"auth_core_ms/store"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	//WebAuthn Conf
	webAuthn *webauthn.WebAuthn

	// Logger
	logger *zap.Logger

	// Repository
	userRepository       repository.IUserRepository
	credentialRepository repository.ICredentialRepository

	// Challenge ledger
	challengeLedger store.ChallengeLedger

	// Service
	jwtService         services.IJWTService
	redisService       services.IRedisService
	eventService       services.IEventService
	captchaGate        services.ICaptchaGate
	userService        services.IUserService
	totpService        services.ITotpService
	verifier           services.ISignatureVerifier
	registrationFlow   services.IRegistrationFlow
	authenticationFlow services.IAuthenticationFlow

	// Controller
	authController    controller.IAuthController
	mfaController     controller.IMfaController
	passkeyController controller.IPasskeyController
}

func (s *service) Start() {
	s.logger = config.InitLogger()
	defer s.logger.Sync()

	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis.Host)

	log.Info("WebAuthn config")
	s.webAuthn = config.InitWebAuthn()

	middleware.InitValidator()
	s.DependencyInjection()

	app := NewServer(s.logger, s.authController, s.mfaController, s.passkeyController).Start()

	log.Info("Server starting..")
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	s.gracefulShutdown(app)
}

func (s *service) DependencyInjection() {
	s.jwtService = &services.JWTService{
		Secret:     []byte(config.Conf.Application.Security.Secret),
		Issuer:     config.Conf.Application.Security.Issuer,
		AccessTTL:  time.Duration(config.Conf.Application.Security.TokenValidityInSeconds) * time.Second,
		RefreshTTL: time.Duration(config.Conf.Application.Security.TokenValidityInSecondsForRememberMe) * time.Second,
	}

	s.userRepository = repository.NewUserRepository()
	s.credentialRepository = repository.NewCredentialRepository()

	challengeTTL := time.Duration(config.Conf.Application.Challenge.TTLSeconds) * time.Second
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	if config.Conf.Application.Challenge.Backend == "memory" {
		s.challengeLedger = store.NewMemoryChallengeLedger(challengeTTL)
	} else {
		s.challengeLedger = store.NewRedisChallengeLedger(s.redisClient, challengeTTL)
	}

	s.redisService = services.NewRedisService(s.redisClient)
	s.eventService = services.NewEventService(s.logger)
	s.captchaGate = services.NewCaptchaGate(s.logger)
	s.verifier = services.NewWebAuthnVerifier(s.webAuthn)

	s.userService = services.NewUserService(s.dbConnection, s.userRepository, s.redisService, s.jwtService, s.captchaGate, s.eventService)
	s.totpService = services.NewTotpService(s.dbConnection, s.userRepository, s.jwtService, s.redisService, s.eventService)
	s.registrationFlow = services.NewRegistrationFlow(s.dbConnection, s.userRepository, s.credentialRepository, s.challengeLedger, s.webAuthn, s.verifier, s.eventService)
	s.authenticationFlow = services.NewAuthenticationFlow(s.dbConnection, s.userRepository, s.credentialRepository, s.challengeLedger, s.webAuthn, s.verifier, s.jwtService, s.redisService, s.eventService)

	s.authController = controller.NewAuthController(s.userService)
	s.mfaController = controller.NewMfaController(s.totpService)
	s.passkeyController = controller.NewPasskeyController(s.registrationFlow, s.authenticationFlow)
}

func (s *service) gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.Shutdown(); err != nil {
		log.Error("error while shutting down app", err)
	}

	s.eventService.Close()

	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown")
	}
}
