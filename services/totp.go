package services

import (
	"encoding/base32"
	"time"

	"auth_core_ms/apperrors"
	"auth_core_ms/config"
	"auth_core_ms/dtos/response"
	"auth_core_ms/repository"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type ITotpService interface {
	Provision(userId uint) (*response.MfaSetupResponse, error)
	Confirm(userId uint, code string) error
	LoginVerify(userId uint, code string) (*response.Tokens, error)
}

type TotpService struct {
	db     *gorm.DB
	users  repository.IUserRepository
	jwt    IJWTService
	redis  IRedisService
	events IEventService
}

func NewTotpService(db *gorm.DB, users repository.IUserRepository, jwt IJWTService, redis IRedisService, events IEventService) *TotpService {
	return &TotpService{db: db, users: users, jwt: jwt, redis: redis, events: events}
}

// Provision returns the user's TOTP enrollment material. The secret is
// generated on the first call and reused on every later call until MFA is
// confirmed, so a user who re-opens the setup screen scans the same secret.
func (s *TotpService) Provision(userId uint) (*response.MfaSetupResponse, error) {
	user, err := s.users.GetByID(s.db, userId)
	if err != nil {
		return nil, err
	}
	if user.MfaEnabled {
		return nil, apperrors.Wrap("totp.provision", apperrors.ErrConflict)
	}

	opts := totp.GenerateOpts{
		Issuer:      config.Conf.Application.Security.Issuer,
		AccountName: user.Email,
	}
	if user.TotpSecret != "" {
		raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(user.TotpSecret)
		if err != nil {
			return nil, apperrors.Wrap("totp.provision", err)
		}
		opts.Secret = raw
	}

	key, err := totp.Generate(opts)
	if err != nil {
		return nil, apperrors.Wrap("totp.provision", err)
	}

	if user.TotpSecret == "" {
		user.TotpSecret = key.Secret()
		if err := s.users.Update(s.db, user); err != nil {
			return nil, err
		}
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, apperrors.Wrap("totp.provision", err)
	}

	return &response.MfaSetupResponse{
		Secret:          user.TotpSecret,
		ProvisioningURI: key.URL(),
		QRCode:          png,
	}, nil
}

// Confirm enables MFA after the user proves possession of the secret with a
// freshly generated code.
func (s *TotpService) Confirm(userId uint, code string) error {
	user, err := s.users.GetByID(s.db, userId)
	if err != nil {
		return err
	}
	if user.TotpSecret == "" {
		return apperrors.Wrap("totp.confirm", apperrors.ErrValidation)
	}
	if !validateCode(code, user.TotpSecret, time.Now()) {
		return apperrors.Wrap("totp.confirm", apperrors.ErrVerificationFailed)
	}
	if user.MfaEnabled {
		return nil
	}
	user.MfaEnabled = true
	if err := s.users.Update(s.db, user); err != nil {
		return err
	}
	s.events.PublishMfaEnabled(user.Id)
	return nil
}

// LoginVerify completes a pending password login for an MFA-enabled user.
// Enforcement is server-side: tokens are only minted here, never by the
// password step, for users with MFA on.
func (s *TotpService) LoginVerify(userId uint, code string) (*response.Tokens, error) {
	user, err := s.users.GetByID(s.db, userId)
	if err != nil {
		return nil, err
	}
	if !user.MfaEnabled || user.TotpSecret == "" {
		return nil, apperrors.Wrap("totp.login", apperrors.ErrValidation)
	}
	if !validateCode(code, user.TotpSecret, time.Now()) {
		return nil, apperrors.Wrap("totp.login", apperrors.ErrVerificationFailed)
	}

	tokens, err := s.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Wrap("totp.login", err)
	}
	if err := s.redis.SetRefreshToken(user.Id, tokens.RefreshToken); err != nil {
		return nil, apperrors.Wrap("totp.login", apperrors.ErrExternalDependency)
	}
	return tokens, nil
}

func validateCode(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      config.Conf.Application.Totp.SkewSteps,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
