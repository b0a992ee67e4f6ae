package services

import (
	"context"
	"time"

	"auth_core_ms/apperrors"
	"auth_core_ms/config"
	"auth_core_ms/domain"
	"auth_core_ms/dtos/request"
	"auth_core_ms/dtos/response"
	"auth_core_ms/repository"
	"auth_core_ms/util"

	"gorm.io/gorm"
)

type IUserService interface {
	RegisterPrimary(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	LoginPrimary(req *request.LoginRequest) (*response.LoginResponse, error)
	RefreshToken(req *request.RefreshTokenReq) (*response.Tokens, error)
}

type UserService struct {
	db      *gorm.DB
	repo    repository.IUserRepository
	redis   IRedisService
	jwt     IJWTService
	captcha ICaptchaGate
	events  IEventService
}

func NewUserService(db *gorm.DB, repo repository.IUserRepository, redis IRedisService, jwt IJWTService, captcha ICaptchaGate, events IEventService) *UserService {
	return &UserService{db: db, repo: repo, redis: redis, jwt: jwt, captcha: captcha, events: events}
}

// RegisterPrimary creates a user from username, email and password. The
// captcha gate runs before anything touches the database.
func (u *UserService) RegisterPrimary(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	if err := u.captcha.Verify(ctx, req.CaptchaToken); err != nil {
		return nil, err
	}

	exists, err := u.repo.ExistsByUsernameOrEmail(u.db, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Wrap("register", apperrors.ErrConflict)
	}

	digest, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap("register", err)
	}

	user, err := u.repo.Create(u.db, &domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: digest,
	})
	if err != nil {
		return nil, err
	}

	u.events.PublishUserRegistered(user.Id, user.Username)
	return &response.RegisterResponse{
		UserId:   user.Id,
		Username: user.Username,
		Status:   "registered",
	}, nil
}

// loginDummyDigest is a bcrypt digest of a throwaway value. The
// unknown-username branch compares against it so both failure paths pay the
// same bcrypt cost and response timing does not reveal whether a username exists.
const loginDummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginPrimary checks the password. Unknown usernames and wrong passwords
// report the same verification failure so the response never reveals which
// part was wrong. For MFA-enabled users no tokens are minted here; the
// caller must complete the second factor.
func (u *UserService) LoginPrimary(req *request.LoginRequest) (*response.LoginResponse, error) {
	user, err := u.repo.GetByUsername(u.db, req.Username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			util.VerifyPassword(req.Password, loginDummyDigest)
			return nil, apperrors.Wrap("login", apperrors.ErrVerificationFailed)
		}
		return nil, err
	}

	if !util.VerifyPassword(req.Password, user.Password) {
		return nil, apperrors.Wrap("login", apperrors.ErrVerificationFailed)
	}

	if user.MfaEnabled {
		return &response.LoginResponse{UserId: user.Id, MfaRequired: true}, nil
	}

	tokens, err := u.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Wrap("login", err)
	}
	if err := u.redis.SetRefreshToken(user.Id, tokens.RefreshToken); err != nil {
		return nil, apperrors.Wrap("login", apperrors.ErrExternalDependency)
	}

	return &response.LoginResponse{UserId: user.Id, MfaRequired: false, Tokens: tokens}, nil
}

// RefreshToken rotates the refresh token: the presented token must match the
// one currently stored for the user, and both tokens are replaced.
func (u *UserService) RefreshToken(req *request.RefreshTokenReq) (*response.Tokens, error) {
	if req.RefreshToken == "" {
		return nil, apperrors.Wrap("refresh", apperrors.ErrValidation)
	}

	token, err := u.jwt.ParseJWT(req.RefreshToken)
	if err != nil {
		return nil, apperrors.Wrap("refresh", apperrors.ErrVerificationFailed)
	}
	claims, err := u.jwt.GetClaims(token)
	if err != nil {
		return nil, apperrors.Wrap("refresh", apperrors.ErrVerificationFailed)
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, apperrors.Wrap("refresh", apperrors.ErrVerificationFailed)
	}
	userID := uint(sub)

	storedToken, err := u.redis.GetRefreshToken(userID)
	if err != nil || storedToken != req.RefreshToken {
		return nil, apperrors.Wrap("refresh", apperrors.ErrVerificationFailed)
	}

	newAccessToken, err := u.jwt.GenerateToken(userID, time.Duration(config.Conf.Application.Security.TokenValidityInSeconds)*time.Second)
	if err != nil {
		return nil, apperrors.Wrap("refresh", err)
	}
	newRefreshToken, err := u.jwt.GenerateToken(userID, time.Duration(config.Conf.Application.Security.TokenValidityInSecondsForRememberMe)*time.Second)
	if err != nil {
		return nil, apperrors.Wrap("refresh", err)
	}

	u.redis.DelRefreshToken(userID)
	if err := u.redis.SetRefreshToken(userID, newRefreshToken); err != nil {
		return nil, apperrors.Wrap("refresh", apperrors.ErrExternalDependency)
	}

	return &response.Tokens{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}
