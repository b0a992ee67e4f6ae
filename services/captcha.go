package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auth_core_ms/apperrors"
	"auth_core_ms/config"

	"go.uber.org/zap"
)

type ICaptchaGate interface {
	Verify(ctx context.Context, token string) error
}

// CaptchaGate calls the configured external verifier before registration.
// When no secret key is configured, verification is skipped only if the
// unverified-dev flag is explicitly set; otherwise tokens are rejected.
// Transport failures honour the fail-open policy from the config.
type CaptchaGate struct {
	client *http.Client
	logger *zap.Logger
}

func NewCaptchaGate(logger *zap.Logger) *CaptchaGate {
	timeout := time.Duration(config.Conf.Application.Captcha.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CaptchaGate{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type captchaVerdict struct {
	Success bool `json:"success"`
}

func (g *CaptchaGate) Verify(ctx context.Context, token string) error {
	cfg := config.Conf.Application.Captcha
	if cfg.SecretKey == "" {
		if cfg.AllowUnverifiedDev {
			g.logger.Warn("captcha not configured, allowing unverified registration")
			return nil
		}
		return apperrors.Wrap("captcha.verify", apperrors.ErrExternalDependency)
	}

	form := url.Values{}
	form.Set("secret", cfg.SecretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap("captcha.verify", apperrors.ErrExternalDependency)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		if cfg.FailOpen {
			g.logger.Warn("captcha verifier unreachable, failing open", zap.Error(err))
			return nil
		}
		return apperrors.Wrap("captcha.verify", apperrors.ErrExternalDependency)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if cfg.FailOpen {
			g.logger.Warn("captcha verifier returned error status, failing open", zap.Int("status", resp.StatusCode))
			return nil
		}
		return apperrors.Wrap("captcha.verify", apperrors.ErrExternalDependency)
	}

	var verdict captchaVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return apperrors.Wrap("captcha.verify", apperrors.ErrExternalDependency)
	}
	if !verdict.Success {
		return apperrors.Wrap("captcha.verify", apperrors.ErrValidation)
	}
	return nil
}
