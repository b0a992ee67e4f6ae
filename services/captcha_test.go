package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth_core_ms/apperrors"
	"auth_core_ms/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setCaptchaConf(t *testing.T, c config.Captcha) {
	t.Helper()
	prev := config.Conf.Application.Captcha
	config.Conf.Application.Captcha = c
	t.Cleanup(func() { config.Conf.Application.Captcha = prev })
}

func TestCaptchaVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	setCaptchaConf(t, config.Captcha{SecretKey: "k", VerifyURL: srv.URL})

	gate := NewCaptchaGate(zap.NewNop())
	assert.NoError(t, gate.Verify(context.Background(), "token"))
}

func TestCaptchaVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	setCaptchaConf(t, config.Captcha{SecretKey: "k", VerifyURL: srv.URL})

	gate := NewCaptchaGate(zap.NewNop())
	err := gate.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCaptchaUnreachableFailsClosed(t *testing.T) {
	setCaptchaConf(t, config.Captcha{SecretKey: "k", VerifyURL: "http://127.0.0.1:1", FailOpen: false})

	gate := NewCaptchaGate(zap.NewNop())
	err := gate.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, apperrors.ErrExternalDependency)
}

func TestCaptchaUnreachableFailsOpenWhenConfigured(t *testing.T) {
	setCaptchaConf(t, config.Captcha{SecretKey: "k", VerifyURL: "http://127.0.0.1:1", FailOpen: true})

	gate := NewCaptchaGate(zap.NewNop())
	assert.NoError(t, gate.Verify(context.Background(), "token"))
}

func TestCaptchaUnconfiguredRequiresExplicitDevFlag(t *testing.T) {
	setCaptchaConf(t, config.Captcha{})
	gate := NewCaptchaGate(zap.NewNop())
	assert.ErrorIs(t, gate.Verify(context.Background(), "token"), apperrors.ErrExternalDependency)

	setCaptchaConf(t, config.Captcha{AllowUnverifiedDev: true})
	gate = NewCaptchaGate(zap.NewNop())
	assert.NoError(t, gate.Verify(context.Background(), "token"))
}
