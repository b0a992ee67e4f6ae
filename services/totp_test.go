package services

import (
	"testing"
	"time"

	"auth_core_ms/apperrors"
	"auth_core_ms/config"
	"auth_core_ms/domain"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTotpConf(t *testing.T, skew uint) {
	t.Helper()
	prev := config.Conf.Application.Totp
	config.Conf.Application.Totp = config.Totp{SkewSteps: skew}
	prevSec := config.Conf.Application.Security
	config.Conf.Application.Security.Issuer = "auth_core_ms"
	t.Cleanup(func() {
		config.Conf.Application.Totp = prev
		config.Conf.Application.Security = prevSec
	})
}

func newTotpFixture(t *testing.T) (*TotpService, *fakeUserRepo, *fakeEvents) {
	t.Helper()
	users := newFakeUserRepo()
	events := &fakeEvents{}
	jwt := NewJWTService([]byte("test-secret"), "auth_core_ms", time.Hour, 24*time.Hour)
	svc := NewTotpService(nil, users, jwt, newFakeRedis(), events)
	return svc, users, events
}

func TestValidateCodeSkewWindow(t *testing.T) {
	setTotpConf(t, 1)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "auth_core_ms", AccountName: "alice@example.com"})
	require.NoError(t, err)
	secret := key.Secret()
	now := time.Date(2026, 8, 30, 12, 0, 15, 0, time.UTC)

	cases := []struct {
		name     string
		codeAt   time.Time
		accepted bool
	}{
		{"current step", now, true},
		{"one step behind", now.Add(-30 * time.Second), true},
		{"one step ahead", now.Add(30 * time.Second), true},
		{"outside window behind", now.Add(-90 * time.Second), false},
		{"outside window ahead", now.Add(90 * time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := totp.GenerateCode(secret, tc.codeAt)
			require.NoError(t, err)
			assert.Equal(t, tc.accepted, validateCode(code, secret, now))
		})
	}
}

func TestProvisionIsIdempotentUntilConfirmed(t *testing.T) {
	setTotpConf(t, 1)
	svc, users, events := newTotpFixture(t)

	user, err := users.Create(nil, &domain.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	first, err := svc.Provision(user.Id)
	require.NoError(t, err)
	require.NotEmpty(t, first.Secret)
	require.NotEmpty(t, first.ProvisioningURI)
	require.NotEmpty(t, first.QRCode)

	second, err := svc.Provision(user.Id)
	require.NoError(t, err)
	assert.Equal(t, first.Secret, second.Secret)

	// Confirm with a fresh code; MFA flips on and further provisioning is refused.
	code, err := totp.GenerateCode(first.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(user.Id, code))
	assert.Contains(t, events.published, "mfa_enabled")

	_, err = svc.Provision(user.Id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConfirmRejectsWrongCode(t *testing.T) {
	setTotpConf(t, 1)
	svc, users, _ := newTotpFixture(t)

	user, err := users.Create(nil, &domain.User{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.Provision(user.Id)
	require.NoError(t, err)

	err = svc.Confirm(user.Id, "000000")
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)

	stored, err := users.GetByID(nil, user.Id)
	require.NoError(t, err)
	assert.False(t, stored.MfaEnabled)
}

func TestLoginVerifyMintsTokensOnlyForEnabledMfa(t *testing.T) {
	setTotpConf(t, 1)
	svc, users, _ := newTotpFixture(t)

	user, err := users.Create(nil, &domain.User{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)

	_, err = svc.LoginVerify(user.Id, "123456")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	setup, err := svc.Provision(user.Id)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(user.Id, code))

	tokens, err := svc.LoginVerify(user.Id, code)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, err = svc.LoginVerify(user.Id, "999999")
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailed)
}
