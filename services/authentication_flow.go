package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"auth_core_ms/apperrors"
	"auth_core_ms/dtos/response"
	"auth_core_ms/repository"
	"auth_core_ms/store"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

type IAuthenticationFlow interface {
	Begin(ctx context.Context, username string) (*protocol.CredentialAssertion, error)
	Finish(ctx context.Context, r *http.Request) (*response.CredentialLoginResult, error)
	ListCredentials(userId uint) ([]response.CredentialSummary, error)
	Revoke(userId uint, credentialId string) error
}

// AuthenticationFlow runs the assertion ceremony. A targeted login binds the
// challenge to a known user; a discoverable login issues it under the
// anonymous sentinel and resolves the user from the asserted credential.
type AuthenticationFlow struct {
	db       *gorm.DB
	users    repository.IUserRepository
	creds    repository.ICredentialRepository
	ledger   store.ChallengeLedger
	wa       *webauthn.WebAuthn
	verifier ISignatureVerifier
	jwt      IJWTService
	redis    IRedisService
	events   IEventService
}

func NewAuthenticationFlow(db *gorm.DB, users repository.IUserRepository, creds repository.ICredentialRepository, ledger store.ChallengeLedger, wa *webauthn.WebAuthn, verifier ISignatureVerifier, jwt IJWTService, redis IRedisService, events IEventService) *AuthenticationFlow {
	return &AuthenticationFlow{db: db, users: users, creds: creds, ledger: ledger, wa: wa, verifier: verifier, jwt: jwt, redis: redis, events: events}
}

// Begin issues a login challenge. With a username the allow-list names that
// user's credentials; with an empty username the ceremony is discoverable and
// the challenge is held under the anonymous subject.
func (f *AuthenticationFlow) Begin(ctx context.Context, username string) (*protocol.CredentialAssertion, error) {
	if username == "" {
		options, session, err := f.wa.BeginDiscoverableLogin()
		if err != nil {
			return nil, apperrors.Wrap("login.begin", err)
		}
		if err := f.ledger.Issue(ctx, store.SubjectAnonymous, store.PurposeAuthentication, session); err != nil {
			return nil, err
		}
		return options, nil
	}

	user, err := f.users.GetByUsernameWithCredentials(f.db, username)
	if err != nil {
		return nil, err
	}
	if len(user.Credentials) == 0 {
		return nil, apperrors.Wrap("login.begin", apperrors.ErrNotFound)
	}
	options, session, err := f.wa.BeginLogin(user)
	if err != nil {
		return nil, apperrors.Wrap("login.begin", err)
	}
	if err := f.ledger.Issue(ctx, store.SubjectForUser(user.Id), store.PurposeAuthentication, session); err != nil {
		return nil, err
	}
	return options, nil
}

// assertionEnvelope pulls just the credential id out of the client response
// so ownership can be resolved before full verification.
type assertionEnvelope struct {
	RawID protocol.URLEncodedBase64 `json:"rawId"`
}

// Finish verifies the signed assertion. The pending challenge is consumed
// first, win or lose, then the signature, clone flag and sign counter are
// checked before a session is granted.
func (f *AuthenticationFlow) Finish(ctx context.Context, r *http.Request) (*response.CredentialLoginResult, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apperrors.Wrap("login.finish", apperrors.ErrValidation)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var envelope assertionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.RawID) == 0 {
		return nil, apperrors.Wrap("login.finish", apperrors.ErrValidation)
	}

	stored, err := f.creds.FindByCredentialID(f.db, envelope.RawID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Wrap("login.finish", apperrors.ErrCredentialNotRecognized)
		}
		return nil, err
	}

	user, err := f.users.GetByIDWithCredentials(f.db, stored.UserID)
	if err != nil {
		return nil, err
	}

	// A targeted ceremony holds the challenge under the user's subject, a
	// discoverable one under the anonymous sentinel.
	session, err := f.ledger.Consume(ctx, store.SubjectForUser(user.Id), store.PurposeAuthentication)
	if err != nil {
		session, err = f.ledger.Consume(ctx, store.SubjectAnonymous, store.PurposeAuthentication)
		if err != nil {
			return nil, err
		}
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cred, err := f.verifier.VerifyAssertion(*user, *session, r)
	if err != nil {
		return nil, apperrors.Wrap("login.finish", apperrors.ErrVerificationFailed)
	}
	if cred.Authenticator.CloneWarning {
		return nil, apperrors.Wrap("login.finish", apperrors.ErrVerificationFailed)
	}

	if err := f.creds.UpdateCounter(f.db, cred.ID, cred.Authenticator.SignCount); err != nil {
		return nil, err
	}

	tokens, err := f.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Wrap("login.finish", err)
	}
	if err := f.redis.SetRefreshToken(user.Id, tokens.RefreshToken); err != nil {
		return nil, apperrors.Wrap("login.finish", apperrors.ErrExternalDependency)
	}

	f.events.PublishCredentialLoginSucceeded(user.Id, base64.RawURLEncoding.EncodeToString(cred.ID))
	return &response.CredentialLoginResult{UserId: user.Id, Tokens: tokens}, nil
}

func (f *AuthenticationFlow) ListCredentials(userId uint) ([]response.CredentialSummary, error) {
	creds, err := f.creds.ListForUser(f.db, userId)
	if err != nil {
		return nil, err
	}
	summaries := make([]response.CredentialSummary, 0, len(creds))
	for _, c := range creds {
		summaries = append(summaries, response.CredentialSummary{
			CredentialId: base64.RawURLEncoding.EncodeToString(c.CredentialID),
			SignCount:    c.SignCount,
			AAGUID:       base64.RawURLEncoding.EncodeToString(c.AAGUID),
			BackupState:  c.BackupState,
		})
	}
	return summaries, nil
}

func (f *AuthenticationFlow) Revoke(userId uint, credentialId string) error {
	raw, err := base64.RawURLEncoding.DecodeString(credentialId)
	if err != nil {
		return apperrors.Wrap("credential.revoke", apperrors.ErrValidation)
	}
	return f.creds.Revoke(f.db, userId, raw)
}
