package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"
	"auth_core_ms/repository"
	"auth_core_ms/store"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

type IRegistrationFlow interface {
	Begin(ctx context.Context, userId uint) (*protocol.CredentialCreation, error)
	Finish(ctx context.Context, userId uint, r *http.Request) (*domain.Credential, error)
}

// RegistrationFlow runs the credential enrollment ceremony: issue a
// challenge, verify the signed attestation against it, persist the new
// credential.
type RegistrationFlow struct {
	db       *gorm.DB
	users    repository.IUserRepository
	creds    repository.ICredentialRepository
	ledger   store.ChallengeLedger
	wa       *webauthn.WebAuthn
	verifier ISignatureVerifier
	events   IEventService
}

func NewRegistrationFlow(db *gorm.DB, users repository.IUserRepository, creds repository.ICredentialRepository, ledger store.ChallengeLedger, wa *webauthn.WebAuthn, verifier ISignatureVerifier, events IEventService) *RegistrationFlow {
	return &RegistrationFlow{db: db, users: users, creds: creds, ledger: ledger, wa: wa, verifier: verifier, events: events}
}

// Begin issues a registration challenge for the user. Already-enrolled
// credentials are sent as exclusions so an authenticator refuses to
// re-enroll itself. Re-issuing replaces any pending challenge.
func (f *RegistrationFlow) Begin(ctx context.Context, userId uint) (*protocol.CredentialCreation, error) {
	user, err := f.users.GetByID(f.db, userId)
	if err != nil {
		return nil, err
	}

	existing, err := f.creds.ListForUser(f.db, userId)
	if err != nil {
		return nil, err
	}
	exclusions := make([]protocol.CredentialDescriptor, 0, len(existing))
	for _, c := range existing {
		exclusions = append(exclusions, protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: c.CredentialID,
		})
	}

	options, session, err := f.wa.BeginRegistration(user, webauthn.WithExclusions(exclusions))
	if err != nil {
		return nil, apperrors.Wrap("registration.begin", err)
	}

	if err := f.ledger.Issue(ctx, store.SubjectForUser(userId), store.PurposeRegistration, session); err != nil {
		return nil, err
	}
	return options, nil
}

// Finish consumes the pending challenge and verifies the attestation. The
// challenge is consumed before verification, win or lose: a failed attempt
// needs a brand-new challenge.
func (f *RegistrationFlow) Finish(ctx context.Context, userId uint, r *http.Request) (*domain.Credential, error) {
	user, err := f.users.GetByID(f.db, userId)
	if err != nil {
		return nil, err
	}

	session, err := f.ledger.Consume(ctx, store.SubjectForUser(userId), store.PurposeRegistration)
	if err != nil {
		return nil, err
	}

	cred, err := f.verifier.VerifyAttestation(user, *session, r)
	if err != nil {
		return nil, apperrors.Wrap("registration.finish", apperrors.ErrVerificationFailed)
	}

	authBytes, err := json.Marshal(cred.Authenticator)
	if err != nil {
		return nil, apperrors.Wrap("registration.finish", err)
	}

	entity := &domain.Credential{
		UserID:          user.Id,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		SignCount:       cred.Authenticator.SignCount,
		AAGUID:          cred.Authenticator.AAGUID,
		AttestationType: cred.AttestationType,
		Authenticator:   authBytes,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}
	if err := f.creds.Add(f.db, entity); err != nil {
		return nil, err
	}

	f.events.PublishCredentialEnrolled(user.Id, base64.RawURLEncoding.EncodeToString(cred.ID))
	return entity, nil
}
