package services

import (
	"net/http"

	"github.com/go-webauthn/webauthn/webauthn"
)

// ISignatureVerifier checks a client-signed ceremony response against the
// stored public key material. Signature verification itself is delegated to
// the webauthn library; flows only interpret the outcome.
type ISignatureVerifier interface {
	VerifyAttestation(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error)
	VerifyAssertion(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error)
}

type WebAuthnVerifier struct {
	wa *webauthn.WebAuthn
}

func NewWebAuthnVerifier(wa *webauthn.WebAuthn) *WebAuthnVerifier {
	return &WebAuthnVerifier{wa: wa}
}

func (v *WebAuthnVerifier) VerifyAttestation(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error) {
	return v.wa.FinishRegistration(user, session, r)
}

// VerifyAssertion handles both targeted and discoverable ceremonies. A session
// without a user ID was issued under the anonymous sentinel, so the
// discoverable variant is used; the owning user has already been resolved from
// the asserted credential ID by the caller.
func (v *WebAuthnVerifier) VerifyAssertion(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error) {
	if len(session.UserID) == 0 {
		return v.wa.FinishDiscoverableLogin(func(rawID, userHandle []byte) (webauthn.User, error) {
			return user, nil
		}, session, r)
	}
	return v.wa.FinishLogin(user, session, r)
}
