// Package store holds the challenge ledger: short-lived, single-use
// WebAuthn ceremony state keyed by subject and purpose. The ledger is the
// only shared mutable state on the replay-defense critical path, so Consume
// is atomic read-and-delete: of two concurrent consumers for the same key,
// exactly one gets the challenge and the other observes it missing.
package store

import (
	"context"
	"strconv"

	"github.com/go-webauthn/webauthn/webauthn"
)

// Subject identifies who a challenge is bound to. Real users are namespaced
// under "user:" so the anonymous sentinel can never collide with a user id.
type Subject string

// SubjectAnonymous is the reserved subject for discoverable login, where no
// user is known until the responding credential identifies one.
const SubjectAnonymous Subject = "anonymous"

func SubjectForUser(id uint) Subject {
	return Subject("user:" + strconv.FormatUint(uint64(id), 10))
}

type Purpose string

const (
	PurposeRegistration   Purpose = "register"
	PurposeAuthentication Purpose = "login"
)

// ChallengeLedger issues and consumes ceremony sessions. A session may be
// consumed at most once; expired sessions are indistinguishable from
// missing ones.
type ChallengeLedger interface {
	// Issue records a ceremony session for the subject/purpose pair,
	// replacing any previous one.
	Issue(ctx context.Context, subject Subject, purpose Purpose, session *webauthn.SessionData) error

	// Consume removes and returns the session for the subject/purpose pair.
	// Returns apperrors.ErrChallengeExpiredOrMissing when nothing consumable
	// is held for the key.
	Consume(ctx context.Context, subject Subject, purpose Purpose) (*webauthn.SessionData, error)
}

func ledgerKey(subject Subject, purpose Purpose) string {
	return "webauthn:" + string(purpose) + ":" + string(subject)
}
