package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication core. Callers classify failures
// with errors.Is and must not branch on message text.
var (
	// ErrValidation is returned for missing or malformed input. No state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned for an unknown user, credential or challenge.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for a duplicate username, email or credential id.
	ErrConflict = errors.New("already exists")

	// ErrChallengeExpiredOrMissing is returned when a challenge cannot be
	// consumed: it was never issued, already consumed, or expired.
	ErrChallengeExpiredOrMissing = errors.New("challenge expired or missing")

	// ErrCredentialNotRecognized is returned when an assertion names a
	// credential id that is not enrolled for any user.
	ErrCredentialNotRecognized = errors.New("credential not recognized")

	// ErrVerificationFailed is returned for any signature, origin,
	// relying-party id or counter mismatch. The concrete failing check is
	// deliberately not exposed to the caller.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrExternalDependency is returned when the captcha verifier or another
	// delegated capability is unreachable. Retryable; never treated as a
	// successful verification.
	ErrExternalDependency = errors.New("external dependency failure")
)

// Error attaches the failing operation to a sentinel so logs keep context
// while errors.Is classification still works.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err annotated with op, or nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsVerificationFailed(err error) bool { return errors.Is(err, ErrVerificationFailed) }
