package store

import (
	"context"
	"sync"
	"time"

	"auth_core_ms/apperrors"

	"github.com/go-webauthn/webauthn/webauthn"
)

// MemoryChallengeLedger keeps challenges in process memory. Correct for a
// single instance only: in a multi-instance deployment the finish call may
// land on another instance, so the Redis backend must be used instead.
type MemoryChallengeLedger struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	session   *webauthn.SessionData
	expiresAt time.Time
}

func NewMemoryChallengeLedger(ttl time.Duration) *MemoryChallengeLedger {
	return &MemoryChallengeLedger{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryChallengeLedger) Issue(_ context.Context, subject Subject, purpose Purpose, session *webauthn.SessionData) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[ledgerKey(subject, purpose)] = memoryEntry{
		session:   session,
		expiresAt: l.now().Add(l.ttl),
	}
	return nil
}

func (l *MemoryChallengeLedger) Consume(_ context.Context, subject Subject, purpose Purpose) (*webauthn.SessionData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(subject, purpose)
	entry, ok := l.entries[key]
	if !ok {
		return nil, apperrors.Wrap("challenge consume", apperrors.ErrChallengeExpiredOrMissing)
	}
	// Removal happens under the same lock as the read, win or lose: an
	// expired challenge is burned too.
	delete(l.entries, key)

	if l.now().After(entry.expiresAt) {
		return nil, apperrors.Wrap("challenge consume", apperrors.ErrChallengeExpiredOrMissing)
	}
	return entry.session, nil
}
