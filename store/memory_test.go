package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"auth_core_ms/apperrors"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeIsSingleUse(t *testing.T) {
	ledger := NewMemoryChallengeLedger(5 * time.Minute)
	ctx := context.Background()

	session := &webauthn.SessionData{Challenge: "c-1"}
	require.NoError(t, ledger.Issue(ctx, SubjectForUser(1), PurposeRegistration, session))

	got, err := ledger.Consume(ctx, SubjectForUser(1), PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "c-1", got.Challenge)

	_, err = ledger.Consume(ctx, SubjectForUser(1), PurposeRegistration)
	assert.ErrorIs(t, err, apperrors.ErrChallengeExpiredOrMissing)
}

func TestConsumeExpiredChallenge(t *testing.T) {
	ledger := NewMemoryChallengeLedger(5 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	ledger.now = func() time.Time { return now }
	require.NoError(t, ledger.Issue(ctx, SubjectForUser(7), PurposeAuthentication, &webauthn.SessionData{Challenge: "c-7"}))

	ledger.now = func() time.Time { return now.Add(6 * time.Minute) }
	_, err := ledger.Consume(ctx, SubjectForUser(7), PurposeAuthentication)
	assert.ErrorIs(t, err, apperrors.ErrChallengeExpiredOrMissing)

	// Expired entries are burned, not resurrected.
	ledger.now = func() time.Time { return now }
	_, err = ledger.Consume(ctx, SubjectForUser(7), PurposeAuthentication)
	assert.ErrorIs(t, err, apperrors.ErrChallengeExpiredOrMissing)
}

func TestSubjectAndPurposeKeysDoNotCollide(t *testing.T) {
	ledger := NewMemoryChallengeLedger(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, ledger.Issue(ctx, SubjectForUser(42), PurposeAuthentication, &webauthn.SessionData{Challenge: "user-42"}))
	require.NoError(t, ledger.Issue(ctx, SubjectAnonymous, PurposeAuthentication, &webauthn.SessionData{Challenge: "anon"}))
	require.NoError(t, ledger.Issue(ctx, SubjectForUser(42), PurposeRegistration, &webauthn.SessionData{Challenge: "user-42-reg"}))

	got, err := ledger.Consume(ctx, SubjectAnonymous, PurposeAuthentication)
	require.NoError(t, err)
	assert.Equal(t, "anon", got.Challenge)

	got, err = ledger.Consume(ctx, SubjectForUser(42), PurposeAuthentication)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got.Challenge)

	got, err = ledger.Consume(ctx, SubjectForUser(42), PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "user-42-reg", got.Challenge)
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	ledger := NewMemoryChallengeLedger(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, ledger.Issue(ctx, SubjectForUser(9), PurposeAuthentication, &webauthn.SessionData{Challenge: "c-9"}))

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Consume(ctx, SubjectForUser(9), PurposeAuthentication); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one consumer may win")
}
