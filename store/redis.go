package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"auth_core_ms/apperrors"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// RedisChallengeLedger stores challenges in Redis so any instance can handle
// the finish call. Consume uses GETDEL, which is the atomic read-and-delete
// the single-use invariant requires; expiry is enforced by the key TTL.
type RedisChallengeLedger struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisChallengeLedger(rdb *redis.Client, ttl time.Duration) *RedisChallengeLedger {
	return &RedisChallengeLedger{rdb: rdb, ttl: ttl}
}

func (l *RedisChallengeLedger) Issue(ctx context.Context, subject Subject, purpose Purpose, session *webauthn.SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap("challenge issue", err)
	}
	return l.rdb.SetEx(ctx, ledgerKey(subject, purpose), data, l.ttl).Err()
}

func (l *RedisChallengeLedger) Consume(ctx context.Context, subject Subject, purpose Purpose) (*webauthn.SessionData, error) {
	val, err := l.rdb.GetDel(ctx, ledgerKey(subject, purpose)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.Wrap("challenge consume", apperrors.ErrChallengeExpiredOrMissing)
	}
	if err != nil {
		return nil, apperrors.Wrap("challenge consume", err)
	}

	var session webauthn.SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, apperrors.Wrap("challenge consume", err)
	}
	return &session, nil
}
