package repository

import (
	"testing"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsDuplicateCredentialID(t *testing.T) {
	repo := NewMemoryCredentialRepository()

	cred := &domain.Credential{UserID: 1, CredentialID: []byte("cred-1"), PublicKey: []byte("pk-1")}
	require.NoError(t, repo.Add(nil, cred))

	// Same credential id under a different user is still a conflict:
	// credential ids are globally unique.
	dup := &domain.Credential{UserID: 2, CredentialID: []byte("cred-1"), PublicKey: []byte("pk-2")}
	assert.ErrorIs(t, repo.Add(nil, dup), apperrors.ErrConflict)
}

func TestFindByCredentialID(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	require.NoError(t, repo.Add(nil, &domain.Credential{UserID: 3, CredentialID: []byte("cred-3"), PublicKey: []byte("pk")}))

	cred, err := repo.FindByCredentialID(nil, []byte("cred-3"))
	require.NoError(t, err)
	assert.Equal(t, uint(3), cred.UserID)

	_, err = repo.FindByCredentialID(nil, []byte("unknown"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateCounterMonotonicity(t *testing.T) {
	tests := []struct {
		name     string
		stored   uint32
		reported uint32
		wantErr  error
	}{
		{"strictly increasing accepted", 0, 1, nil},
		{"large jump accepted", 5, 100, nil},
		{"equal rejected", 4, 4, apperrors.ErrVerificationFailed},
		{"regression rejected", 9, 3, apperrors.ErrVerificationFailed},
		{"unsupported counter sentinel accepted", 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryCredentialRepository()
			require.NoError(t, repo.Add(nil, &domain.Credential{
				UserID:       1,
				CredentialID: []byte("cred"),
				PublicKey:    []byte("pk"),
				SignCount:    tt.stored,
			}))

			err := repo.UpdateCounter(nil, []byte("cred"), tt.reported)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			cred, err := repo.FindByCredentialID(nil, []byte("cred"))
			require.NoError(t, err)
			assert.Equal(t, tt.reported, cred.SignCount)
		})
	}
}

func TestUpdateCounterUnknownCredential(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	assert.ErrorIs(t, repo.UpdateCounter(nil, []byte("missing"), 1), apperrors.ErrNotFound)
}

func TestRevoke(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	require.NoError(t, repo.Add(nil, &domain.Credential{UserID: 1, CredentialID: []byte("cred"), PublicKey: []byte("pk")}))

	// Wrong owner cannot revoke.
	assert.ErrorIs(t, repo.Revoke(nil, 2, []byte("cred")), apperrors.ErrNotFound)

	require.NoError(t, repo.Revoke(nil, 1, []byte("cred")))
	_, err := repo.FindByCredentialID(nil, []byte("cred"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	creds, err := repo.ListForUser(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, creds)
}
