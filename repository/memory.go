package repository

import (
	"encoding/hex"
	"sync"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"

	"gorm.io/gorm"
)

// MemoryCredentialRepository implements ICredentialRepository in process
// memory. It honors the same contract as the gorm-backed store, including
// counter monotonicity, and ignores the db handle. Intended for tests and
// single-instance development setups.
type MemoryCredentialRepository struct {
	mu     sync.Mutex
	byID   map[string]*domain.Credential
	nextID uint
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{byID: make(map[string]*domain.Credential), nextID: 1}
}

func credKey(id []byte) string {
	return hex.EncodeToString(id)
}

func (r *MemoryCredentialRepository) Add(_ *gorm.DB, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := credKey(cred.CredentialID)
	if _, ok := r.byID[key]; ok {
		return apperrors.Wrap("credential add", apperrors.ErrConflict)
	}
	stored := *cred
	stored.ID = r.nextID
	r.nextID++
	r.byID[key] = &stored
	return nil
}

func (r *MemoryCredentialRepository) FindByCredentialID(_ *gorm.DB, credentialID []byte) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.byID[credKey(credentialID)]
	if !ok {
		return nil, apperrors.Wrap("credential lookup", apperrors.ErrNotFound)
	}
	copied := *cred
	return &copied, nil
}

func (r *MemoryCredentialRepository) ListForUser(_ *gorm.DB, userID uint) ([]domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var creds []domain.Credential
	for _, cred := range r.byID {
		if cred.UserID == userID {
			creds = append(creds, *cred)
		}
	}
	return creds, nil
}

func (r *MemoryCredentialRepository) UpdateCounter(_ *gorm.DB, credentialID []byte, newCount uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.byID[credKey(credentialID)]
	if !ok {
		return apperrors.Wrap("credential lookup", apperrors.ErrNotFound)
	}
	if newCount == 0 && cred.SignCount == 0 {
		return nil
	}
	if newCount <= cred.SignCount {
		return apperrors.Wrap("counter update", apperrors.ErrVerificationFailed)
	}
	cred.SignCount = newCount
	return nil
}

func (r *MemoryCredentialRepository) Revoke(_ *gorm.DB, userID uint, credentialID []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := credKey(credentialID)
	cred, ok := r.byID[key]
	if !ok || cred.UserID != userID {
		return apperrors.Wrap("credential revoke", apperrors.ErrNotFound)
	}
	delete(r.byID, key)
	return nil
}
