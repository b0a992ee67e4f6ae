package repository

import (
	"errors"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"

	"gorm.io/gorm"
)

type ICredentialRepository interface {
	// Add persists a new credential. Credential ids are globally unique:
	// re-enrollment of the same authenticator fails with ErrConflict
	// regardless of the owning user.
	Add(db *gorm.DB, cred *domain.Credential) error

	// FindByCredentialID resolves a credential (and so its owner) by raw id.
	FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Credential, error)

	// ListForUser returns all enrolled credentials, used to build the
	// exclusion list at registration time.
	ListForUser(db *gorm.DB, userID uint) ([]domain.Credential, error)

	// UpdateCounter moves the sign counter forward. A counter that does not
	// strictly increase is rejected with ErrVerificationFailed, except when
	// both sides report 0, the sentinel for authenticators without counter
	// support.
	UpdateCounter(db *gorm.DB, credentialID []byte, newCount uint32) error

	// Revoke removes one credential owned by the given user.
	Revoke(db *gorm.DB, userID uint, credentialID []byte) error
}

type CredentialRepository struct {
}

func NewCredentialRepository() ICredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) Add(db *gorm.DB, cred *domain.Credential) error {
	var count int64
	err := db.Model(&domain.Credential{}).
		Where("credential_id = ?", cred.CredentialID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Wrap("credential add", apperrors.ErrConflict)
	}
	// The unique index on credential_id backstops the race between the
	// existence check and the insert.
	return db.Create(cred).Error
}

func (r *CredentialRepository) FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Credential, error) {
	var cred domain.Credential
	err := db.Where("credential_id = ?", credentialID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap("credential lookup", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepository) ListForUser(db *gorm.DB, userID uint) ([]domain.Credential, error) {
	var creds []domain.Credential
	if err := db.Where("user_id = ?", userID).Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *CredentialRepository) UpdateCounter(db *gorm.DB, credentialID []byte, newCount uint32) error {
	// Single conditional UPDATE so the read-compare-write is atomic at the
	// database: either the stored counter is strictly lower, or both sides
	// are the unsupported-counter sentinel 0.
	res := db.Model(&domain.Credential{}).
		Where("credential_id = ? AND (sign_count < ? OR (sign_count = 0 AND ? = 0))",
			credentialID, newCount, newCount).
		Update("sign_count", newCount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if _, err := r.FindByCredentialID(db, credentialID); err != nil {
		return err
	}
	return apperrors.Wrap("counter update", apperrors.ErrVerificationFailed)
}

func (r *CredentialRepository) Revoke(db *gorm.DB, userID uint, credentialID []byte) error {
	res := db.Where("user_id = ? AND credential_id = ?", userID, credentialID).
		Delete(&domain.Credential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Wrap("credential revoke", apperrors.ErrNotFound)
	}
	return nil
}
