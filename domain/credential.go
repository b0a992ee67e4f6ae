package domain

import "time"

// Credential is one enrolled public-key authenticator. CredentialID is
// globally unique across all users; SignCount only ever moves forward,
// except for authenticators that report 0 (counter unsupported).
type Credential struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	CredentialID    []byte     `gorm:"not null;unique" json:"credential_id"`
	PublicKey       []byte     `gorm:"not null" json:"public_key"`
	SignCount       uint32     `gorm:"not null" json:"sign_count"`
	CreatedAt       *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"default:null" json:"updated_at"`
	AAGUID          []byte     `json:"aa_guid"`
	AttestationType string     `json:"attestation_type"`
	Authenticator   []byte     `gorm:"type:json" json:"-"`
	BackupEligible  bool       `gorm:"not null;default:false" json:"backup_eligible"`
	BackupState     bool       `gorm:"not null;default:false" json:"backup_state"`
}

func (Credential) TableName() string {
	return "user_credentials"
}
