package domain

import (
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

type User struct {
	Id          uint         `gorm:"primaryKey" json:"id"`
	CreatedAt   *time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   *time.Time   `gorm:"default:null" json:"updated_at"`
	DeletedAt   *time.Time   `gorm:"default:null" json:"deleted_at"`
	Username    string       `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email       string       `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password    string       `gorm:"size:100;not null" json:"-"`
	TotpSecret  string       `gorm:"size:100" json:"-"`
	MfaEnabled  bool         `gorm:"not null;default:false" json:"mfa_enabled"`
	Credentials []Credential `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"credentials"`
}

func (u User) WebAuthnID() []byte {
	return []byte(strconv.Itoa(int(u.Id)))
}

func (u User) WebAuthnName() string {
	return u.Username
}

func (u User) WebAuthnDisplayName() string {
	return u.Username
}

func (u User) WebAuthnCredentials() []webauthn.Credential {
	var creds []webauthn.Credential
	for _, c := range u.Credentials {
		creds = append(creds, webauthn.Credential{
			ID:        c.CredentialID,
			PublicKey: c.PublicKey,
			Authenticator: webauthn.Authenticator{
				SignCount: c.SignCount,
			},
		})
	}
	return creds
}
