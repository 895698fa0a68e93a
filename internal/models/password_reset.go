package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordReset is a pending reset for an e-mail address. Only the argon2id
// hash of the token is stored; the plaintext leaves the system in the e-mail.
type PasswordReset struct {
	ID          uuid.UUID `gorm:"type:uuid;primarykey"               json:"id"`
	Email       string    `gorm:"type:varchar(254);not null;index"   json:"email"`
	HashedToken string    `gorm:"not null"                           json:"-"`
	ExpiresAt   time.Time `gorm:"not null;index"                     json:"expires_at"`
	CreatedAt   time.Time `                                          json:"created_at"`
}

func (p *PasswordReset) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
