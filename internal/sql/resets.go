package sql

import (
	"errors"
	"strings"
	"time"

	"portal/internal/models"

	"gorm.io/gorm"
)

var ErrResetNotFound = errors.New("password reset not found")

// GetLatestReset returns the most recent pending reset of email.
func GetLatestReset(db *gorm.DB, email string) (models.PasswordReset, error) {
	var reset models.PasswordReset

	err := db.Where("email = ?", strings.TrimSpace(email)).
		Order("created_at DESC").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PasswordReset{}, ErrResetNotFound
		}
		return models.PasswordReset{}, err
	}

	return reset, nil
}

// ReplaceReset stores reset as the only pending reset of its e-mail.
func ReplaceReset(db *gorm.DB, reset *models.PasswordReset) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := DeleteResets(tx, reset.Email); err != nil {
			return err
		}
		return tx.Create(reset).Error
	})
}

func DeleteResets(db *gorm.DB, email string) error {
	return db.Where("email = ?", strings.TrimSpace(email)).Delete(&models.PasswordReset{}).Error
}

// DeleteExpiredResets removes every reset that expired before now.
func DeleteExpiredResets(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at < ?", now).Delete(&models.PasswordReset{})
	return result.RowsAffected, result.Error
}
