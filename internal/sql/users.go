package sql

import (
	"errors"
	"strings"

	"portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

func GetUserByEmail(db *gorm.DB, email string) (models.User, error) {
	var user models.User

	if err := db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func UpdatePassword(db *gorm.DB, userID uuid.UUID, hashedPassword string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("hashed_password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
