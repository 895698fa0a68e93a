package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primarykey"                  json:"id"`
	Email          string         `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	Fullname       string         `gorm:"type:varchar(255);not null"            json:"fullname"`
	HashedPassword string         `gorm:"not null;default:''"                   json:"-"`
	Roles          []Role         `gorm:"many2many:user_role"                   json:"roles"`
	CreatedAt      time.Time      `                                             json:"created_at"`
	UpdatedAt      time.Time      `                                             json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index"                                 json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Role struct {
	ID   uint   `gorm:"primarykey"                            json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

type UserActivity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Fullname string    `json:"fullname"`
}

func (u *User) ToActivity() UserActivity {
	return UserActivity{
		ID:       u.ID,
		Email:    u.Email,
		Fullname: u.Fullname,
	}
}

// RoleNames returns the names of the roles attached to the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
