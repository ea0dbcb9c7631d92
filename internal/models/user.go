package models

import (
	"slices"
	"time"

	"soundwars/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	Username            string                      `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email               string                      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash        string                      `gorm:"size:255" json:"-"`
	Roles               datatypes.JSONSlice[string] `json:"roles"`
	ResetTokenHash      *string                     `gorm:"uniqueIndex;size:64" json:"-"`
	ResetTokenExpiresAt *time.Time                  `json:"-"`
	LastLoginAt         *time.Time                  `json:"last_login_at"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	DeletedAt           gorm.DeletedAt              `gorm:"index" json:"-"`

	Artist *Artist `gorm:"foreignKey:UserID" json:"artist,omitempty"`
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// AddRole is a no-op when the role is already held.
func (u *User) AddRole(role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

func (u *User) IsAdmin() bool  { return u.HasRole(domain.RoleAdmin) }
func (u *User) IsArtist() bool { return u.HasRole(domain.RoleArtist) }

func (User) TableName() string {
	return "users"
}
