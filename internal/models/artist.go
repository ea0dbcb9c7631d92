package models

import "time"

type Artist struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StageName    string    `gorm:"size:100;not null" json:"stage_name"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Genre        string    `gorm:"size:50" json:"genre"`
	ProfileImage string    `gorm:"size:500" json:"profile_image"`
	IsPaid       bool      `gorm:"default:false;not null" json:"is_paid"`
	IsVerified   bool      `gorm:"default:false;not null;index" json:"is_verified"`
	PaymentID    *uint     `json:"payment_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Artist) TableName() string {
	return "artists"
}
