package models

import "time"

type Song struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ArtistID        uint       `gorm:"not null;uniqueIndex:idx_songs_artist_contest" json:"artist_id"`
	ContestID       uint       `gorm:"not null;uniqueIndex:idx_songs_artist_contest;index" json:"contest_id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	AudioURL        string     `gorm:"size:500;not null" json:"audio_url"`
	CoverImage      string     `gorm:"size:500" json:"cover_image"`
	Duration        int        `json:"duration"` // seconds
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	VoteCount       int        `gorm:"not null;default:0" json:"vote_count"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedAt      *time.Time `json:"rejected_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Artist  *Artist  `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Contest *Contest `gorm:"foreignKey:ContestID" json:"-"`
}

func (Song) TableName() string {
	return "songs"
}
