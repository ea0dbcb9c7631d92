package models

import "time"

// Vote rows are immutable once cast.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_contest" json:"user_id"`
	ContestID uint      `gorm:"not null;uniqueIndex:idx_votes_user_contest;index" json:"contest_id"`
	SongID    uint      `gorm:"not null;index" json:"song_id"`
	IP        string    `gorm:"size:45" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	Song *Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}

type Win struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ContestID        uint      `gorm:"uniqueIndex;not null" json:"contest_id"`
	ArtistID         uint      `gorm:"not null;index" json:"artist_id"`
	SongID           uint      `gorm:"not null" json:"song_id"`
	FinalVoteCount   int       `gorm:"not null" json:"final_vote_count"`
	PrizeAmountMinor int64     `gorm:"not null;default:0" json:"prize_amount_minor"`
	WonAt            time.Time `gorm:"not null;index" json:"won_at"`

	Artist  *Artist  `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Song    *Song    `gorm:"foreignKey:SongID" json:"song,omitempty"`
	Contest *Contest `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
}

func (Win) TableName() string {
	return "wins"
}
