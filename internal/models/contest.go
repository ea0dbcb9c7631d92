package models

import (
	"time"

	"soundwars/internal/domain"

	"gorm.io/gorm"
)

type Contest struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"size:200;not null" json:"title"`
	Slug              string     `gorm:"uniqueIndex;size:240;not null" json:"slug"`
	Description       string     `gorm:"type:text" json:"description"`
	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	SubmissionEndDate time.Time  `gorm:"not null" json:"submission_end_date"`
	VotingEndDate     time.Time  `gorm:"not null" json:"voting_end_date"`
	PrizeAmountMinor  int64      `gorm:"not null;default:0" json:"prize_amount_minor"`
	IsActive          bool       `gorm:"not null;default:false;index" json:"is_active"`
	ActiveSlot        *int       `gorm:"uniqueIndex" json:"-"` // 1 while active, NULL otherwise
	Completed         bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// BeforeSave keeps ActiveSlot in step with IsActive so the unique index
// admits at most one active contest.
func (c *Contest) BeforeSave(tx *gorm.DB) error {
	if c.IsActive && !c.Completed {
		one := 1
		c.ActiveSlot = &one
	} else {
		c.ActiveSlot = nil
	}
	return nil
}

func (c *Contest) PhaseAt(now time.Time) domain.Phase {
	return domain.PhaseAt(c.StartDate, c.SubmissionEndDate, c.VotingEndDate, c.Completed, now)
}

func (Contest) TableName() string {
	return "contests"
}
