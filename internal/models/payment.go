package models

import (
	"time"

	"gorm.io/datatypes"
)

type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	TxRef         string     `gorm:"uniqueIndex;size:100;not null" json:"tx_ref"`
	TransactionID *string    `gorm:"uniqueIndex;size:100" json:"transaction_id"`
	FlwRef        string     `gorm:"size:100" json:"flw_ref"`
	AmountMinor   int64      `gorm:"not null" json:"amount_minor"`
	Currency      string     `gorm:"size:3;not null" json:"currency"`
	Status        string     `gorm:"size:20;not null;index" json:"status"` // pending, successful, failed
	PaymentType   string     `gorm:"size:50" json:"payment_type"`
	Purpose       string     `gorm:"size:50;not null" json:"purpose"`
	VerifiedAt    *time.Time `json:"verified_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// WebhookEvent is the raw log of gateway callbacks, deduplicated per provider event.
type WebhookEvent struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Provider        string         `gorm:"size:32;not null;uniqueIndex:idx_webhook_provider_event" json:"provider"`
	ProviderEventID string         `gorm:"size:128;not null;uniqueIndex:idx_webhook_provider_event" json:"provider_event_id"`
	EventType       string         `gorm:"size:64;not null" json:"event_type"`
	TxRef           string         `gorm:"size:100;index" json:"tx_ref"`
	Payload         datatypes.JSON `json:"payload"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	ProcessingError string         `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
