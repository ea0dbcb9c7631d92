package repository

import (
	"context"
	"time"

	"soundwars/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record stores the event unless (provider, provider_event_id) was seen before.
// The returned bool is false for a duplicate delivery. A redelivery of an event
// that was never marked processed counts as fresh and takes over the stored row.
func (r *WebhookEventRepository) Record(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var prior models.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", e.Provider, e.ProviderEventID).
		First(&prior).Error
	if err != nil {
		return false, err
	}
	if prior.ProcessedAt != nil {
		return false, nil
	}
	e.ID = prior.ID
	return true, nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id uint, at time.Time, procErr error) error {
	fields := map[string]interface{}{"processed_at": at}
	if procErr != nil {
		fields["processing_error"] = procErr.Error()
	}
	return r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(fields).Error
}
