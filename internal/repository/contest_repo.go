package repository

import (
	"context"
	"time"

	"soundwars/internal/models"

	"gorm.io/gorm"
)

type ContestRepository struct {
	db *gorm.DB
}

func NewContestRepository(db *gorm.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) WithTx(tx *gorm.DB) *ContestRepository {
	return &ContestRepository{db: tx}
}

func (r *ContestRepository) Create(ctx context.Context, c *models.Contest) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContestRepository) GetByID(ctx context.Context, id uint) (*models.Contest, error) {
	var c models.Contest
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActive returns the single active contest; gorm.ErrRecordNotFound when none.
func (r *ContestRepository) GetActive(ctx context.Context) (*models.Contest, error) {
	var c models.Contest
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeactivateAll clears the active flag (and its unique slot) on every contest.
func (r *ContestRepository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&models.Contest{}).Where("is_active = ?", true).
		Updates(map[string]interface{}{"is_active": false, "active_slot": nil}).Error
}

// MarkCompleted closes a contest for good.
func (r *ContestRepository) MarkCompleted(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Contest{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":    false,
			"active_slot":  nil,
			"completed":    true,
			"completed_at": at,
		}).Error
}

func (r *ContestRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Contest{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *ContestRepository) List(ctx context.Context, page, limit int) ([]models.Contest, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Contest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Contest
	err := r.db.WithContext(ctx).Order("start_date DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *ContestRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Contest{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
