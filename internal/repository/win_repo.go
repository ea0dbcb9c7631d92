package repository

import (
	"context"

	"soundwars/internal/models"

	"gorm.io/gorm"
)

type WinRepository struct {
	db *gorm.DB
}

func NewWinRepository(db *gorm.DB) *WinRepository {
	return &WinRepository{db: db}
}

func (r *WinRepository) WithTx(tx *gorm.DB) *WinRepository {
	return &WinRepository{db: tx}
}

func (r *WinRepository) Create(ctx context.Context, w *models.Win) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WinRepository) GetByContest(ctx context.Context, contestID uint) (*models.Win, error) {
	var w models.Win
	err := r.db.WithContext(ctx).Where("contest_id = ?", contestID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestForArtist returns the most recent win; gorm.ErrRecordNotFound for never-won artists.
func (r *WinRepository) LatestForArtist(ctx context.Context, artistID uint) (*models.Win, error) {
	var w models.Win
	err := r.db.WithContext(ctx).Where("artist_id = ?", artistID).Order("won_at DESC").First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WinRepository) CountByArtist(ctx context.Context, artistID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Win{}).Where("artist_id = ?", artistID).Count(&n).Error
	return n, err
}

// List returns all wins, newest first, with artist, song and contest.
func (r *WinRepository) List(ctx context.Context) ([]models.Win, error) {
	var list []models.Win
	err := r.db.WithContext(ctx).Preload("Artist").Preload("Song").Preload("Contest").
		Order("won_at DESC").Find(&list).Error
	return list, err
}
