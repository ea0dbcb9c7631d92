package repository

import (
	"context"

	"soundwars/internal/models"

	"gorm.io/gorm"
)

type ArtistRepository struct {
	db *gorm.DB
}

func NewArtistRepository(db *gorm.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

func (r *ArtistRepository) WithTx(tx *gorm.DB) *ArtistRepository {
	return &ArtistRepository{db: tx}
}

func (r *ArtistRepository) Create(ctx context.Context, a *models.Artist) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ArtistRepository) GetByID(ctx context.Context, id uint) (*models.Artist, error) {
	var a models.Artist
	err := r.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtistRepository) GetByUserID(ctx context.Context, userID uint) (*models.Artist, error) {
	var a models.Artist
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtistRepository) Update(ctx context.Context, a *models.Artist) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// MarkPaid unlocks participation for the artist profile owned by userID.
// It returns the number of profiles updated (0 when the user has no profile yet).
func (r *ArtistRepository) MarkPaid(ctx context.Context, userID, paymentID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Artist{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{"is_paid": true, "is_verified": true, "payment_id": paymentID})
	return res.RowsAffected, res.Error
}

// ListVerified returns paid, verified artists with pagination.
func (r *ArtistRepository) ListVerified(ctx context.Context, page, limit int) ([]models.Artist, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Artist{}).Where("is_verified = ?", true)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Artist
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
