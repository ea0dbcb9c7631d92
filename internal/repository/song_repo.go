package repository

import (
	"context"

	"soundwars/internal/domain"
	"soundwars/internal/models"

	"gorm.io/gorm"
)

// rankOrder is the leaderboard and winner ordering: most votes, then first submitted.
const rankOrder = "vote_count DESC, created_at ASC, id ASC"

type SongRepository struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

func (r *SongRepository) WithTx(tx *gorm.DB) *SongRepository {
	return &SongRepository{db: tx}
}

func (r *SongRepository) Create(ctx context.Context, s *models.Song) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SongRepository) GetByID(ctx context.Context, id uint) (*models.Song, error) {
	var s models.Song
	err := r.db.WithContext(ctx).Preload("Artist").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SongRepository) GetByArtistAndContest(ctx context.Context, artistID, contestID uint) (*models.Song, error) {
	var s models.Song
	err := r.db.WithContext(ctx).Where("artist_id = ? AND contest_id = ?", artistID, contestID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SongRepository) Update(ctx context.Context, s *models.Song) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// UpdateIfStatus applies fields only while the song is still in fromStatus. Returns rows affected so
// callers can detect a concurrent moderation.
func (r *SongRepository) UpdateIfStatus(ctx context.Context, id uint, fromStatus string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Song{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// IncrementVote bumps the tally of an approved song by one.
func (r *SongRepository) IncrementVote(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Song{}).
		Where("id = ? AND status = ?", id, domain.SongStatusApproved).
		UpdateColumn("vote_count", gorm.Expr("vote_count + 1"))
	return res.RowsAffected, res.Error
}

// RankedApproved lists approved songs of a contest in rank order. limit <= 0 means all.
func (r *SongRepository) RankedApproved(ctx context.Context, contestID uint, limit int) ([]models.Song, error) {
	q := r.db.WithContext(ctx).Preload("Artist").
		Where("contest_id = ? AND status = ?", contestID, domain.SongStatusApproved).
		Order(rankOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []models.Song
	err := q.Find(&list).Error
	return list, err
}

// TopApproved returns the current leader of a contest.
func (r *SongRepository) TopApproved(ctx context.Context, contestID uint) (*models.Song, error) {
	var s models.Song
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND status = ?", contestID, domain.SongStatusApproved).
		Order(rankOrder).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SongRepository) ListByArtist(ctx context.Context, artistID uint) ([]models.Song, error) {
	var list []models.Song
	err := r.db.WithContext(ctx).Where("artist_id = ?", artistID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *SongRepository) ListPending(ctx context.Context, page, limit int) ([]models.Song, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Song{}).Where("status = ?", domain.SongStatusPending)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Song
	err := q.Preload("Artist").Order("created_at ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *SongRepository) CountVotesCast(ctx context.Context, contestID uint) (int64, error) {
	var total struct{ Total int64 }
	err := r.db.WithContext(ctx).Model(&models.Song{}).
		Select("COALESCE(SUM(vote_count), 0) AS total").
		Where("contest_id = ?", contestID).Scan(&total).Error
	return total.Total, err
}
