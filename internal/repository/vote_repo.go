package repository

import (
	"context"

	"soundwars/internal/models"

	"gorm.io/gorm"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) WithTx(tx *gorm.DB) *VoteRepository {
	return &VoteRepository{db: tx}
}

func (r *VoteRepository) Create(ctx context.Context, v *models.Vote) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VoteRepository) GetByUserAndContest(ctx context.Context, userID, contestID uint) (*models.Vote, error) {
	var v models.Vote
	err := r.db.WithContext(ctx).Where("user_id = ? AND contest_id = ?", userID, contestID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetWithSong loads the user's vote for a contest with the voted song and its artist.
func (r *VoteRepository) GetWithSong(ctx context.Context, userID, contestID uint) (*models.Vote, error) {
	var v models.Vote
	err := r.db.WithContext(ctx).Preload("Song.Artist").
		Where("user_id = ? AND contest_id = ?", userID, contestID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VoteRepository) CountBySong(ctx context.Context, songID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("song_id = ?", songID).Count(&n).Error
	return n, err
}

func (r *VoteRepository) CountByContest(ctx context.Context, contestID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("contest_id = ?", contestID).Count(&n).Error
	return n, err
}
