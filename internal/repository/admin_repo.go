package repository

import (
	"context"

	"soundwars/internal/domain"
	"soundwars/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers     int64           `json:"total_users"`
	TotalArtists   int64           `json:"total_artists"`
	PaidArtists    int64           `json:"paid_artists"`
	TotalSongs     int64           `json:"total_songs"`
	PendingSongs   int64           `json:"pending_songs"`
	ApprovedSongs  int64           `json:"approved_songs"`
	TotalVotes     int64           `json:"total_votes"`
	TotalRevenue   int64           `json:"total_revenue_minor"`
	CurrentContest *models.Contest `json:"current_contest"`
	CurrentPhase   domain.Phase    `json:"current_phase,omitempty"`
	ContestSongs   int64           `json:"current_contest_songs"`
	ContestVotes   int64           `json:"current_contest_votes"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetDashboardStats fills platform-wide counters. Per-contest fields are left
// to the caller, which knows the current contest and clock.
func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s DashboardStats
	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&s.TotalUsers, &models.User{}, "", nil},
		{&s.TotalArtists, &models.Artist{}, "", nil},
		{&s.PaidArtists, &models.Artist{}, "is_paid = ?", []interface{}{true}},
		{&s.TotalSongs, &models.Song{}, "", nil},
		{&s.PendingSongs, &models.Song{}, "status = ?", []interface{}{domain.SongStatusPending}},
		{&s.ApprovedSongs, &models.Song{}, "status = ?", []interface{}{domain.SongStatusApproved}},
		{&s.TotalVotes, &models.Vote{}, "", nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	var rev struct{ Total int64 }
	err := db.Model(&models.Payment{}).Select("COALESCE(SUM(amount_minor), 0) AS total").
		Where("status = ?", domain.PaymentStatusSuccessful).Scan(&rev).Error
	if err != nil {
		return nil, err
	}
	s.TotalRevenue = rev.Total
	return &s, nil
}

// ListUsers returns users with search and pagination.
func (r *AdminRepository) ListUsers(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Preload("Artist").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

func (r *AdminRepository) CountSongsInContest(ctx context.Context, contestID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Song{}).Where("contest_id = ?", contestID).Count(&n).Error
	return n, err
}
