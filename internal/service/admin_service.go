package service

import (
	"context"
	"encoding/json"

	"soundwars/internal/apperr"
	"soundwars/internal/models"
	"soundwars/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type AdminService struct {
	adminRepo *repository.AdminRepository
	auditRepo *repository.AuditLogRepository
	contests  *ContestService
	log       *zap.Logger
}

func NewAdminService(adminRepo *repository.AdminRepository, auditRepo *repository.AuditLogRepository, contests *ContestService, log *zap.Logger) *AdminService {
	return &AdminService{adminRepo: adminRepo, auditRepo: auditRepo, contests: contests, log: log}
}

// Dashboard returns platform counters plus figures for the active contest.
func (s *AdminService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.adminRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return stats, nil
		}
		return nil, err
	}
	stats.CurrentContest = c
	stats.CurrentPhase = s.contests.Phase(c)
	if stats.ContestSongs, err = s.adminRepo.CountSongsInContest(ctx, c.ID); err != nil {
		return nil, err
	}
	if stats.ContestVotes, err = s.contests.songRepo.CountVotesCast(ctx, c.ID); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) Users(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	return s.adminRepo.ListUsers(ctx, search, page, limit)
}

// AuditEntry describes one admin action for the audit trail.
type AuditEntry struct {
	ActorID    uint
	Action     string
	Resource   string
	ResourceID string
	IP         string
	UserAgent  string
	Metadata   map[string]interface{}
}

// Record writes an audit log row. Failures are logged, never returned.
func (s *AdminService) Record(ctx context.Context, e AuditEntry) {
	var meta datatypes.JSON
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err == nil {
			meta = datatypes.JSON(b)
		}
	}
	actor := e.ActorID
	err := s.auditRepo.Create(ctx, &models.AuditLog{
		UserID:     &actor,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IP:         e.IP,
		UserAgent:  e.UserAgent,
		Metadata:   meta,
	})
	if err != nil {
		s.log.Warn("audit log write failed", zap.String("action", e.Action), zap.Error(err))
	}
}

func (s *AdminService) AuditTrail(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error) {
	return s.auditRepo.ListByResource(ctx, resource, resourceID)
}
