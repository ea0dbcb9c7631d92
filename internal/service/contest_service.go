package service

import (
	"context"
	"fmt"
	"time"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/validate"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContestService struct {
	db          *gorm.DB
	contestRepo *repository.ContestRepository
	songRepo    *repository.SongRepository
	winRepo     *repository.WinRepository
	artistRepo  *repository.ArtistRepository
	userRepo    *repository.UserRepository
	notif       *NotificationService
	clock       Clock
	log         *zap.Logger
}

func NewContestService(
	db *gorm.DB,
	contestRepo *repository.ContestRepository,
	songRepo *repository.SongRepository,
	winRepo *repository.WinRepository,
	artistRepo *repository.ArtistRepository,
	userRepo *repository.UserRepository,
	notif *NotificationService,
	clock Clock,
	log *zap.Logger,
) *ContestService {
	return &ContestService{
		db:          db,
		contestRepo: contestRepo,
		songRepo:    songRepo,
		winRepo:     winRepo,
		artistRepo:  artistRepo,
		userRepo:    userRepo,
		notif:       notif,
		clock:       clock,
		log:         log,
	}
}

// Current returns the active contest, or a NotFound error when none is running.
func (s *ContestService) Current(ctx context.Context) (*models.Contest, error) {
	c, err := s.contestRepo.GetActive(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("no active contest")
		}
		return nil, err
	}
	return c, nil
}

// Phase is the phase of c right now.
func (s *ContestService) Phase(c *models.Contest) domain.Phase {
	return c.PhaseAt(s.clock.Now())
}

func (s *ContestService) Get(ctx context.Context, id uint) (*models.Contest, error) {
	c, err := s.contestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contest")
	}
	return c, nil
}

func (s *ContestService) List(ctx context.Context, page, limit int) ([]models.Contest, int64, error) {
	return s.contestRepo.List(ctx, page, limit)
}

type CreateContestInput struct {
	Title             string
	Description       string
	StartDate         time.Time
	SubmissionEndDate time.Time
	VotingEndDate     time.Time
	PrizeAmountMinor  int64
}

// Create opens a new contest and makes it the only active one.
func (s *ContestService) Create(ctx context.Context, in CreateContestInput) (*models.Contest, error) {
	title := validate.Sanitize(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	start, subEnd, voteEnd := in.StartDate.UTC(), in.SubmissionEndDate.UTC(), in.VotingEndDate.UTC()
	if !domain.ValidContestWindow(start, subEnd, voteEnd) {
		return nil, apperr.Validation("dates must satisfy start_date < submission_end_date < voting_end_date")
	}
	if in.PrizeAmountMinor < 0 {
		return nil, apperr.Validation("prize amount cannot be negative")
	}
	slugStr, err := s.uniqueSlug(ctx, title, start)
	if err != nil {
		return nil, err
	}
	c := &models.Contest{
		Title:             title,
		Slug:              slugStr,
		Description:       validate.Sanitize(in.Description),
		StartDate:         start,
		SubmissionEndDate: subEnd,
		VotingEndDate:     voteEnd,
		PrizeAmountMinor:  in.PrizeAmountMinor,
		IsActive:          true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.contestRepo.WithTx(tx)
		if err := repo.DeactivateAll(ctx); err != nil {
			return err
		}
		return repo.Create(ctx, c)
	})
	if err != nil {
		return nil, conflictOr(err, apperr.Conflict("another contest was activated concurrently, retry"))
	}
	s.log.Info("contest created", zap.Uint("contest_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

func (s *ContestService) uniqueSlug(ctx context.Context, title string, start time.Time) (string, error) {
	base := slug.Make(title + " " + start.Format("2006-01"))
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.contestRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Finalize records the winner of a contest and closes it for good.
func (s *ContestService) Finalize(ctx context.Context, contestID uint) (*models.Win, error) {
	now := s.clock.Now()
	var win *models.Win
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contests := s.contestRepo.WithTx(tx)
		wins := s.winRepo.WithTx(tx)
		c, err := contests.GetByID(ctx, contestID)
		if err != nil {
			return notFound(err, "contest")
		}
		if _, err := wins.GetByContest(ctx, contestID); err == nil {
			return apperr.State("contest already finalized")
		} else if !isNotFound(err) {
			return err
		}
		top, err := s.songRepo.WithTx(tx).TopApproved(ctx, contestID)
		if err != nil {
			if isNotFound(err) {
				return apperr.Validation("contest has no approved songs")
			}
			return err
		}
		win = &models.Win{
			ContestID:        contestID,
			ArtistID:         top.ArtistID,
			SongID:           top.ID,
			FinalVoteCount:   top.VoteCount,
			PrizeAmountMinor: c.PrizeAmountMinor,
			WonAt:            now,
		}
		if err := wins.Create(ctx, win); err != nil {
			return conflictOr(err, apperr.State("contest already finalized"))
		}
		return contests.MarkCompleted(ctx, contestID, now)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("contest finalized",
		zap.Uint("contest_id", contestID), zap.Uint("song_id", win.SongID), zap.Int("votes", win.FinalVoteCount))
	s.notifyWinner(ctx, win)
	return win, nil
}

func (s *ContestService) notifyWinner(ctx context.Context, w *models.Win) {
	artist, err := s.artistRepo.GetByID(ctx, w.ArtistID)
	if err != nil {
		s.log.Warn("winner notification skipped", zap.Uint("artist_id", w.ArtistID), zap.Error(err))
		return
	}
	user, err := s.userRepo.GetByID(ctx, artist.UserID)
	if err != nil {
		s.log.Warn("winner notification skipped", zap.Uint("user_id", artist.UserID), zap.Error(err))
		return
	}
	song, err := s.songRepo.GetByID(ctx, w.SongID)
	if err != nil {
		return
	}
	contest, err := s.contestRepo.GetByID(ctx, w.ContestID)
	if err != nil {
		return
	}
	s.notif.Winner(user.Email, artist.StageName, song.Title, contest.Title, w.FinalVoteCount)
}

// Winners lists all recorded wins, newest first.
func (s *ContestService) Winners(ctx context.Context) ([]models.Win, error) {
	return s.winRepo.List(ctx)
}
