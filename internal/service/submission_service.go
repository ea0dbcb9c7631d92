package service

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/validate"

	"go.uber.org/zap"
)

type SongInput struct {
	Title      string
	AudioURL   string
	CoverImage string
	Duration   int
}

func (in *SongInput) normalize() error {
	in.Title = validate.Sanitize(in.Title)
	in.AudioURL = strings.TrimSpace(in.AudioURL)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if in.Title == "" {
		return apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(in.Title) > 200 {
		return apperr.Validation("title must be at most 200 characters")
	}
	if !isHTTPURL(in.AudioURL) {
		return apperr.Validation("audio_url must be an http(s) URL")
	}
	if in.CoverImage != "" && !isHTTPURL(in.CoverImage) {
		return apperr.Validation("cover_image must be an http(s) URL")
	}
	if in.Duration < 0 {
		return apperr.Validation("duration cannot be negative")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type SubmissionService struct {
	artistRepo  *repository.ArtistRepository
	songRepo    *repository.SongRepository
	userRepo    *repository.UserRepository
	contests    *ContestService
	eligibility *EligibilityService
	notif       *NotificationService
	clock       Clock
	log         *zap.Logger
}

func NewSubmissionService(
	artistRepo *repository.ArtistRepository,
	songRepo *repository.SongRepository,
	userRepo *repository.UserRepository,
	contests *ContestService,
	eligibility *EligibilityService,
	notif *NotificationService,
	clock Clock,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		artistRepo:  artistRepo,
		songRepo:    songRepo,
		userRepo:    userRepo,
		contests:    contests,
		eligibility: eligibility,
		notif:       notif,
		clock:       clock,
		log:         log,
	}
}

// Submit enters a song for the current contest on behalf of the user's artist profile.
func (s *SubmissionService) Submit(ctx context.Context, userID uint, in SongInput) (*models.Song, error) {
	artist, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Forbidden("artist profile required")
		}
		return nil, err
	}
	if !artist.IsPaid {
		return nil, apperr.Forbidden("payment required: complete artist registration payment first")
	}
	elig, err := s.eligibility.Status(ctx, artist.ID)
	if err != nil {
		return nil, err
	}
	if !elig.CanParticipate {
		return nil, apperr.Forbidden("past winners must wait before entering again").
			With("months_remaining", elig.MonthsUntilEligible)
	}
	contest, err := s.contests.Current(ctx)
	if err != nil {
		return nil, err
	}
	if phase := contest.PhaseAt(s.clock.Now()); phase != domain.PhaseSubmission {
		return nil, apperr.Phase("not in submission phase").With("phase", phase)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.songRepo.GetByArtistAndContest(ctx, artist.ID, contest.ID); err == nil {
		return nil, apperr.Conflict("already submitted a song to this contest")
	} else if !isNotFound(err) {
		return nil, err
	}
	song := &models.Song{
		ArtistID:   artist.ID,
		ContestID:  contest.ID,
		Title:      in.Title,
		AudioURL:   in.AudioURL,
		CoverImage: in.CoverImage,
		Duration:   in.Duration,
		Status:     domain.SongStatusPending,
	}
	if err := s.songRepo.Create(ctx, song); err != nil {
		return nil, conflictOr(err, apperr.Conflict("already submitted a song to this contest"))
	}
	s.log.Info("song submitted",
		zap.Uint("song_id", song.ID), zap.Uint("artist_id", artist.ID), zap.Uint("contest_id", contest.ID))
	return song, nil
}

// Update edits a pending song owned by the user.
func (s *SubmissionService) Update(ctx context.Context, userID, songID uint, in SongInput) (*models.Song, error) {
	song, err := s.ownedSong(ctx, userID, songID)
	if err != nil {
		return nil, err
	}
	if song.Status != domain.SongStatusPending {
		return nil, apperr.State("only pending songs can be edited")
	}
	if in.Title == "" {
		in.Title = song.Title
	}
	if in.AudioURL == "" {
		in.AudioURL = song.AudioURL
	}
	if in.CoverImage == "" {
		in.CoverImage = song.CoverImage
	}
	if in.Duration == 0 {
		in.Duration = song.Duration
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	n, err := s.songRepo.UpdateIfStatus(ctx, song.ID, domain.SongStatusPending, map[string]interface{}{
		"title":       in.Title,
		"audio_url":   in.AudioURL,
		"cover_image": in.CoverImage,
		"duration":    in.Duration,
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.State("only pending songs can be edited")
	}
	return s.songRepo.GetByID(ctx, song.ID)
}

func (s *SubmissionService) ownedSong(ctx context.Context, userID, songID uint) (*models.Song, error) {
	song, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		return nil, notFound(err, "song")
	}
	artist, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Forbidden("artist profile required")
		}
		return nil, err
	}
	if song.ArtistID != artist.ID {
		return nil, apperr.Forbidden("song belongs to another artist")
	}
	return song, nil
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Moderate approves or rejects a pending song. Rejection needs a reason.
func (s *SubmissionService) Moderate(ctx context.Context, songID uint, decision Decision, reason string) (*models.Song, error) {
	song, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		return nil, notFound(err, "song")
	}
	if song.Status != domain.SongStatusPending {
		return nil, apperr.State("song already moderated").With("status", song.Status)
	}
	now := s.clock.Now()
	var fields map[string]interface{}
	switch decision {
	case DecisionApprove:
		fields = map[string]interface{}{"status": domain.SongStatusApproved, "approved_at": now}
	case DecisionReject:
		reason = validate.Sanitize(reason)
		if reason == "" {
			return nil, apperr.Validation("rejection reason is required")
		}
		fields = map[string]interface{}{"status": domain.SongStatusRejected, "rejected_at": now, "rejection_reason": reason}
	default:
		return nil, apperr.Validation("decision must be approve or reject")
	}
	n, err := s.songRepo.UpdateIfStatus(ctx, songID, domain.SongStatusPending, fields)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.State("song already moderated")
	}
	updated, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	s.notifyModeration(ctx, updated, decision == DecisionApprove, reason)
	return updated, nil
}

func (s *SubmissionService) notifyModeration(ctx context.Context, song *models.Song, approved bool, reason string) {
	if song.Artist == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, song.Artist.UserID)
	if err != nil {
		s.log.Warn("moderation notification skipped", zap.Uint("song_id", song.ID), zap.Error(err))
		return
	}
	s.notif.SongModerated(u.Email, song.Artist.StageName, song.Title, approved, reason)
}

// ListMine returns every song the user's artist profile has submitted.
func (s *SubmissionService) ListMine(ctx context.Context, userID uint) ([]models.Song, error) {
	artist, err := s.artistRepo.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return []models.Song{}, nil
		}
		return nil, err
	}
	return s.songRepo.ListByArtist(ctx, artist.ID)
}

// ListApproved returns the current contest's approved songs ordered by votes.
func (s *SubmissionService) ListApproved(ctx context.Context) (*models.Contest, []models.Song, error) {
	contest, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, []models.Song{}, nil
		}
		return nil, nil, err
	}
	songs, err := s.songRepo.RankedApproved(ctx, contest.ID, 0)
	return contest, songs, err
}

// Get returns an approved song to anyone; other statuses only to the owner.
func (s *SubmissionService) Get(ctx context.Context, songID, viewerID uint, viewerIsAdmin bool) (*models.Song, error) {
	song, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		return nil, notFound(err, "song")
	}
	if song.Status == domain.SongStatusApproved || viewerIsAdmin {
		return song, nil
	}
	if viewerID != 0 && song.Artist != nil && song.Artist.UserID == viewerID {
		return song, nil
	}
	return nil, apperr.NotFound("song not found")
}

func (s *SubmissionService) ListPending(ctx context.Context, page, limit int) ([]models.Song, int64, error) {
	return s.songRepo.ListPending(ctx, page, limit)
}
