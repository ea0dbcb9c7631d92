package service

import (
	"context"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
)

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	SongID     uint   `json:"song_id"`
	Title      string `json:"title"`
	AudioURL   string `json:"audio_url"`
	CoverImage string `json:"cover_image"`
	ArtistID   uint   `json:"artist_id"`
	StageName  string `json:"stage_name"`
	VoteCount  int    `json:"vote_count"`
}

type Leaderboard struct {
	Contest    *models.Contest    `json:"contest"`
	Phase      domain.Phase       `json:"phase"`
	TotalVotes int64              `json:"total_votes"`
	Entries    []LeaderboardEntry `json:"entries"`
}

type LeaderboardService struct {
	contestRepo *repository.ContestRepository
	songRepo    *repository.SongRepository
	contests    *ContestService
	clock       Clock
}

func NewLeaderboardService(contestRepo *repository.ContestRepository, songRepo *repository.SongRepository, contests *ContestService, clock Clock) *LeaderboardService {
	return &LeaderboardService{contestRepo: contestRepo, songRepo: songRepo, contests: contests, clock: clock}
}

// Current ranks the active contest. With no active contest the board is empty.
func (s *LeaderboardService) Current(ctx context.Context) (*Leaderboard, error) {
	c, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return &Leaderboard{Entries: []LeaderboardEntry{}}, nil
		}
		return nil, err
	}
	return s.build(ctx, c, 0)
}

// Top returns the first limit entries of the active contest; limit must be 1..50.
func (s *LeaderboardService) Top(ctx context.Context, limit int) (*Leaderboard, error) {
	if limit < 1 || limit > domain.MaxLeaderboardLimit {
		return nil, apperr.Validation("limit must be between 1 and %d", domain.MaxLeaderboardLimit)
	}
	c, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return &Leaderboard{Entries: []LeaderboardEntry{}}, nil
		}
		return nil, err
	}
	return s.build(ctx, c, limit)
}

// ForContest ranks any contest, including finished ones.
func (s *LeaderboardService) ForContest(ctx context.Context, contestID uint) (*Leaderboard, error) {
	c, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return nil, notFound(err, "contest")
	}
	return s.build(ctx, c, 0)
}

func (s *LeaderboardService) build(ctx context.Context, c *models.Contest, limit int) (*Leaderboard, error) {
	songs, err := s.songRepo.RankedApproved(ctx, c.ID, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.songRepo.CountVotesCast(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	board := &Leaderboard{
		Contest:    c,
		Phase:      c.PhaseAt(s.clock.Now()),
		TotalVotes: total,
		Entries:    make([]LeaderboardEntry, 0, len(songs)),
	}
	for i, song := range songs {
		e := LeaderboardEntry{
			Rank:       i + 1,
			SongID:     song.ID,
			Title:      song.Title,
			AudioURL:   song.AudioURL,
			CoverImage: song.CoverImage,
			ArtistID:   song.ArtistID,
			VoteCount:  song.VoteCount,
		}
		if song.Artist != nil {
			e.StageName = song.Artist.StageName
		}
		board.Entries = append(board.Entries, e)
	}
	return board, nil
}
