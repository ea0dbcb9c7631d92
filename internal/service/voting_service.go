package service

import (
	"context"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VotingService struct {
	db       *gorm.DB
	songRepo *repository.SongRepository
	voteRepo *repository.VoteRepository
	contests *ContestService
	clock    Clock
	log      *zap.Logger
}

func NewVotingService(db *gorm.DB, songRepo *repository.SongRepository, voteRepo *repository.VoteRepository, contests *ContestService, clock Clock, log *zap.Logger) *VotingService {
	return &VotingService{db: db, songRepo: songRepo, voteRepo: voteRepo, contests: contests, clock: clock, log: log}
}

// CastVote records the user's single vote for the current contest. The ledger
// row and the tally increment commit together.
func (s *VotingService) CastVote(ctx context.Context, userID, songID uint, ip string) (*models.Vote, error) {
	song, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		return nil, notFound(err, "song")
	}
	if song.Status != domain.SongStatusApproved {
		return nil, apperr.Validation("song is not available for voting")
	}
	contest, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Phase("no active contest")
		}
		return nil, err
	}
	if song.ContestID != contest.ID {
		return nil, apperr.Phase("song is not part of the current contest")
	}
	if phase := contest.PhaseAt(s.clock.Now()); phase != domain.PhaseVoting {
		return nil, apperr.Phase("not in voting phase").With("phase", phase)
	}

	vote := &models.Vote{UserID: userID, SongID: song.ID, ContestID: contest.ID, IP: ip}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.voteRepo.WithTx(tx).Create(ctx, vote); err != nil {
			return err
		}
		n, err := s.songRepo.WithTx(tx).IncrementVote(ctx, song.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return apperr.Validation("song is not available for voting")
		}
		return nil
	})
	if err != nil {
		return nil, s.voteConflict(ctx, err, userID, contest.ID)
	}
	s.log.Debug("vote cast", zap.Uint("user_id", userID), zap.Uint("song_id", song.ID), zap.Uint("contest_id", contest.ID))
	return vote, nil
}

func (s *VotingService) voteConflict(ctx context.Context, err error, userID, contestID uint) error {
	conflict := apperr.Conflict("already voted in this contest")
	mapped := conflictOr(err, conflict)
	if mapped != conflict {
		return mapped
	}
	if prior, lookupErr := s.voteRepo.GetByUserAndContest(ctx, userID, contestID); lookupErr == nil {
		conflict.With("voted_song_id", prior.SongID)
	}
	return conflict
}

type VoteStatus struct {
	ContestID   *uint        `json:"contest_id"`
	Phase       domain.Phase `json:"phase,omitempty"`
	HasVoted    bool         `json:"has_voted"`
	VotedSongID *uint        `json:"voted_song_id"`
	CanVote     bool         `json:"can_vote"`
}

// Status reports whether the user may still vote in the current contest.
func (s *VotingService) Status(ctx context.Context, userID uint) (*VoteStatus, error) {
	contest, err := s.contests.Current(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return &VoteStatus{}, nil
		}
		return nil, err
	}
	st := &VoteStatus{ContestID: &contest.ID, Phase: contest.PhaseAt(s.clock.Now())}
	v, err := s.voteRepo.GetByUserAndContest(ctx, userID, contest.ID)
	switch {
	case err == nil:
		st.HasVoted = true
		st.VotedSongID = &v.SongID
	case !isNotFound(err):
		return nil, err
	}
	st.CanVote = !st.HasVoted && st.Phase == domain.PhaseVoting
	return st, nil
}

// MyVote returns the user's vote in the current contest with the song it went to.
func (s *VotingService) MyVote(ctx context.Context, userID uint) (*models.Vote, error) {
	contest, err := s.contests.Current(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.voteRepo.GetWithSong(ctx, userID, contest.ID)
	if err != nil {
		return nil, notFound(err, "vote")
	}
	return v, nil
}
