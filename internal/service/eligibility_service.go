package service

import (
	"context"
	"math"
	"time"

	"soundwars/internal/repository"
)

type EligibilityStatus struct {
	CanParticipate      bool       `json:"can_participate"`
	IsPastWinner        bool       `json:"is_past_winner"`
	MonthsUntilEligible int        `json:"months_until_eligible"`
	LastWonAt           *time.Time `json:"last_won_at,omitempty"`
	EligibleAt          *time.Time `json:"eligible_at,omitempty"`
}

// ComputeEligibility applies the post-win cool-down. An artist is ineligible
// while now < lastWin + cooldown; the boundary instant is already eligible.
func ComputeEligibility(lastWin *time.Time, now time.Time, cooldown time.Duration) EligibilityStatus {
	if lastWin == nil {
		return EligibilityStatus{CanParticipate: true}
	}
	won := lastWin.UTC()
	eligibleAt := won.Add(cooldown)
	st := EligibilityStatus{
		IsPastWinner: true,
		LastWonAt:    &won,
		EligibleAt:   &eligibleAt,
	}
	if !now.UTC().Before(eligibleAt) {
		st.CanParticipate = true
		return st
	}
	days := int(math.Ceil(eligibleAt.Sub(now.UTC()).Hours() / 24))
	months := (days + 29) / 30
	if months < 1 {
		months = 1
	}
	st.MonthsUntilEligible = months
	return st
}

// EligibilityService derives eligibility from win history on every read.
type EligibilityService struct {
	winRepo  *repository.WinRepository
	clock    Clock
	cooldown time.Duration
}

func NewEligibilityService(winRepo *repository.WinRepository, clock Clock, cooldown time.Duration) *EligibilityService {
	return &EligibilityService{winRepo: winRepo, clock: clock, cooldown: cooldown}
}

func (s *EligibilityService) Status(ctx context.Context, artistID uint) (EligibilityStatus, error) {
	w, err := s.winRepo.LatestForArtist(ctx, artistID)
	if err != nil {
		if isNotFound(err) {
			return ComputeEligibility(nil, s.clock.Now(), s.cooldown), nil
		}
		return EligibilityStatus{}, err
	}
	return ComputeEligibility(&w.WonAt, s.clock.Now(), s.cooldown), nil
}

func (s *EligibilityService) CanParticipate(ctx context.Context, artistID uint) (bool, error) {
	st, err := s.Status(ctx, artistID)
	return st.CanParticipate, err
}

func (s *EligibilityService) MonthsUntilEligible(ctx context.Context, artistID uint) (int, error) {
	st, err := s.Status(ctx, artistID)
	return st.MonthsUntilEligible, err
}
