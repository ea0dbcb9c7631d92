package domain

import (
	"testing"
	"time"
)

func TestPhaseAt(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	subEnd := t0.Add(10 * 24 * time.Hour)
	voteEnd := t0.Add(20 * 24 * time.Hour)

	tests := []struct {
		name      string
		now       time.Time
		completed bool
		want      Phase
	}{
		{"before start", t0.Add(-time.Second), false, PhaseUpcoming},
		{"at start", t0, false, PhaseSubmission},
		{"day 5", t0.Add(5 * 24 * time.Hour), false, PhaseSubmission},
		{"at submission end", subEnd, false, PhaseVoting},
		{"day 15", t0.Add(15 * 24 * time.Hour), false, PhaseVoting},
		{"at voting end", voteEnd, false, PhaseCompleted},
		{"day 25", t0.Add(25 * 24 * time.Hour), false, PhaseCompleted},
		{"completed flag during voting", t0.Add(15 * 24 * time.Hour), true, PhaseCompleted},
		{"completed flag before start", t0.Add(-time.Hour), true, PhaseCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseAt(t0, subEnd, voteEnd, tt.completed, tt.now); got != tt.want {
				t.Errorf("PhaseAt() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidContestWindow(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	if !ValidContestWindow(t0, t0.Add(day), t0.Add(2*day)) {
		t.Error("ordered window rejected")
	}
	if ValidContestWindow(t0, t0, t0.Add(day)) {
		t.Error("empty submission window accepted")
	}
	if ValidContestWindow(t0, t0.Add(2*day), t0.Add(day)) {
		t.Error("voting end before submission end accepted")
	}
}
