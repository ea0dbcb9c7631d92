package models

import (
	"testing"
	"time"

	"soundwars/internal/domain"
)

func TestContestBeforeSaveActiveSlot(t *testing.T) {
	c := &Contest{IsActive: true}
	if err := c.BeforeSave(nil); err != nil {
		t.Fatal(err)
	}
	if c.ActiveSlot == nil || *c.ActiveSlot != 1 {
		t.Fatalf("active contest should occupy slot 1, got %v", c.ActiveSlot)
	}

	c.Completed = true
	_ = c.BeforeSave(nil)
	if c.ActiveSlot != nil {
		t.Fatal("completed contest must release the active slot")
	}

	c = &Contest{IsActive: false}
	_ = c.BeforeSave(nil)
	if c.ActiveSlot != nil {
		t.Fatal("inactive contest must not hold the active slot")
	}
}

func TestContestPhaseAt(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Contest{
		StartDate:         t0,
		SubmissionEndDate: t0.AddDate(0, 0, 10),
		VotingEndDate:     t0.AddDate(0, 0, 20),
	}
	if got := c.PhaseAt(t0.AddDate(0, 0, 5)); got != domain.PhaseSubmission {
		t.Errorf("day 5 = %s", got)
	}
	if got := c.PhaseAt(t0.AddDate(0, 0, 15)); got != domain.PhaseVoting {
		t.Errorf("day 15 = %s", got)
	}
	c.Completed = true
	if got := c.PhaseAt(t0.AddDate(0, 0, 15)); got != domain.PhaseCompleted {
		t.Errorf("completed override = %s", got)
	}
}

func TestUserRoles(t *testing.T) {
	u := &User{}
	u.AddRole(domain.RoleUser)
	u.AddRole(domain.RoleArtist)
	u.AddRole(domain.RoleArtist)
	if len(u.Roles) != 2 {
		t.Fatalf("roles = %v, want 2 distinct", u.Roles)
	}
	if !u.IsArtist() || u.IsAdmin() {
		t.Fatalf("unexpected role checks for %v", u.Roles)
	}
}
