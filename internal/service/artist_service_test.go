package service

import (
	"context"
	"testing"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
)

func TestCreateArtistProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "newbie")

	a, err := e.artistSvc.Create(ctx, u.ID, ArtistInput{StageName: " <i>DJ</i> Newbie ", Genre: "afrobeats"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.StageName != "DJ Newbie" || a.IsPaid {
		t.Errorf("artist = %+v", a)
	}
	got, _ := e.users.GetByID(ctx, u.ID)
	if !got.HasRole(domain.RoleArtist) {
		t.Errorf("roles = %v, want artist added", got.Roles)
	}
	if _, err := e.artistSvc.Create(ctx, u.ID, ArtistInput{StageName: "Again"}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second profile: err = %v, want conflict", err)
	}
	if _, err := e.artistSvc.Create(ctx, e.user(t, "blank").ID, ArtistInput{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing stage name: err = %v, want validation", err)
	}
}

func TestArtistProfileAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.artist(t, "singer", true)

	bio := "Lagos born"
	updated, err := e.artistSvc.UpdateProfile(ctx, a.UserID, ArtistUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Bio != bio || updated.StageName != "singer" {
		t.Errorf("updated = %+v", updated)
	}
	bad := "not a url"
	if _, err := e.artistSvc.UpdateProfile(ctx, a.UserID, ArtistUpdate{ProfileImage: &bad}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad image: err = %v, want validation", err)
	}

	p, err := e.artistSvc.GetProfile(ctx, a.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Wins != 0 || !p.Eligibility.CanParticipate {
		t.Errorf("profile = %+v", p)
	}

	unpaid := e.artist(t, "hidden", false)
	if _, err := e.artistSvc.Get(ctx, unpaid.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unverified artist visible: err = %v", err)
	}
	list, total, err := e.artistSvc.List(ctx, 1, 10)
	if err != nil || total != 1 || len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("List = %+v (%d), %v", list, total, err)
	}

	st, err := e.artistSvc.CheckEligibility(ctx, a.UserID)
	if err != nil || !st.CanParticipate {
		t.Errorf("CheckEligibility = %+v, %v", st, err)
	}
	if _, err := e.artistSvc.CheckEligibility(ctx, e.user(t, "fan").ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("no profile: err = %v, want not found", err)
	}
}
