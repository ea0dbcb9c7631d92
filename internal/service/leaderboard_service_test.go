package service

import (
	"context"
	"testing"
	"time"

	"soundwars/internal/apperr"
	"soundwars/internal/domain"
)

func TestLeaderboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	board, err := e.leaderboard.Current(ctx)
	if err != nil || board.Contest != nil || len(board.Entries) != 0 {
		t.Fatalf("empty board = %+v, %v", board, err)
	}

	c := e.contest(t, "March")
	e.approvedSong(t, e.artist(t, "b", true), c, "second", 5, T0.Add(2*time.Hour))
	e.approvedSong(t, e.artist(t, "a", true), c, "first", 5, T0.Add(time.Hour))
	e.approvedSong(t, e.artist(t, "c", true), c, "third", 2, T0)
	e.at(days(15))

	board, err = e.leaderboard.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	if len(board.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(board.Entries), len(want))
	}
	for i, title := range want {
		if board.Entries[i].Title != title || board.Entries[i].Rank != i+1 {
			t.Errorf("entry %d = %+v, want %s", i, board.Entries[i], title)
		}
	}
	if board.TotalVotes != 12 || board.Phase != domain.PhaseVoting {
		t.Errorf("total = %d phase = %s", board.TotalVotes, board.Phase)
	}
	if board.Entries[0].StageName != "a" {
		t.Errorf("stage name = %q", board.Entries[0].StageName)
	}

	top, err := e.leaderboard.Top(ctx, 2)
	if err != nil || len(top.Entries) != 2 {
		t.Errorf("Top(2) = %+v, %v", top, err)
	}
	for _, limit := range []int{0, domain.MaxLeaderboardLimit + 1} {
		if _, err := e.leaderboard.Top(ctx, limit); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("Top(%d): err = %v, want validation", limit, err)
		}
	}

	byID, err := e.leaderboard.ForContest(ctx, c.ID)
	if err != nil || len(byID.Entries) != 3 {
		t.Errorf("ForContest = %+v, %v", byID, err)
	}
	if _, err := e.leaderboard.ForContest(ctx, 999); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing contest: err = %v", err)
	}
}

func TestAdminDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.contest(t, "March")
	song := e.approvedSong(t, e.artist(t, "a", true), c, "hit", 0, T0)
	e.artist(t, "b", false)
	voter := e.user(t, "voter")
	e.at(days(15))
	if _, err := e.voting.CastVote(ctx, voter.ID, song.ID, ""); err != nil {
		t.Fatal(err)
	}

	stats, err := e.admin.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalUsers != 3 || stats.TotalArtists != 2 || stats.PaidArtists != 1 {
		t.Errorf("user stats = %+v", stats)
	}
	if stats.ApprovedSongs != 1 || stats.TotalVotes != 1 || stats.ContestVotes != 1 || stats.ContestSongs != 1 {
		t.Errorf("contest stats = %+v", stats)
	}
	if stats.CurrentContest == nil || stats.CurrentPhase != domain.PhaseVoting {
		t.Errorf("current = %+v %s", stats.CurrentContest, stats.CurrentPhase)
	}

	users, total, err := e.admin.Users(ctx, "vot", 1, 10)
	if err != nil || total != 1 || users[0].Username != "voter" {
		t.Errorf("Users = %+v (%d), %v", users, total, err)
	}

	e.admin.Record(ctx, AuditEntry{ActorID: voter.ID, Action: "song_approved", Resource: "song", ResourceID: "1", Metadata: map[string]interface{}{"k": "v"}})
	trail, err := e.admin.AuditTrail(ctx, "song", "1")
	if err != nil || len(trail) != 1 {
		t.Errorf("AuditTrail = %+v, %v", trail, err)
	}
}
