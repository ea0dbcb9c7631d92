package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"soundwars/config"
	"soundwars/internal/auth"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/testutil"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// T0 is the start of the contest built by env.contest.
var T0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

const (
	testFee      = int64(2_500_000)
	testCurrency = "NGN"
	testHash     = "webhook-secret"
)

type env struct {
	db     *gorm.DB
	clock  *testutil.Clock
	mail   *testutil.Mailer
	oracle *testutil.Oracle
	payCfg *config.PaymentConfig

	users    *repository.UserRepository
	artists  *repository.ArtistRepository
	songs    *repository.SongRepository
	votes    *repository.VoteRepository
	wins     *repository.WinRepository
	payments *repository.PaymentRepository

	notif       *NotificationService
	contestSvc  *ContestService
	eligibility *EligibilityService
	submissions *SubmissionService
	voting      *VotingService
	paymentSvc  *PaymentService
	authSvc     *AuthService
	artistSvc   *ArtistService
	leaderboard *LeaderboardService
	admin       *AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()
	e := &env{
		db:     db,
		clock:  testutil.NewClock(T0.Add(5 * 24 * time.Hour)),
		mail:   &testutil.Mailer{},
		oracle: &testutil.Oracle{},
		payCfg: &config.PaymentConfig{
			WebhookHash:   testHash,
			Currency:      testCurrency,
			FeeMajor:      25000,
			VerifyTimeout: time.Second,
		},
		users:    repository.NewUserRepository(db),
		artists:  repository.NewArtistRepository(db),
		songs:    repository.NewSongRepository(db),
		votes:    repository.NewVoteRepository(db),
		wins:     repository.NewWinRepository(db),
		payments: repository.NewPaymentRepository(db),
	}
	contests := repository.NewContestRepository(db)
	audit := repository.NewAuditLogRepository(db)

	e.notif = NewNotificationService(e.mail, log, "http://app.test")
	t.Cleanup(e.notif.Wait)
	e.contestSvc = NewContestService(db, contests, e.songs, e.wins, e.artists, e.users, e.notif, e.clock, log)
	e.eligibility = NewEligibilityService(e.wins, e.clock, 365*24*time.Hour)
	e.submissions = NewSubmissionService(e.artists, e.songs, e.users, e.contestSvc, e.eligibility, e.notif, e.clock, log)
	e.voting = NewVotingService(db, e.songs, e.votes, e.contestSvc, e.clock, log)
	e.paymentSvc = NewPaymentService(db, e.payCfg, e.oracle, e.payments, e.artists, e.users,
		repository.NewWebhookEventRepository(db), audit, e.notif, e.clock, log)
	jwtCfg := &config.JWTConfig{AccessSecret: "a", RefreshSecret: "r", AccessExpiry: time.Hour, RefreshExpiry: 24 * time.Hour, Issuer: "test"}
	e.authSvc = NewAuthService(jwtCfg, e.users, auth.NewBcryptHasher(bcrypt.MinCost), e.notif, e.clock, log)
	e.artistSvc = NewArtistService(db, e.artists, e.users, e.payments, e.wins, e.eligibility, log)
	e.leaderboard = NewLeaderboardService(contests, e.songs, e.contestSvc, e.clock)
	e.admin = NewAdminService(repository.NewAdminRepository(db), audit, e.contestSvc, log)
	return e
}

func (e *env) at(d time.Duration) {
	e.clock.Set(T0.Add(d))
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Roles: []string{domain.RoleUser}}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (e *env) artist(t *testing.T, name string, paid bool) *models.Artist {
	t.Helper()
	u := e.user(t, name)
	a := &models.Artist{UserID: u.ID, StageName: name, IsPaid: paid, IsVerified: paid}
	if err := e.artists.Create(context.Background(), a); err != nil {
		t.Fatalf("create artist %s: %v", name, err)
	}
	return a
}

// contest opens a contest with submission [T0, T0+10d) and voting [T0+10d, T0+20d).
func (e *env) contest(t *testing.T, title string) *models.Contest {
	t.Helper()
	c, err := e.contestSvc.Create(context.Background(), CreateContestInput{
		Title:             title,
		StartDate:         T0,
		SubmissionEndDate: T0.Add(days(10)),
		VotingEndDate:     T0.Add(days(20)),
		PrizeAmountMinor:  100_000_00,
	})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}
	return c
}

func (e *env) approvedSong(t *testing.T, a *models.Artist, c *models.Contest, title string, votes int, createdAt time.Time) *models.Song {
	t.Helper()
	s := &models.Song{
		ArtistID:  a.ID,
		ContestID: c.ID,
		Title:     title,
		AudioURL:  "https://cdn.example.com/" + title + ".mp3",
		Status:    domain.SongStatusApproved,
		VoteCount: votes,
		CreatedAt: createdAt,
	}
	if err := e.songs.Create(context.Background(), s); err != nil {
		t.Fatalf("create song %s: %v", title, err)
	}
	return s
}

var errInjected = errors.New("db unavailable")

// failUpdates makes every UPDATE on table fail while the returned flag is set.
func failUpdates(t *testing.T, db *gorm.DB, table string) *atomic.Bool {
	t.Helper()
	var on atomic.Bool
	on.Store(true)
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_"+table, func(tx *gorm.DB) {
		if on.Load() && tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	return &on
}
