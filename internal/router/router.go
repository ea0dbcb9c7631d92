package router

import (
	"soundwars/config"
	"soundwars/internal/auth"
	"soundwars/internal/domain"
	"soundwars/internal/handler"
	"soundwars/internal/middleware"
	"soundwars/internal/repository"
	"soundwars/internal/service"
	"soundwars/pkg/cloudinary"
	"soundwars/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators built by main. Cloud may be nil.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Oracle        payment.Oracle
	Cloud         cloudinary.Client
	Limiter       middleware.Limiter
	Notifications *service.NotificationService
	Clock         service.Clock
	Hasher        auth.Hasher
}

func Setup(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Clock == nil {
		d.Clock = service.SystemClock{}
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewBcryptHasher(0)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Log))

	// Repositories
	db := d.DB
	userRepo := repository.NewUserRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	contestRepo := repository.NewContestRepository(db)
	songRepo := repository.NewSongRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	winRepo := repository.NewWinRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	notif := d.Notifications
	clock := d.Clock
	contestSvc := service.NewContestService(db, contestRepo, songRepo, winRepo, artistRepo, userRepo, notif, clock, d.Log)
	eligibilitySvc := service.NewEligibilityService(winRepo, clock, cfg.Contest.WinnerCooldown)
	submissionSvc := service.NewSubmissionService(artistRepo, songRepo, userRepo, contestSvc, eligibilitySvc, notif, clock, d.Log)
	votingSvc := service.NewVotingService(db, songRepo, voteRepo, contestSvc, clock, d.Log)
	paymentSvc := service.NewPaymentService(db, &cfg.Payment, d.Oracle, paymentRepo, artistRepo, userRepo, eventRepo, auditRepo, notif, clock, d.Log)
	authSvc := service.NewAuthService(&cfg.JWT, userRepo, d.Hasher, notif, clock, d.Log)
	artistSvc := service.NewArtistService(db, artistRepo, userRepo, paymentRepo, winRepo, eligibilitySvc, d.Log)
	leaderboardSvc := service.NewLeaderboardService(contestRepo, songRepo, contestSvc, clock)
	adminSvc := service.NewAdminService(adminRepo, auditRepo, contestSvc, d.Log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	artistHandler := handler.NewArtistHandler(artistSvc)
	songHandler := handler.NewSongHandler(submissionSvc, d.Cloud, cfg.Cloudinary.Folder, cfg.Server.MaxUploadMB)
	voteHandler := handler.NewVoteHandler(votingSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	contestHandler := handler.NewContestHandler(contestSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, submissionSvc, contestSvc, cfg.Contest.DefaultPrize)
	healthHandler := handler.NewHealthHandler(db)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optionalAuth := middleware.OptionalAuth(&cfg.JWT)
	artistMw := middleware.RequireRole(domain.RoleArtist)

	r.GET("/health", healthHandler.Health)
	// gateway deliveries arrive in bursts from shared IPs and are not rate limited
	r.POST("/api/payments/webhook", paymentHandler.Webhook)

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, d.Log))
	}
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, authHandler.Me)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/verify-reset-token", authHandler.VerifyResetToken)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		artists := api.Group("/artists")
		{
			artists.GET("", artistHandler.List)
			artists.POST("/create", authMw, artistHandler.Create)
			artists.GET("/profile", authMw, artistMw, artistHandler.GetProfile)
			artists.PUT("/profile", authMw, artistMw, artistHandler.UpdateProfile)
			artists.GET("/check-eligibility", authMw, artistMw, artistHandler.CheckEligibility)
			artists.GET("/:id", artistHandler.Get)
		}

		songs := api.Group("/songs")
		{
			songs.GET("", songHandler.List)
			songs.GET("/my-submissions", authMw, artistMw, songHandler.MySubmissions)
			songs.POST("/submit", authMw, artistMw, songHandler.Submit)
			songs.POST("/upload", authMw, artistMw, songHandler.Upload)
			songs.GET("/:id", optionalAuth, songHandler.Get)
			songs.PUT("/:id", authMw, artistMw, songHandler.Update)
		}

		votes := api.Group("/votes", authMw)
		{
			votes.POST("/cast", voteHandler.Cast)
			votes.GET("/status", voteHandler.Status)
			votes.GET("/my-vote", voteHandler.MyVote)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/initialize", authMw, paymentHandler.Initialize)
			payments.POST("/verify", authMw, paymentHandler.Verify)
			payments.GET("/status/:tx_ref", authMw, paymentHandler.Status)
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.GET("", leaderboardHandler.Current)
			leaderboard.GET("/top/:limit", leaderboardHandler.Top)
			leaderboard.GET("/contest/:id", leaderboardHandler.ForContest)
		}

		api.GET("/contests/current", contestHandler.Current)

		admin := api.Group("/admin", authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/songs/pending", adminHandler.PendingSongs)
			admin.POST("/songs/:id/approve", adminHandler.ApproveSong)
			admin.POST("/songs/:id/reject", adminHandler.RejectSong)
			admin.GET("/contests", adminHandler.ListContests)
			admin.POST("/contests", adminHandler.CreateContest)
			admin.POST("/contests/:id/finalize", adminHandler.FinalizeContest)
			admin.GET("/winners", adminHandler.Winners)
			admin.GET("/users", adminHandler.Users)
			admin.GET("/audit/:resource/:id", adminHandler.AuditTrail)
		}
	}
	return r
}
