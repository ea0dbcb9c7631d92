package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"soundwars/config"
	"soundwars/internal/database"
	"soundwars/internal/middleware"
	"soundwars/internal/router"
	"soundwars/internal/service"
	"soundwars/pkg/cloudinary"
	"soundwars/pkg/logger"
	"soundwars/pkg/mailer"
	"soundwars/pkg/payment"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errNoGatewayKey = errors.New("FLUTTERWAVE_SECRET_KEY is required unless PAYMENT_STUB=true")

// newOracle returns the stub only when it is asked for explicitly.
func newOracle(cfg *config.PaymentConfig) (payment.Oracle, error) {
	switch {
	case cfg.UseStub:
		return &payment.StubOracle{AmountMinor: cfg.FeeMinor(), Currency: cfg.Currency}, nil
	case cfg.SecretKey == "":
		return nil, errNoGatewayKey
	default:
		return payment.NewFlutterwaveOracle(cfg.BaseURL, cfg.SecretKey, cfg.VerifyTimeout), nil
	}
}

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}
	if err := database.SeedAdmin(db, &cfg.Admin, zl); err != nil {
		zl.Error("seed admin", zap.Error(err))
	}

	oracle, err := newOracle(&cfg.Payment)
	if err != nil {
		zl.Fatal("payment oracle", zap.Error(err))
	}
	if cfg.Payment.UseStub {
		zl.Warn("payment oracle: stub in use, every transaction verifies as paid")
	}

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		if !errors.Is(err, cloudinary.ErrNotConfigured) {
			zl.Fatal("cloudinary", zap.Error(err))
		}
		zl.Info("cloudinary not configured, uploads disabled")
		cloud = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, rate limiter fails open until it recovers", zap.Error(err))
		}
		limiter = middleware.NewRedisRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		mem := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go mem.Cleanup(ctx, time.Minute)
		limiter = mem
	}

	notif := service.NewNotificationService(mailer.New(mailer.Config{
		FromEmail:    cfg.Mail.FromEmail,
		ResendAPIKey: cfg.Mail.ResendAPIKey,
		SMTPHost:     cfg.Mail.SMTPHost,
		SMTPPort:     cfg.Mail.SMTPPort,
		SMTPUser:     cfg.Mail.SMTPUser,
		SMTPPass:     cfg.Mail.SMTPPass,
	}, zl), zl, cfg.Server.FrontendURL)

	engine := router.Setup(router.Deps{
		Config:        cfg,
		DB:            db,
		Log:           zl,
		Oracle:        oracle,
		Cloud:         cloud,
		Limiter:       limiter,
		Notifications: notif,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		zl.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	notif.Wait()
	zl.Info("server stopped")
}
