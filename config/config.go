package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Cloudinary CloudinaryConfig
	Payment    PaymentConfig
	Mail       MailConfig
	Contest    ContestConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	FrontendURL  string
	MaxUploadMB  int64
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres | sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty Addr keeps rate limiting in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type LogConfig struct {
	Level string
	Dev   bool
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type PaymentConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookHash   string
	Currency      string
	FeeMajor      int64 // registration fee in major units (NGN)
	VerifyTimeout time.Duration
	UseStub       bool
}

// FeeMinor is the registration fee in minor units (kobo).
func (p PaymentConfig) FeeMinor() int64 {
	return p.FeeMajor * 100
}

type MailConfig struct {
	FromEmail    string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

type ContestConfig struct {
	WinnerCooldown time.Duration
	DefaultPrize   int64
}

type AdminConfig struct {
	Email    string
	Username string
	Password string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
			MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 15)),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DATABASE_URL", "soundwars:soundwars@tcp(localhost:3306)/soundwars?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET_KEY", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET_KEY", "change-me-refresh"),
			AccessExpiry:  getEnvDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
			RefreshExpiry: getEnvDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),
			Issuer:        "soundwars",
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Dev:   getEnvBool("LOG_DEV", false),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "SoundWars"),
		},
		Payment: PaymentConfig{
			BaseURL:       getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),
			SecretKey:     getEnv("FLUTTERWAVE_SECRET_KEY", ""),
			WebhookHash:   getEnv("FLUTTERWAVE_WEBHOOK_HASH", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "NGN"),
			FeeMajor:      int64(getEnvInt("ARTIST_REGISTRATION_FEE", 25000)),
			VerifyTimeout: getEnvDuration("PAYMENT_VERIFY_TIMEOUT", 30*time.Second),
			UseStub:       getEnvBool("PAYMENT_STUB", false),
		},
		Mail: MailConfig{
			FromEmail:    getEnv("MAIL_FROM", "SoundWars <noreply@soundwars.app>"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPass:     getEnv("SMTP_PASS", ""),
		},
		Contest: ContestConfig{
			WinnerCooldown: getEnvDuration("WINNER_COOLDOWN", 365*24*time.Hour),
			DefaultPrize:   int64(getEnvInt("CONTEST_DEFAULT_PRIZE", 0)),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
