package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"soundwars/config"
	"soundwars/internal/apperr"
	"soundwars/internal/auth"
	"soundwars/internal/domain"
	"soundwars/internal/models"
	"soundwars/internal/repository"
	"soundwars/internal/validate"

	"go.uber.org/zap"
)

var ErrInvalidCreds = errors.New("invalid email or password")

const resetTokenTTL = time.Hour

type AuthService struct {
	jwt      *config.JWTConfig
	userRepo *repository.UserRepository
	hasher   auth.Hasher
	notif    *NotificationService
	clock    Clock
	log      *zap.Logger
}

func NewAuthService(jwt *config.JWTConfig, userRepo *repository.UserRepository, hasher auth.Hasher, notif *NotificationService, clock Clock, log *zap.Logger) *AuthService {
	return &AuthService{jwt: jwt, userRepo: userRepo, hasher: hasher, notif: notif, clock: clock, log: log}
}

// Session is what a successful register, login or refresh hands back.
type Session struct {
	User            *models.User `json:"user"`
	AccessToken     string       `json:"access_token"`
	RefreshToken    string       `json:"refresh_token"`
	RequiresPayment bool         `json:"requires_payment"`
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     string
}

// Register creates a user account. Choosing the artist role only records the
// intent; the artist profile and payment come afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if err := validate.Username(username); err != nil {
		return nil, err
	}
	if err := validate.Password(in.Password); err != nil {
		return nil, err
	}
	roles := []string{domain.RoleUser}
	switch in.Role {
	case "", domain.RoleUser:
	case domain.RoleArtist:
		roles = append(roles, domain.RoleArtist)
	default:
		return nil, apperr.Validation("role must be user or artist")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("username already taken")
	} else if !isNotFound(err) {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: email, Username: username, PasswordHash: hash, Roles: roles}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, conflictOr(err, apperr.Conflict("email or username already registered"))
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID), zap.Strings("roles", roles))
	s.notif.Welcome(u.Email, u.Username, u.IsArtist())

	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	sess.RequiresPayment = u.IsArtist()
	return sess, nil
}

func (s *AuthService) issue(u *models.User) (*Session, error) {
	access, err := auth.GenerateAccessToken(s.jwt, u.ID, u.Email, u.Roles)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.jwt, u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCreds
	}
	now := s.clock.Now()
	if err := s.userRepo.TouchLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("record login time", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	u.LastLoginAt = &now
	return s.issue(u)
}

// Refresh trades a refresh token for a new pair, picking up role changes.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := auth.ParseRefreshToken(s.jwt, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword mails a one-hour reset link. Unknown addresses succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)
	hash := hashResetToken(token)
	expires := s.clock.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, u.ID, &hash, &expires); err != nil {
		return err
	}
	s.notif.PasswordReset(u.Email, u.Username, token)
	return nil
}

func (s *AuthService) userForResetToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Validation("reset token is required")
	}
	u, err := s.userRepo.GetByResetTokenHash(ctx, hashResetToken(token), s.clock.Now())
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Validation("invalid or expired reset token")
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) VerifyResetToken(ctx context.Context, token string) error {
	_, err := s.userForResetToken(ctx, token)
	return err
}

// ResetPassword sets a new password and burns the token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validate.Password(newPassword); err != nil {
		return err
	}
	u, err := s.userForResetToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	if err := s.userRepo.Update(ctx, u); err != nil {
		return err
	}
	s.log.Info("password reset", zap.Uint("user_id", u.ID))
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}
	if !s.hasher.Verify(u.PasswordHash, currentPassword) {
		return apperr.Validation("current password is incorrect")
	}
	if err := validate.Password(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperr.Validation("new password must differ from the current one")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.userRepo.Update(ctx, u)
}
