package database

import (
	"errors"

	"soundwars/config"
	"soundwars/internal/domain"
	"soundwars/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedAdmin creates the admin account from config, or grants the admin role
// to an existing account with that email. Skipped when no credentials are set.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig, log *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		log.Info("admin seed skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}
	var u models.User
	err := db.Where("email = ?", cfg.Email).First(&u).Error
	if err == nil {
		if u.IsAdmin() {
			return nil
		}
		u.AddRole(domain.RoleAdmin)
		return db.Model(&u).Update("roles", u.Roles).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u = models.User{
		Email:        cfg.Email,
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Roles:        datatypes.JSONSlice[string]{domain.RoleUser, domain.RoleAdmin},
	}
	if err := db.Create(&u).Error; err != nil {
		return err
	}
	log.Info("admin account created", zap.String("email", cfg.Email))
	return nil
}
