package models

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
)

// CreateAdminFromEnv makes sure an ADMIN account exists. Credentials come
// from ADMIN_EMAIL / ADMIN_PASSWORD; when unset the seed is skipped.
func CreateAdminFromEnv(db *gorm.DB, cfg *config.Config) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Info("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing User
	err := db.Where("email = ? AND is_deleted = false", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Email:    email,
		Password: string(hashed),
		Role:     UserRoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Success("Seeded admin account %s", email)
	return nil
}
