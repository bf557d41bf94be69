package config

import (
	"errors"
	"fmt"
	"strings"

	"logitrack-api/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the sqlite database and migrates every model
func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	// sqlite allows one writer; a single connection queues writes instead of failing them
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.StatusUpdate{},
		&models.Inquiry{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// SeedAdmin creates the configured admin account unless it already exists
func SeedAdmin(db *gorm.DB, admin AdminConfig, log *zap.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	email := strings.ToLower(admin.Email)

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Debug("admin already seeded", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		Name:         admin.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Info("seeded admin user", zap.String("email", email))
	return nil
}
