package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
		cfg.Database.SSLMode,
	)

	log.Info("Connecting to database...")
	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Warn),
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			// Surfaces unique violations as gorm.ErrDuplicatedKey so the
			// store layer can map them to conflicts.
			TranslateError: true,
		})
		if err == nil {
			log.Success("Connected to database")

			sqlDB, err := DB.DB()
			if err != nil {
				return log.Error("Failed to get underlying *sql.DB instance", err)
			}

			sqlDB.SetMaxOpenConns(100)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(time.Hour)
			sqlDB.SetConnMaxIdleTime(time.Minute * 30)

			if err := runMigrations(); err != nil {
				return log.Error("Failed to run migrations", err)
			}

			log.Success("Migrations completed")

			return nil
		}
		log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second * 5)
	}
	return log.Error("failed to connect to database", fmt.Errorf("failed to connect to database after %d attempts", maxRetries))
}

func runMigrations() error {
	log.Info("Running migrations...")
	tx := DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.AutoMigrate(
		// Base models without foreign keys
		&models.User{},
		&models.Course{},
		&models.SalesTeam{},
		&models.Workshop{},
		&models.Slider{},
		&models.File{},

		// Course content
		&models.Video{},
		&models.Audio{},
		&models.Article{},
		&models.Podcast{},

		// Entitlement rows
		&models.CourseEnrollment{},
		&models.VideoAccess{},
		&models.AudioAccess{},

		// Sales hierarchy rows
		&models.SalesTeamMember{},
		&models.SalesPersonWorkshopAccess{},
	); err != nil {
		tx.Rollback()
		return err
	}

	// AutoMigrate cannot express partial indexes. This one enforces the
	// one-active-membership rule under concurrent assignment; the store's
	// serializable transaction is the first line of defense and this index
	// is the backstop.
	if err := tx.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_membership
		 ON sales_team_members (sales_person_id)
		 WHERE state = 'ACTIVE' AND is_deleted = false`,
	).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
