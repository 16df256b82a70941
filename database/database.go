package database

import (
	"fmt"
	"time"

	"learnhub/config"
	"learnhub/logger"
	"learnhub/models"
	"learnhub/models/chat"
	courseModels "learnhub/models/course"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectDb opens the configured database, sets up pooling and runs migrations
func ConnectDb(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := gormLogger.Warn
	if cfg.LogMode == "production" {
		logLevel = gormLogger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Running Migrations...", "driver", cfg.DBDriver)
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Migrations completed successfully.")

	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		// mysql is rejected: verification codes rely on a partial unique index
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.Payment{},
		&courseModels.Course{},
		&courseModels.Lesson{},
		&courseModels.Quiz{},
		&courseModels.Question{},
		&courseModels.Certificate{},
		&courseModels.Enrollment{},
		&chat.ChatRoom{},
		&chat.ChatMessage{},
	)
}
