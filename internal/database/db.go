package database

import (
	"errors"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

// Connect opens the postgres database and runs migrations.
func Connect(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Running migrations")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Config is the gorm configuration shared by every dialect we open.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Job{}, &models.SavedJob{}, &models.JobEvent{}, &models.Application{})
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// TranslateError covers postgres and sqlite; the message check catches
// drivers that don't translate.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
