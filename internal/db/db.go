package db

import (
	"errors"
	"fmt"
	"threadline/internal/models"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the postgres pool, runs migrations and seeds the admin account.
func Init(dsn, adminPassword string, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(postgres.Open(dsn), log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Database connection established")

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("Database migration completed")

	if err := SeedAdmin(conn, adminPassword, log); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	return conn, nil
}

// Open wraps gorm.Open with the settings every environment shares.
// Duplicate-key errors are translated to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zapWriter{log.Sugar()}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.Message{},
		&models.Reply{},
		&models.Rating{},
	)
}

// SeedAdmin creates the "admin" account when a password is configured and the
// account does not exist yet.
func SeedAdmin(conn *gorm.DB, password string, log *zap.Logger) error {
	if password == "" {
		return nil
	}

	var existing models.User
	err := conn.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		log.Debug("Admin account already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:    "admin",
		Password:    string(hash),
		DisplayName: "Administrator",
		IsAdmin:     true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("Admin account created", zap.Uint("user_id", admin.ID))
	return nil
}

type zapWriter struct {
	s *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.s.Warnf(format, args...)
}
