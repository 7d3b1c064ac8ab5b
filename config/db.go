package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
)

// ConnectDatabase opens the configured database, migrates the schema and
// optionally seeds demo data.
func ConnectDatabase(cfg Config, zlog *zap.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg.DBLogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.Env != "production",
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == "sqlite" {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := repositories.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	zlog.Info("database ready", zap.String("driver", cfg.DBDriver))

	if cfg.SeedDemo {
		SeedDatabase(db, zlog)
	}
	return db, nil
}

func openDialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.Open(cfg.DBPath + "?_foreign_keys=on"), nil
	case "postgres", "postgresql":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if dsn == "" {
			return nil, fmt.Errorf("postgres selected but DB_CONNECTION_STRING is empty")
		}
		return postgres.Open(dsn), nil
	case "mysql", "":
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	// stay dates are stored as UTC midnights
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	)
	return dsn, nil
}

// SeedDatabase inserts a few rooms and a demo customer into an empty database.
func SeedDatabase(db *gorm.DB, zlog *zap.Logger) {
	var roomCount int64
	db.Model(&models.Room{}).Count(&roomCount)
	if roomCount == 0 {
		rooms := []models.Room{
			{Number: 101, Type: models.RoomTypeIndividual, Description: "Single bed, garden view", PricePerNight: decimal.NewFromInt(80), Availability: true},
			{Number: 102, Type: models.RoomTypeDouble, Description: "Queen bed, city view", PricePerNight: decimal.NewFromInt(140), Availability: true},
			{Number: 103, Type: models.RoomTypeDouble, Description: "Two twin beds", PricePerNight: decimal.NewFromInt(130), Availability: true},
			{Number: 104, Type: models.RoomTypeSuite, Description: "Suite with balcony", PricePerNight: decimal.NewFromInt(233), Availability: true},
		}
		if err := db.Create(&rooms).Error; err != nil {
			zlog.Warn("seed rooms failed", zap.Error(err))
		} else {
			zlog.Info("rooms seeded", zap.Int("count", len(rooms)))
		}
	}

	var customerCount int64
	db.Model(&models.Customer{}).Count(&customerCount)
	if customerCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("Demo1234"), bcrypt.DefaultCost)
		if err != nil {
			zlog.Warn("hash demo password failed", zap.Error(err))
			return
		}
		demo := models.Customer{
			Name:         "Demo Guest",
			Email:        "demo@hotel.local",
			Phone:        "5551234567",
			Username:     "demo",
			PasswordHash: string(hash),
		}
		if err := db.Create(&demo).Error; err != nil {
			zlog.Warn("seed customer failed", zap.Error(err))
		} else {
			zlog.Info("demo customer seeded", zap.String("username", demo.Username))
		}
	}
}
