package config

import (
	"fmt"

	"github.com/faizan/spotify-tracks/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN renders the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		port := d.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, port)
	case DriverSQLite:
		return d.Name
	default:
		port := d.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, port, d.Name)
	}
}

func (d DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch d.Driver {
	case DriverMySQL, "":
		return mysql.Open(d.DSN()), nil
	case DriverPostgres:
		return postgres.Open(d.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(d.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
}

// OpenDB connects to the configured database. A nil log silences gorm.
func OpenDB(d DatabaseConfig, log logger.Interface) (*gorm.DB, error) {
	dialector, err := d.dialector()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if d.Driver == DriverSQLite {
		// every connection to ":memory:" is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("error enabling foreign keys: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or updates the users, tracks and artists tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Track{}, &models.Artist{}); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}
