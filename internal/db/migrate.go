package db

import (
	"bakeshop/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Migrate performs automatic migration for the database schema and seeds the
// reserved year-round season.
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Wallet{},
		&domain.Season{},
		&domain.Product{},
		&domain.Sale{},
		&domain.SaleLine{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Fatal error if migration fails
	}

	// Every always-available product points at this season.
	yearRound := domain.Season{ID: domain.YearRoundSeasonID, Name: "Year-round", Active: false}
	if err := db.FirstOrCreate(&yearRound, domain.Season{ID: domain.YearRoundSeasonID}).Error; err != nil {
		logrus.Fatalf("seeding year-round season failed: %v", err)
	}

	logrus.Info("Migration completed.") // Log successful migration
}
