package config

import (
	"log"

	"github.com/addisbet/bingo-hall-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupDatabase connects to Postgres and runs migrations.
func SetupDatabase(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to DB: %v", err)
	}

	if err := db.AutoMigrate(
		&models.GameSession{},
		&models.WalletBalance{},
		&models.CashierBalance{},
		&models.BalanceAdjustment{},
		&models.BonusPool{},
		&models.BingoCard{},
	); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}

	log.Println("✅ Database migration completed")
	return db
}
