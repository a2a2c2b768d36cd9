package main

import (
	"log"

	"github.com/addisbet/bingo-hall-backend/config"
)

func main() {
	cfg := config.Load()
	config.SetupDatabase(cfg) // connects + migrates
	log.Println("✅ Database migration completed successfully")
}
