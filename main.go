package main

import (
	"net/http"
	"time"

	"github.com/addisbet/bingo-hall-backend/config"
	"github.com/addisbet/bingo-hall-backend/controllers"
	"github.com/addisbet/bingo-hall-backend/game"
	"github.com/addisbet/bingo-hall-backend/routes"
	"github.com/addisbet/bingo-hall-backend/services"
	"github.com/addisbet/bingo-hall-backend/utils/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	// Connect to database
	db := config.SetupDatabase(cfg)

	// Card registry
	cards, err := services.LoadCards(cfg.CardsFile)
	if err != nil {
		logger.Log.Fatalf("[FATAL] loading cards: %v", err)
	}

	// Settlement engine + session service
	ledger := services.NewLedger(services.NewGormStore(db), cfg.LedgerTxTimeout)
	sessions := services.NewSessionService(ledger, cards, game.DefaultCatalog(), cfg.DrawInterval)

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// REST routes
	routes.SetupRoutes(r, controllers.NewHandler(sessions))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket draw feed
	r.GET("/ws/sessions/:house_id/:game_id", sessions.HandleWebSocket)

	logger.Infof("🚀 Bingo hall backend starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
