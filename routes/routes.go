package routes

import (
	"github.com/addisbet/bingo-hall-backend/controllers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *controllers.Handler) {
	api := r.Group("/api")

	// ----------------------
	// Session routes
	// ----------------------
	api.POST("/sessions", h.CreateOrUpdateSession)
	api.GET("/sessions/:house_id/:game_id", h.GetSession)
	api.DELETE("/sessions/:house_id/:game_id", h.DeleteSession)
	api.POST("/sessions/:house_id/:game_id/winner", h.RecordWinner)

	// ----------------------
	// Draw routes
	// ----------------------
	api.POST("/sessions/:house_id/:game_id/draw", h.Draw)
	api.GET("/sessions/:house_id/:game_id/preview", h.Preview)
	api.POST("/sessions/:house_id/:game_id/autoplay", h.StartAutoPlay)
	api.DELETE("/sessions/:house_id/:game_id/autoplay", h.StopAutoPlay)

	// ----------------------
	// Card routes
	// ----------------------
	api.POST("/sessions/:house_id/:game_id/evaluate", h.EvaluateCard)

	// ----------------------
	// Balance routes
	// ----------------------
	api.GET("/houses/:house_id/wallet", h.GetWallet)
	api.GET("/houses/:house_id/bonus", h.GetBonusPool)
}
