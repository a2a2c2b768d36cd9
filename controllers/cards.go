package controllers

import (
	"net/http"

	"github.com/addisbet/bingo-hall-backend/game"

	"github.com/gin-gonic/gin"
)

type evaluateCardRequest struct {
	CardID           int    `json:"card_id" binding:"required"`
	PrimaryPattern   string `json:"primary_pattern" binding:"required"`
	SecondaryPattern string `json:"secondary_pattern"`
	Combinator       string `json:"combinator"`
}

// EvaluateCard checks a card against the session's drawn numbers under the
// selected patterns.
func (h *Handler) EvaluateCard(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req evaluateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comb := game.Combinator(req.Combinator)
	if req.Combinator == "" {
		comb = game.CombinatorAnd
	}

	winner, satisfied, err := h.Sessions.EvaluateCard(
		c.Request.Context(), houseID, gameID,
		req.CardID, req.PrimaryPattern, req.SecondaryPattern, comb,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"is_winner":          winner,
		"satisfied_patterns": satisfied,
	})
}
