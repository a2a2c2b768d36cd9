package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Draw reveals the next number for a session.
func (h *Handler) Draw(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	n, session, err := h.Sessions.Draw(c.Request.Context(), houseID, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"number":        n,
		"drawn_numbers": session.DrawnNumbers,
	})
}

// Preview samples candidate numbers without mutating the session.
func (h *Handler) Preview(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))

	numbers, err := h.Sessions.Preview(c.Request.Context(), houseID, gameID, count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

// StartAutoPlay begins timed drawing.
func (h *Handler) StartAutoPlay(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	if err := h.Sessions.StartAutoPlay(c.Request.Context(), houseID, gameID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auto_play": true})
}

// StopAutoPlay cancels timed drawing; stopping twice is fine.
func (h *Handler) StopAutoPlay(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	h.Sessions.StopAutoPlay(houseID, gameID)
	c.JSON(http.StatusOK, gin.H{"auto_play": false})
}
