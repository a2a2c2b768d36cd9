package controllers

import (
	"errors"
	"net/http"

	"github.com/addisbet/bingo-hall-backend/game"
	"github.com/addisbet/bingo-hall-backend/services"

	"github.com/gin-gonic/gin"
)

// respondError maps the ledger error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var insufficient *services.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "insufficient balance",
			"required":  insufficient.Required.StringFixed(2),
			"available": insufficient.Available.StringFixed(2),
			"shortfall": insufficient.Shortfall().StringFixed(2),
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidParameters):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrCardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrSessionFinished),
		errors.Is(err, services.ErrConcurrentModification),
		errors.Is(err, game.ErrExhaustedPool):
		status = http.StatusConflict
	case errors.Is(err, services.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
