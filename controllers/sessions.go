package controllers

import (
	"net/http"
	"strconv"

	"github.com/addisbet/bingo-hall-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler wires the HTTP surface to the session service.
type Handler struct {
	Sessions *services.SessionService
}

func NewHandler(sessions *services.SessionService) *Handler {
	return &Handler{Sessions: sessions}
}

type createSessionRequest struct {
	HouseID         uint            `json:"house_id" binding:"required"`
	GameID          uint            `json:"game_id"`
	StakeAmount     decimal.Decimal `json:"stake_amount"`
	NumberOfPlayers int             `json:"number_of_players"`
	CutPercentage   int             `json:"cut_percentage"`
	Cartela         []int           `json:"cartela"`
	DynamicBonus    bool            `json:"dynamic_bonus"`
}

// CreateOrUpdateSession opens a new session or re-settles a live one.
func (h *Handler) CreateOrUpdateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.Sessions.Ledger().CreateOrUpdate(c.Request.Context(), services.SessionParams{
		HouseID:         req.HouseID,
		GameID:          req.GameID,
		StakeAmount:     req.StakeAmount,
		NumberOfPlayers: req.NumberOfPlayers,
		CutPercentage:   req.CutPercentage,
		Cartela:         req.Cartela,
		DynamicBonus:    req.DynamicBonus,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession returns one session.
func (h *Handler) GetSession(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	session, err := h.Sessions.Ledger().Session(c.Request.Context(), houseID, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type recordWinnerRequest struct {
	WinnerCardID int `json:"winner_card_id" binding:"required"`
}

// RecordWinner finishes a session with its winning card.
func (h *Handler) RecordWinner(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req recordWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.Sessions.FinishSession(c.Request.Context(), houseID, gameID, req.WinnerCardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session (administrative only).
func (h *Handler) DeleteSession(c *gin.Context) {
	houseID, gameID, ok := pathIDs(c)
	if !ok {
		return
	}
	if err := h.Sessions.DeleteSession(c.Request.Context(), houseID, gameID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetWallet returns the house wallet balance.
func (h *Handler) GetWallet(c *gin.Context) {
	houseID, ok := parseHouseID(c)
	if !ok {
		return
	}
	pkg, err := h.Sessions.Ledger().WalletPackage(c.Request.Context(), houseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"house_id": houseID, "package": pkg.StringFixed(2)})
}

// GetBonusPool returns the active bonus pool balance.
func (h *Handler) GetBonusPool(c *gin.Context) {
	houseID, ok := parseHouseID(c)
	if !ok {
		return
	}
	amount, err := h.Sessions.Ledger().BonusAmount(c.Request.Context(), houseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"house_id": houseID, "bonus_amount": amount.StringFixed(2)})
}

func pathIDs(c *gin.Context) (uint, uint, bool) {
	houseID, err1 := strconv.ParseUint(c.Param("house_id"), 10, 64)
	gameID, err2 := strconv.ParseUint(c.Param("game_id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid house_id or game_id"})
		return 0, 0, false
	}
	return uint(houseID), uint(gameID), true
}

func parseHouseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("house_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid house_id"})
		return 0, false
	}
	return uint(id), true
}
