package services

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/addisbet/bingo-hall-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket subscribes a display board to a session's draw feed.
func (s *SessionService) HandleWebSocket(c *gin.Context) {
	houseID, err1 := strconv.ParseUint(c.Param("house_id"), 10, 64)
	gameID, err2 := strconv.ParseUint(c.Param("game_id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid house_id or game_id"})
		return
	}

	// make sure the session exists before upgrading
	session, err := s.ledger.Session(c.Request.Context(), uint(houseID), uint(gameID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	h := s.hubFor(uint(houseID), uint(gameID))
	client := &Client{
		conn: conn,
		hub:  h,
		send: make(chan []byte, 32),
	}
	h.add(client)
	logger.Infof("[WS] new subscriber for house %d game %d", houseID, gameID)

	// initial snapshot so late joiners see the drawn numbers; only the new
	// subscriber needs it
	snapshot, err := json.Marshal(map[string]any{
		"type":          "snapshot",
		"drawn_numbers": session.Drawn(),
		"finished":      session.Finished,
	})
	if err != nil {
		logger.Errorf("[WS] marshal snapshot: %v", err)
		return
	}
	h.sendTo(client, snapshot)
}
