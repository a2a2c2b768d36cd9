package services

import (
	"sync"

	"github.com/addisbet/bingo-hall-backend/utils/logger"

	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber of a session's draw feed (hall display
// board or cashier screen).
type Client struct {
	conn *websocket.Conn
	hub  *hub
	send chan []byte
}

// readPump drains the connection so close frames are processed; the feed is
// one-way.
func (c *Client) readPump() {
	defer c.hub.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[WS] read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[WS] write error: %v", err)
			return
		}
	}
}

// hub fans broadcast frames out to every subscriber of one session. The hub
// mutex serializes every send on a client channel with the close in remove,
// so a disconnect can never race a broadcast onto a closed channel.
type hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*Client]bool)}
}

func (h *hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// remove is the only closer of a client's send channel.
func (h *hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// slow consumer, drop the frame rather than block the draw loop
			logger.Debugf("[WS] dropping frame for slow client")
		}
	}
}

// sendTo delivers one frame to a single subscriber.
func (h *hub) sendTo(c *Client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		logger.Debugf("[WS] dropping frame for slow client")
	}
}
