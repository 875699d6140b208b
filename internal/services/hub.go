package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Match event types pushed to connected clients.
const (
	EventStrokeRegistered = "stroke_registered"
	EventStrokeEvaluated  = "stroke_evaluated"
	EventScoreRecorded    = "score_recorded"
	EventHoleCompleted    = "hole_completed"
	EventRecommendation   = "recommendation"
)

// MatchEvent is the envelope broadcast to everyone watching a match.
type MatchEvent struct {
	Type    string      `json:"type"`
	UserID  string      `json:"user_id,omitempty"`
	HoleID  uuid.UUID   `json:"hole_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// matchClient is one websocket subscriber to a match.
type matchClient struct {
	hub     *MatchHub
	matchID uuid.UUID
	conn    *websocket.Conn
	send    chan MatchEvent
}

// MatchHub fans match events out to websocket subscribers, one client
// set per match. Slow clients are dropped rather than blocking the
// broadcast path.
type MatchHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*matchClient]struct{}
	logger  *logrus.Logger
}

func NewMatchHub(logger *logrus.Logger) *MatchHub {
	return &MatchHub{
		clients: make(map[uuid.UUID]map[*matchClient]struct{}),
		logger:  logger,
	}
}

// Subscribe attaches an upgraded connection to a match and starts its
// pumps. The connection is owned by the hub from here on.
func (h *MatchHub) Subscribe(matchID uuid.UUID, conn *websocket.Conn) {
	client := &matchClient{
		hub:     h,
		matchID: matchID,
		conn:    conn,
		send:    make(chan MatchEvent, sendBufferSize),
	}

	h.mu.Lock()
	if h.clients[matchID] == nil {
		h.clients[matchID] = make(map[*matchClient]struct{})
	}
	h.clients[matchID][client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

// Broadcast queues an event for every subscriber of the match.
func (h *MatchHub) Broadcast(matchID uuid.UUID, event MatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[matchID] {
		select {
		case client.send <- event:
		default:
			// Buffer full: the client is too slow, let its write
			// pump die on the closed channel.
			go h.remove(client)
		}
	}
}

// Subscribers reports how many clients watch a match.
func (h *MatchHub) Subscribers(matchID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}

func (h *MatchHub) remove(client *matchClient) {
	h.mu.Lock()
	set, ok := h.clients[client.matchID]
	if ok {
		if _, present := set[client]; present {
			delete(set, client)
			close(client.send)
			if len(set) == 0 {
				delete(h.clients, client.matchID)
			}
		}
	}
	h.mu.Unlock()
	client.conn.Close()
}

// readPump drains and discards client frames, keeping the connection
// alive until the peer goes away.
func (c *matchClient) readPump() {
	defer c.hub.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *matchClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.remove(c)
	}()
	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				if c.hub.logger != nil {
					c.hub.logger.WithError(err).Debug("Websocket write failed")
				}
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
