package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/utils"
)

// WSHandler upgrades clients onto the match event hub.
type WSHandler struct {
	hub      *services.MatchHub
	matches  *services.MatchService
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *services.MatchHub, matches *services.MatchService, logger *logrus.Logger, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WSHandler{
		hub:     hub,
		matches: matches,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Subscribe upgrades the connection and attaches it to a match.
func (h *WSHandler) Subscribe(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid match id", err.Error())
		return
	}
	if _, err := h.matches.GetMatch(c.Request.Context(), matchID); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			utils.SendNotFound(c, "Match not found")
			return
		}
		h.logger.WithError(err).Error("Match lookup failed")
		utils.SendInternalError(c, "Failed to load match")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.hub.Subscribe(matchID, conn)
}
