package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/utils"
)

// VoiceHandler exposes the natural-language command endpoint.
type VoiceHandler struct {
	voice  *services.VoiceService
	logger *logrus.Logger
}

func NewVoiceHandler(voice *services.VoiceService, logger *logrus.Logger) *VoiceHandler {
	return &VoiceHandler{voice: voice, logger: logger}
}

// Command processes one voice query mid-round.
func (h *VoiceHandler) Command(c *gin.Context) {
	var cmd services.VoiceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}
	cmd.UserID = userID

	resp, err := h.voice.ProcessCommand(c.Request.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMatchNotFound):
			utils.SendNotFound(c, "Match not found")
		case errors.Is(err, services.ErrPlayerNotInMatch):
			utils.SendForbidden(c, "Player is not part of this match")
		case errors.Is(err, services.ErrMatchNotInProgress),
			errors.Is(err, services.ErrWrongCourse):
			utils.SendValidationError(c, err.Error(), "")
		default:
			h.logger.WithError(err).Error("Voice command failed")
			utils.SendInternalError(c, "Failed to process voice command")
		}
		return
	}
	utils.SendSuccess(c, resp)
}
