package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/models"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/utils"
)

// PlayerHandler exposes profile and club-statistics endpoints.
type PlayerHandler struct {
	players *services.PlayerService
	logger  *logrus.Logger
}

func NewPlayerHandler(players *services.PlayerService, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, logger: logger}
}

// GetProfile returns (creating if needed) the authenticated user's
// profile.
func (h *PlayerHandler) GetProfile(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}
	profile, err := h.players.GetOrCreateProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load player profile")
		utils.SendInternalError(c, "Failed to load profile")
		return
	}
	utils.SendSuccess(c, profile)
}

// UpdateProfile changes handicap, gender or skill level; the next
// stats read reseeds defaults for clubs with no recorded shots.
func (h *PlayerHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	var req struct {
		Handicap   *float64           `json:"handicap,omitempty"`
		Gender     models.Gender      `json:"gender,omitempty"`
		SkillLevel models.SkillLevel  `json:"skill_level,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	profile, err := h.players.GetOrCreateProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load player profile")
		utils.SendInternalError(c, "Failed to load profile")
		return
	}

	if req.Handicap != nil {
		profile.Handicap = *req.Handicap
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.SkillLevel != "" {
		profile.SkillLevel = req.SkillLevel
	}

	if err := h.players.UpdateProfile(c.Request.Context(), profile); err != nil {
		h.logger.WithError(err).Error("Failed to update player profile")
		utils.SendInternalError(c, "Failed to update profile")
		return
	}
	utils.SendSuccess(c, profile)
}

// GetStats returns the player's per-club statistics, seeding defaults
// on first access.
func (h *PlayerHandler) GetStats(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}
	stats, err := h.players.GetClubStats(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load club statistics")
		utils.SendInternalError(c, "Failed to load club statistics")
		return
	}
	utils.SendSuccess(c, stats)
}

// RecordShot feeds one measured shot into the player's statistics.
func (h *PlayerHandler) RecordShot(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	var req struct {
		ClubID         uint    `json:"club_id" binding:"required"`
		ActualDistance float64 `json:"actual_distance" binding:"required,gt=0"`
		TargetDistance float64 `json:"target_distance" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.players.RecordShot(c.Request.Context(), userID, req.ClubID, req.ActualDistance, req.TargetDistance); err != nil {
		h.logger.WithError(err).Error("Failed to record shot")
		utils.SendInternalError(c, "Failed to record shot")
		return
	}

	stats, err := h.players.GetClubStats(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to reload club statistics")
		utils.SendInternalError(c, "Failed to reload club statistics")
		return
	}
	utils.SendSuccess(c, stats)
}

// GetClubCatalog lists the club catalog.
func (h *PlayerHandler) GetClubCatalog(c *gin.Context) {
	clubs, err := h.players.GetClubCatalog(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load club catalog")
		utils.SendInternalError(c, "Failed to load club catalog")
		return
	}
	utils.SendSuccess(c, clubs)
}
