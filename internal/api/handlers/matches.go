package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/models"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/utils"
)

// MatchHandler exposes the match lifecycle endpoints.
type MatchHandler struct {
	matches *services.MatchService
	courses *services.CourseService
	logger  *logrus.Logger
}

func NewMatchHandler(matches *services.MatchService, courses *services.CourseService, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, courses: courses, logger: logger}
}

func (h *MatchHandler) matchID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid match id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *MatchHandler) sendMatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMatchNotFound):
		utils.SendNotFound(c, "Match not found")
	case errors.Is(err, services.ErrPlayerNotInMatch):
		utils.SendForbidden(c, "Player is not part of this match")
	case errors.Is(err, services.ErrHoleNotFound):
		utils.SendNotFound(c, "Hole not found")
	default:
		h.logger.WithError(err).Error("Match operation failed")
		utils.SendInternalError(c, "Match operation failed")
	}
}

// CreateMatch starts a new match on a course.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req struct {
		CourseID uuid.UUID      `json:"course_id" binding:"required"`
		Name     string         `json:"name" binding:"required"`
		Settings datatypes.JSON `json:"settings,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if _, err := h.courses.GetCourse(c.Request.Context(), req.CourseID); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			utils.SendNotFound(c, "Course not found")
			return
		}
		h.logger.WithError(err).Error("Course lookup failed")
		utils.SendInternalError(c, "Failed to load course")
		return
	}

	match, err := h.matches.CreateMatch(c.Request.Context(), req.CourseID, req.Name, req.Settings)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, match)
}

// GetMatch returns a match with its players.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	match, err := h.matches.GetMatch(c.Request.Context(), id)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, match)
}

// AddPlayer registers the authenticated user in a match.
func (h *MatchHandler) AddPlayer(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	var req struct {
		StartingHole int `json:"starting_hole"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	player, err := h.matches.AddPlayer(c.Request.Context(), id, userID, req.StartingHole)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, player)
}

// Leaderboard returns the match ranking.
func (h *MatchHandler) Leaderboard(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	board, err := h.matches.Leaderboard(c.Request.Context(), id)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, board)
}

// State returns the live match view.
func (h *MatchHandler) State(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	state, err := h.matches.State(c.Request.Context(), id)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, state)
}

// CreateStroke registers a stroke manually, outside the
// recommendation flow.
func (h *MatchHandler) CreateStroke(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	var req struct {
		HoleID     uuid.UUID    `json:"hole_id" binding:"required"`
		Start      models.Point `json:"start" binding:"required"`
		ClubUsedID *uint        `json:"club_used_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if _, err := h.matches.GetMatchPlayer(c.Request.Context(), id, userID); err != nil {
		h.sendMatchError(c, err)
		return
	}

	count, err := h.matches.CountStrokes(c.Request.Context(), id, userID, req.HoleID)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}

	stroke := &models.Stroke{
		MatchID:      id,
		UserID:       userID,
		HoleID:       req.HoleID,
		StrokeNumber: count + 1,
		Start:        req.Start,
		ClubUsedID:   req.ClubUsedID,
	}
	if err := h.matches.CreateStroke(c.Request.Context(), stroke); err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, stroke)
}

// SetHoleScore records a hole total directly, discarding any pending
// stroke on the hole.
func (h *MatchHandler) SetHoleScore(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	hole, ok := h.holeFromParams(c, id)
	if !ok {
		return
	}

	var req struct {
		Strokes int `json:"strokes" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	score, err := h.matches.SetHoleScore(c.Request.Context(), id, userID, hole.ID, req.Strokes)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, score)
}

// CompleteHole closes out the hole for the authenticated player.
func (h *MatchHandler) CompleteHole(c *gin.Context) {
	id, ok := h.matchID(c)
	if !ok {
		return
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	hole, ok := h.holeFromParams(c, id)
	if !ok {
		return
	}

	score, err := h.matches.CompleteHole(c.Request.Context(), id, userID, hole)
	if err != nil {
		h.sendMatchError(c, err)
		return
	}
	utils.SendSuccess(c, score)
}

// holeFromParams resolves the :number route param against the match's
// course.
func (h *MatchHandler) holeFromParams(c *gin.Context, matchID uuid.UUID) (*models.Hole, bool) {
	match, err := h.matches.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		h.sendMatchError(c, err)
		return nil, false
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		utils.SendValidationError(c, "Invalid hole number", c.Param("number"))
		return nil, false
	}

	hole, err := h.courses.GetHoleByNumber(c.Request.Context(), match.CourseID, number)
	if err != nil {
		h.sendMatchError(c, err)
		return nil, false
	}
	return hole, true
}
