package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/api/middleware"
	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
	"github.com/kdigolf/caddie/internal/services"
	"github.com/kdigolf/caddie/pkg/utils"
)

// GolfHandler exposes the course-geometry queries and the shot
// recommendation endpoint.
type GolfHandler struct {
	courses   *services.CourseService
	recommend *services.RecommendService
	resolver  *engine.PositionResolver
	logger    *logrus.Logger
}

func NewGolfHandler(courses *services.CourseService, recommend *services.RecommendService, logger *logrus.Logger) *GolfHandler {
	return &GolfHandler{
		courses:   courses,
		recommend: recommend,
		resolver:  engine.NewPositionResolver(logger),
		logger:    logger,
	}
}

// positionRequest is the shared body for geometry queries: a course
// plus a GPS fix, optionally scoped to a hole.
type positionRequest struct {
	CourseID   uuid.UUID    `json:"course_id" binding:"required"`
	HoleNumber int          `json:"hole_number,omitempty"`
	Position   models.Point `json:"position" binding:"required"`
}

func (h *GolfHandler) holeFor(c *gin.Context, req positionRequest) *models.Hole {
	if req.HoleNumber > 0 {
		hole, err := h.courses.GetHoleByNumber(c.Request.Context(), req.CourseID, req.HoleNumber)
		if err != nil {
			h.sendCourseError(c, err)
			return nil
		}
		return hole
	}

	course, err := h.courses.GetCourse(c.Request.Context(), req.CourseID)
	if err != nil {
		h.sendCourseError(c, err)
		return nil
	}
	resolved, err := h.resolver.Resolve(course.Holes, req.Position, engine.ResolveOptions{})
	if err != nil || resolved.Hole == nil {
		utils.SendNotFound(c, "Could not identify a hole at this position")
		return nil
	}
	return resolved.Hole
}

func (h *GolfHandler) sendCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		utils.SendNotFound(c, "Course not found")
	case errors.Is(err, services.ErrHoleNotFound):
		utils.SendNotFound(c, "Hole not found")
	default:
		h.logger.WithError(err).Error("Course lookup failed")
		utils.SendInternalError(c, "Failed to load course data")
	}
}

// IdentifyHole runs the full position resolution cascade for a fix.
func (h *GolfHandler) IdentifyHole(c *gin.Context) {
	var req struct {
		positionRequest
		ExpectedHoleNumber int    `json:"expected_hole_number,omitempty"`
		FirstStroke        bool   `json:"first_stroke,omitempty"`
		TerrainDescription string `json:"terrain_description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	course, err := h.courses.GetCourse(c.Request.Context(), req.CourseID)
	if err != nil {
		h.sendCourseError(c, err)
		return
	}

	resolved, err := h.resolver.Resolve(course.Holes, req.Position, engine.ResolveOptions{
		ExpectedHoleNumber: req.ExpectedHoleNumber,
		FirstStroke:        req.FirstStroke,
		TerrainDescription: req.TerrainDescription,
	})
	if err != nil {
		if errors.Is(err, engine.ErrNoHoles) {
			utils.SendNotFound(c, "Course has no holes")
			return
		}
		h.logger.WithError(err).Error("Position resolution failed")
		utils.SendInternalError(c, "Failed to resolve position")
		return
	}
	utils.SendSuccess(c, resolved)
}

// TerrainType reports the surface under a fix.
func (h *GolfHandler) TerrainType(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	hole := h.holeFor(c, req)
	if hole == nil {
		return
	}
	utils.SendSuccess(c, gin.H{
		"hole_number":  hole.HoleNumber,
		"terrain_type": h.courses.TerrainTypeAt(hole, req.Position),
	})
}

// DistanceToHole returns meters and yards from a fix to the flag.
func (h *GolfHandler) DistanceToHole(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	hole := h.holeFor(c, req)
	if hole == nil {
		return
	}
	if hole.Flag.IsZero() {
		utils.SendNotFound(c, "Hole has no flag position")
		return
	}
	meters := h.courses.DistanceToFlag(hole, req.Position)
	utils.SendSuccess(c, gin.H{
		"hole_number":     hole.HoleNumber,
		"distance_meters": meters,
		"distance_yards":  meters * engine.MetersToYards,
	})
}

// ObstaclesBetween lists hazards crossing the line from a fix to the
// flag.
func (h *GolfHandler) ObstaclesBetween(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	hole := h.holeFor(c, req)
	if hole == nil {
		return
	}
	obstacles := h.courses.ObstaclesBetween(hole, req.Position)
	utils.SendSuccess(c, gin.H{
		"hole_number":    hole.HoleNumber,
		"obstacle_count": len(obstacles),
		"obstacles":      obstacles,
	})
}

// NearestOptimalShot returns the surveyed reference shot closest to a
// fix, if any applies.
func (h *GolfHandler) NearestOptimalShot(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	hole := h.holeFor(c, req)
	if hole == nil {
		return
	}
	shot, distance := h.courses.NearestOptimalShot(hole, req.Position)
	if shot == nil {
		utils.SendSuccess(c, gin.H{"hole_number": hole.HoleNumber, "optimal_shot": nil})
		return
	}
	utils.SendSuccess(c, gin.H{
		"hole_number":      hole.HoleNumber,
		"optimal_shot":     shot,
		"distance_to_start": distance,
	})
}

// RecommendShot runs the full recommendation pipeline for a fix.
func (h *GolfHandler) RecommendShot(c *gin.Context) {
	var req services.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}
	req.UserID = userID

	result, err := h.recommend.Recommend(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound), errors.Is(err, engine.ErrNoHoles):
			utils.SendNotFound(c, "Course not found or has no holes")
		default:
			h.logger.WithError(err).Error("Recommendation failed")
			utils.SendInternalError(c, "Failed to compute recommendation")
		}
		return
	}
	utils.SendSuccess(c, result)
}
