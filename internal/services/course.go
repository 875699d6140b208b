package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

// ErrCourseNotFound is returned when a course id matches nothing.
var ErrCourseNotFound = errors.New("course not found")

// ErrHoleNotFound is returned when a hole lookup matches nothing.
var ErrHoleNotFound = errors.New("hole not found")

// CourseService loads surveyed course data, keeping hot courses in
// redis since hole geometry changes rarely.
type CourseService struct {
	db       *gorm.DB
	cache    *CacheService
	logger   *logrus.Logger
	cacheTTL time.Duration
}

func NewCourseService(db *gorm.DB, cache *CacheService, logger *logrus.Logger, cacheTTL time.Duration) *CourseService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &CourseService{db: db, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// GetCourse loads a course with all hole geometry, cache-first.
func (s *CourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	key := CourseCacheKey(courseID)
	if s.cache != nil {
		var cached models.Course
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Holes", func(db *gorm.DB) *gorm.DB { return db.Order("hole_number ASC") }).
		Preload("Holes.Obstacles").
		Preload("Holes.StrategicPoints", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Holes.OptimalShots").
		First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &course, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to cache course")
		}
	}
	return &course, nil
}

// GetHoles returns a course's holes with geometry, ordered by number.
func (s *CourseService) GetHoles(ctx context.Context, courseID uuid.UUID) ([]models.Hole, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return course.Holes, nil
}

// GetHoleByNumber finds one hole of a course.
func (s *CourseService) GetHoleByNumber(ctx context.Context, courseID uuid.UUID, number int) (*models.Hole, error) {
	holes, err := s.GetHoles(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range holes {
		if holes[i].HoleNumber == number {
			return &holes[i], nil
		}
	}
	return nil, ErrHoleNotFound
}

// GetHoleByID finds one hole of a course by its id.
func (s *CourseService) GetHoleByID(ctx context.Context, courseID, holeID uuid.UUID) (*models.Hole, error) {
	holes, err := s.GetHoles(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range holes {
		if holes[i].ID == holeID {
			return &holes[i], nil
		}
	}
	return nil, ErrHoleNotFound
}

// DistanceToFlag is the great-circle distance from a position to a
// hole's flag, in meters.
func (s *CourseService) DistanceToFlag(hole *models.Hole, pos models.Point) float64 {
	if hole.Flag.IsZero() {
		return 0
	}
	return engine.Haversine(pos, hole.Flag)
}

// TerrainTypeAt classifies the terrain at a position on a hole.
func (s *CourseService) TerrainTypeAt(hole *models.Hole, pos models.Point) models.TerrainType {
	return engine.TerrainAt(hole, pos)
}

// ObstaclesBetween lists the hazards crossing the line from a
// position to the hole's flag.
func (s *CourseService) ObstaclesBetween(hole *models.Hole, pos models.Point) []models.Obstacle {
	if hole.Flag.IsZero() {
		return nil
	}
	return engine.ObstaclesOnSegment(hole, pos, hole.Flag)
}

// NearestOptimalShot returns the hole's optimal shot whose start is
// closest to the position, with the distance to it. Nil when the hole
// has none.
func (s *CourseService) NearestOptimalShot(hole *models.Hole, pos models.Point) (*models.OptimalShot, float64) {
	var best *models.OptimalShot
	bestDist := 0.0
	for i := range hole.OptimalShots {
		os := &hole.OptimalShots[i]
		if os.Start.IsZero() {
			continue
		}
		d := engine.Haversine(pos, os.Start)
		if best == nil || d < bestDist {
			best = os
			bestDist = d
		}
	}
	return best, bestDist
}

// InvalidateCourse drops a course from the cache after survey edits.
func (s *CourseService) InvalidateCourse(ctx context.Context, courseID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, CourseCacheKey(courseID))
}
