package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kdigolf/caddie/internal/models"
)

// MaintenanceService runs the scheduled background jobs: discarding
// stale pending strokes, warming the course cache, and nightly
// cleanup of finished-match leftovers.
type MaintenanceService struct {
	db            *gorm.DB
	cache         *CacheService
	courses       *CourseService
	matches       *MatchService
	logger        *logrus.Logger
	cron          *cron.Cron
	mu            sync.Mutex
	isRunning     bool
	staleInterval time.Duration
	staleMaxAge   time.Duration
}

func NewMaintenanceService(
	db *gorm.DB,
	cache *CacheService,
	courses *CourseService,
	matches *MatchService,
	logger *logrus.Logger,
	staleInterval, staleMaxAge time.Duration,
) *MaintenanceService {
	return &MaintenanceService{
		db:            db,
		cache:         cache,
		courses:       courses,
		matches:       matches,
		logger:        logger,
		cron:          cron.New(),
		staleInterval: staleInterval,
		staleMaxAge:   staleMaxAge,
	}
}

// Start schedules the background jobs.
func (s *MaintenanceService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("maintenance service is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.staleInterval.String())
	if _, err := s.cron.AddFunc(schedule, s.discardStaleStrokes); err != nil {
		return fmt.Errorf("failed to schedule stale stroke discard: %w", err)
	}

	if _, err := s.cron.AddFunc("@every 1h", s.warmCourseCache); err != nil {
		return fmt.Errorf("failed to schedule cache warming: %w", err)
	}

	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupFinishedMatches); err != nil {
		return fmt.Errorf("failed to schedule nightly cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.warmCourseCache()

	s.logger.Info("Maintenance service started")
	return nil
}

// Stop halts the scheduled jobs, waiting for running ones to finish.
func (s *MaintenanceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Maintenance service stopped")
}

// discardStaleStrokes drops pending strokes whose match finished long
// ago; they will never get an evaluating fix.
func (s *MaintenanceService) discardStaleStrokes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dropped, err := s.matches.DiscardStaleStrokes(ctx, s.staleMaxAge)
	if err != nil {
		s.logger.Errorf("Failed to discard stale strokes: %v", err)
		return
	}
	if dropped > 0 {
		s.logger.Infof("Discarded %d stale pending strokes", dropped)
	}
}

// warmCourseCache reloads every course with active matches so the
// first fix of the morning does not pay the database round trip.
func (s *MaintenanceService) warmCourseCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var matches []models.Match
	err := s.db.WithContext(ctx).
		Where("status = ?", models.MatchInProgress).
		Find(&matches).Error
	if err != nil {
		s.logger.Errorf("Failed to list active matches for cache warming: %v", err)
		return
	}

	seen := make(map[string]bool, len(matches))
	warmed := 0
	for _, m := range matches {
		key := m.CourseID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := s.courses.GetCourse(ctx, m.CourseID); err != nil {
			s.logger.WithError(err).Warnf("Failed to warm course %s", m.CourseID)
			continue
		}
		warmed++
	}
	if warmed > 0 {
		s.logger.Infof("Warmed cache for %d active courses", warmed)
	}
}

// cleanupFinishedMatches removes stroke detail for matches completed
// more than 30 days ago; hole scores stay for history.
func (s *MaintenanceService) cleanupFinishedMatches() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -30)
	result := s.db.WithContext(ctx).
		Where("match_id IN (?)",
			s.db.Model(&models.Match{}).Select("id").
				Where("status = ? AND updated_at < ?", models.MatchCompleted, cutoff),
		).
		Delete(&models.Stroke{})
	if result.Error != nil {
		s.logger.Errorf("Failed to clean up old strokes: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		s.logger.Infof("Cleaned up %d strokes from old matches", result.RowsAffected)
	}
}

// Status reports the scheduler state for the health endpoint.
func (s *MaintenanceService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running": s.isRunning,
		"cron_jobs":  len(entries),
		"next_runs":  nextRuns,
	}
}
