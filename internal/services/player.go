package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

// PlayerService owns player profiles and per-club statistics. Stats
// rows are created lazily from the default distance tables the first
// time a player is seen, then refined by evaluated strokes.
type PlayerService struct {
	db       *gorm.DB
	cache    *CacheService
	logger   *logrus.Logger
	cacheTTL time.Duration
}

func NewPlayerService(db *gorm.DB, cache *CacheService, logger *logrus.Logger, cacheTTL time.Duration) *PlayerService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &PlayerService{db: db, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// GetOrCreateProfile returns the profile for a user, creating a
// default intermediate profile on first contact.
func (s *PlayerService) GetOrCreateProfile(ctx context.Context, userID string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load player profile: %w", err)
	}

	profile = models.PlayerProfile{
		UserID:     userID,
		Gender:     models.GenderMale,
		SkillLevel: models.SkillIntermediate,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create player profile: %w", err)
	}
	if s.logger != nil {
		s.logger.WithField("user_id", userID).Info("Created default player profile")
	}
	return &profile, nil
}

// UpdateProfile saves profile attributes and drops the stats cache,
// since defaults depend on gender and skill level.
func (s *PlayerService) UpdateProfile(ctx context.Context, profile *models.PlayerProfile) error {
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update player profile: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, PlayerStatsCacheKey(profile.UserID))
	}
	return nil
}

// GetClubStats returns the player's per-club view used by the engine,
// initializing missing rows from the default distance tables.
func (s *PlayerService) GetClubStats(ctx context.Context, userID string) ([]engine.ClubStat, error) {
	if s.cache != nil {
		var cached []engine.ClubStat
		if err := s.cache.Get(ctx, PlayerStatsCacheKey(userID), &cached); err == nil {
			return cached, nil
		}
	}

	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDefaultStats(ctx, profile); err != nil {
		return nil, err
	}

	var rows []models.PlayerClubStat
	err = s.db.WithContext(ctx).
		Preload("Club").
		Where("player_profile_id = ?", profile.ID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load club stats: %w", err)
	}

	stats := make([]engine.ClubStat, 0, len(rows))
	for _, row := range rows {
		if row.Club == nil {
			continue
		}
		stats = append(stats, engine.ClubStat{
			ClubID:          row.ClubID,
			Name:            row.Club.Name,
			Category:        row.Club.Category,
			Number:          row.Club.Number,
			AverageDistance: row.AverageDistance,
			MinDistance:     row.MinDistance,
			MaxDistance:     row.MaxDistance,
			AverageError:    row.AverageError,
		})
	}
	engine.SortClubStats(stats)

	if s.cache != nil {
		if err := s.cache.Set(ctx, PlayerStatsCacheKey(userID), stats, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to cache player stats")
		}
	}
	return stats, nil
}

// ensureDefaultStats seeds a stats row for every catalog club the
// player's bucket has a default carry for. Existing rows are left
// untouched.
func (s *PlayerService) ensureDefaultStats(ctx context.Context, profile *models.PlayerProfile) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PlayerClubStat{}).
		Where("player_profile_id = ?", profile.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count club stats: %w", err)
	}
	if count > 0 {
		return nil
	}

	var clubs []models.GolfClub
	if err := s.db.WithContext(ctx).Find(&clubs).Error; err != nil {
		return fmt.Errorf("failed to load club catalog: %w", err)
	}

	defaults := engine.DefaultDistances(profile.Gender, profile.SkillLevel)
	rows := make([]models.PlayerClubStat, 0, len(clubs))
	for _, club := range clubs {
		distance, ok := defaults[club.Name]
		if !ok {
			continue
		}
		minD, maxD, avgErr, stdDev := engine.DefaultStatsFor(distance)
		rows = append(rows, models.PlayerClubStat{
			PlayerProfileID:   profile.ID,
			ClubID:            club.ID,
			AverageDistance:   distance,
			MinDistance:       minD,
			MaxDistance:       maxD,
			AverageError:      avgErr,
			ErrorStdDeviation: stdDev,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed default club stats: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": profile.UserID,
			"clubs":   len(rows),
		}).Info("Seeded default club statistics")
	}
	return nil
}

// RecordShot folds an evaluated shot into the player's stats for the
// club used and persists the updated row.
func (s *PlayerService) RecordShot(ctx context.Context, userID string, clubID uint, actualDistance, targetDistance float64) error {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}

	var stat models.PlayerClubStat
	err = s.db.WithContext(ctx).
		Where("player_profile_id = ? AND club_id = ?", profile.ID, clubID).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.PlayerClubStat{PlayerProfileID: profile.ID, ClubID: clubID}
	} else if err != nil {
		return fmt.Errorf("failed to load club stat: %w", err)
	}

	engine.UpdateClubStat(&stat, actualDistance, targetDistance)

	if stat.ID == uuid.Nil {
		// First shot with this club: the upsert covers a concurrent fix
		// creating the same row.
		err = s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "player_profile_id"}, {Name: "club_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"average_distance", "min_distance", "max_distance",
					"average_error", "error_std_deviation", "shots_recorded", "updated_at",
				}),
			}).
			Create(&stat).Error
	} else {
		err = s.db.WithContext(ctx).Save(&stat).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save club stat: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, PlayerStatsCacheKey(userID))
	}
	return nil
}

// GetClubCatalog lists the seeded club catalog.
func (s *PlayerService) GetClubCatalog(ctx context.Context) ([]models.GolfClub, error) {
	var clubs []models.GolfClub
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to load club catalog: %w", err)
	}
	return clubs, nil
}
