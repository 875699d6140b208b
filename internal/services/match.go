package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

var (
	// ErrMatchNotFound is returned when a match id matches nothing.
	ErrMatchNotFound = errors.New("match not found")

	// ErrPlayerNotInMatch is returned when a user is not registered
	// in the match.
	ErrPlayerNotInMatch = errors.New("player not in match")

	// ErrNoPendingStroke is returned when no unevaluated stroke
	// exists for (match, player, hole).
	ErrNoPendingStroke = errors.New("no pending stroke")

	// ErrStrokeAlreadyClaimed is returned when a concurrent request
	// evaluated the stroke first.
	ErrStrokeAlreadyClaimed = errors.New("stroke already claimed")
)

// MatchService owns match, stroke and score bookkeeping. Stroke
// evaluation claims a pending stroke with a conditional update so a
// stroke feeds player statistics at most once even under concurrent
// GPS fixes.
type MatchService struct {
	db      *gorm.DB
	players *PlayerService
	hub     *MatchHub
	logger  *logrus.Logger
}

func NewMatchService(db *gorm.DB, players *PlayerService, hub *MatchHub, logger *logrus.Logger) *MatchService {
	return &MatchService{db: db, players: players, hub: hub, logger: logger}
}

// CreateMatch starts a match on a course.
func (s *MatchService) CreateMatch(ctx context.Context, courseID uuid.UUID, name string, settings datatypes.JSON) (*models.Match, error) {
	match := models.Match{
		CourseID: courseID,
		Name:     name,
		Status:   models.MatchInProgress,
		Settings: settings,
	}
	if err := s.db.WithContext(ctx).Create(&match).Error; err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return &match, nil
}

// GetMatch loads a match with its players.
func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).Preload("Players").First(&match, "id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return &match, nil
}

// AddPlayer registers a user in the match starting at the given hole.
func (s *MatchService) AddPlayer(ctx context.Context, matchID uuid.UUID, userID string, startingHole int) (*models.MatchPlayer, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	if startingHole < 1 {
		startingHole = 1
	}
	player := models.MatchPlayer{
		MatchID:      matchID,
		UserID:       userID,
		StartingHole: startingHole,
		CurrentHole:  startingHole,
	}
	if err := s.db.WithContext(ctx).Create(&player).Error; err != nil {
		return nil, fmt.Errorf("failed to add player to match: %w", err)
	}
	return &player, nil
}

// GetMatchPlayer returns the match membership row for a user.
func (s *MatchService) GetMatchPlayer(ctx context.Context, matchID uuid.UUID, userID string) (*models.MatchPlayer, error) {
	var player models.MatchPlayer
	err := s.db.WithContext(ctx).
		First(&player, "match_id = ? AND user_id = ?", matchID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotInMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match player: %w", err)
	}
	return &player, nil
}

// CountStrokes returns how many strokes the player has registered on
// a hole.
func (s *MatchService) CountStrokes(ctx context.Context, matchID uuid.UUID, userID string, holeID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Stroke{}).
		Where("match_id = ? AND user_id = ? AND hole_id = ?", matchID, userID, holeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count strokes: %w", err)
	}
	return int(count), nil
}

// CreateStroke registers a new stroke with the recommendation echoed
// onto it, pending evaluation by the next GPS fix.
func (s *MatchService) CreateStroke(ctx context.Context, stroke *models.Stroke) error {
	if err := s.db.WithContext(ctx).Create(stroke).Error; err != nil {
		return fmt.Errorf("failed to create stroke: %w", err)
	}
	s.broadcast(stroke.MatchID, MatchEvent{
		Type:    EventStrokeRegistered,
		UserID:  stroke.UserID,
		HoleID:  stroke.HoleID,
		Payload: stroke,
	})
	return nil
}

// PendingStroke returns the single unevaluated stroke for (match,
// player, hole), or ErrNoPendingStroke.
func (s *MatchService) PendingStroke(ctx context.Context, matchID uuid.UUID, userID string, holeID uuid.UUID) (*models.Stroke, error) {
	var stroke models.Stroke
	err := s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ? AND hole_id = ? AND evaluated = ?", matchID, userID, holeID, false).
		Order("stroke_number DESC").
		First(&stroke).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoPendingStroke
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending stroke: %w", err)
	}
	return &stroke, nil
}

// EvaluatePendingStroke claims the pending stroke for a hole and, if
// the observed end position passes plausibility, writes its outcome
// and feeds the player's club statistics. A rejected evaluation
// leaves the stroke pending; a lost claim race returns
// ErrStrokeAlreadyClaimed without touching statistics.
func (s *MatchService) EvaluatePendingStroke(ctx context.Context, matchID uuid.UUID, userID string, hole *models.Hole, end models.Point, stats []engine.ClubStat) (*models.Stroke, error) {
	pending, err := s.PendingStroke(ctx, matchID, userID, hole.ID)
	if err != nil {
		return nil, err
	}

	count, err := s.CountStrokes(ctx, matchID, userID, hole.ID)
	if err != nil {
		return nil, err
	}

	eval, err := engine.EvaluateStroke(pending, end, count+1, stats, hole)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"match_id": matchID,
				"user_id":  userID,
				"stroke":   pending.StrokeNumber,
			}).Warn("Stroke evaluation rejected")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"evaluated":       true,
		"end":             end,
		"actual_distance": eval.ActualDistance,
		"updated_at":      time.Now().UTC(),
	}
	if eval.QualityScore != nil {
		updates["quality_score"] = *eval.QualityScore
	}
	if eval.DistanceError != nil {
		updates["distance_error"] = *eval.DistanceError
	}
	if eval.DirectionError != nil {
		updates["direction_error"] = *eval.DirectionError
	}

	// The claim: only one evaluator may flip evaluated=false.
	res := s.db.WithContext(ctx).Model(&models.Stroke{}).
		Where("id = ? AND evaluated = ?", pending.ID, false).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim stroke: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStrokeAlreadyClaimed
	}

	pending.Evaluated = true
	pending.End = &end
	pending.ActualDistance = &eval.ActualDistance
	pending.QualityScore = eval.QualityScore
	pending.DistanceError = eval.DistanceError
	pending.DirectionError = eval.DirectionError

	// Putts and club-less strokes carry no statistics signal.
	if !eval.WithinGreen && eval.QualityScore != nil && pending.ClubUsedID != nil {
		target := eval.ActualDistance
		if pending.ProposedDistance != nil {
			target = *pending.ProposedDistance
		}
		if err := s.players.RecordShot(ctx, userID, *pending.ClubUsedID, eval.ActualDistance, target); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to update club statistics")
		}
	}

	s.broadcast(matchID, MatchEvent{
		Type:    EventStrokeEvaluated,
		UserID:  userID,
		HoleID:  hole.ID,
		Payload: pending,
	})
	return pending, nil
}

// SetHoleScore records a hole total directly. Any pending stroke on
// the hole is discarded without evaluation, since the total replaces
// per-stroke tracking for that hole.
func (s *MatchService) SetHoleScore(ctx context.Context, matchID uuid.UUID, userID string, holeID uuid.UUID, strokes int) (*models.HoleScore, error) {
	if _, err := s.GetMatchPlayer(ctx, matchID, userID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ? AND hole_id = ? AND evaluated = ?", matchID, userID, holeID, false).
		Delete(&models.Stroke{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to discard pending stroke: %w", err)
	}

	var score models.HoleScore
	err = s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ? AND hole_id = ?", matchID, userID, holeID).
		First(&score).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		score = models.HoleScore{MatchID: matchID, UserID: userID, HoleID: holeID, Strokes: strokes}
		if err := s.db.WithContext(ctx).Create(&score).Error; err != nil {
			return nil, fmt.Errorf("failed to create hole score: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load hole score: %w", err)
	default:
		score.Strokes = strokes
		if err := s.db.WithContext(ctx).Save(&score).Error; err != nil {
			return nil, fmt.Errorf("failed to update hole score: %w", err)
		}
	}

	s.broadcast(matchID, MatchEvent{
		Type:    EventScoreRecorded,
		UserID:  userID,
		HoleID:  holeID,
		Payload: &score,
	})
	return &score, nil
}

// CompleteHole closes out a hole for a player: scores the putts taken
// on the green, records the hole total from the registered strokes,
// and advances the player's current hole.
func (s *MatchService) CompleteHole(ctx context.Context, matchID uuid.UUID, userID string, hole *models.Hole) (*models.HoleScore, error) {
	player, err := s.GetMatchPlayer(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}

	var strokes []models.Stroke
	err = s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ? AND hole_id = ?", matchID, userID, hole.ID).
		Order("stroke_number ASC").
		Find(&strokes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load hole strokes: %w", err)
	}

	// Putts: evaluated strokes played entirely on the green get their
	// quality from how many it took to hole out.
	var putts []uuid.UUID
	for _, st := range strokes {
		if st.Evaluated && st.QualityScore == nil &&
			engine.PointInPolygon(st.Start, hole.GreenPolygon) {
			putts = append(putts, st.ID)
		}
	}
	if len(putts) > 0 {
		quality := engine.GreenStrokeQuality(len(putts))
		err = s.db.WithContext(ctx).Model(&models.Stroke{}).
			Where("id IN ?", putts).
			Update("quality_score", quality).Error
		if err != nil {
			return nil, fmt.Errorf("failed to score green strokes: %w", err)
		}
	}

	score, err := s.SetHoleScore(ctx, matchID, userID, hole.ID, len(strokes))
	if err != nil {
		return nil, err
	}

	if hole.HoleNumber >= player.CurrentHole {
		player.CurrentHole = hole.HoleNumber + 1
		if err := s.db.WithContext(ctx).Save(player).Error; err != nil {
			return nil, fmt.Errorf("failed to advance current hole: %w", err)
		}
	}

	s.broadcast(matchID, MatchEvent{
		Type:    EventHoleCompleted,
		UserID:  userID,
		HoleID:  hole.ID,
		Payload: score,
	})
	return score, nil
}

// HoleScores lists a player's recorded hole totals in the match.
func (s *MatchService) HoleScores(ctx context.Context, matchID uuid.UUID, userID string) ([]models.HoleScore, error) {
	var scores []models.HoleScore
	err := s.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load hole scores: %w", err)
	}
	return scores, nil
}

// LeaderboardEntry is one player's running total.
type LeaderboardEntry struct {
	UserID         string `json:"user_id"`
	TotalStrokes   int    `json:"total_strokes"`
	HolesCompleted int    `json:"holes_completed"`
	CurrentHole    int    `json:"current_hole"`
}

// Leaderboard ranks match players by total strokes over completed
// holes; players tied on strokes rank by holes completed, more first.
func (s *MatchService) Leaderboard(ctx context.Context, matchID uuid.UUID) ([]LeaderboardEntry, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var scores []models.HoleScore
	if err := s.db.WithContext(ctx).Where("match_id = ?", matchID).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(match.Players))
	for _, p := range match.Players {
		entry := LeaderboardEntry{UserID: p.UserID, CurrentHole: p.CurrentHole}
		for _, sc := range scores {
			if sc.UserID == p.UserID {
				entry.TotalStrokes += sc.Strokes
				entry.HolesCompleted++
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalStrokes != entries[j].TotalStrokes {
			return entries[i].TotalStrokes < entries[j].TotalStrokes
		}
		return entries[i].HolesCompleted > entries[j].HolesCompleted
	})
	return entries, nil
}

// MatchState is the live view of a match for clients.
type MatchState struct {
	Match       *models.Match      `json:"match"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// State returns the match with its leaderboard.
func (s *MatchService) State(ctx context.Context, matchID uuid.UUID) (*MatchState, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	board, err := s.Leaderboard(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &MatchState{Match: match, Leaderboard: board}, nil
}

// CompleteMatch marks the match finished.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, models.MatchInProgress).
		Update("status", models.MatchCompleted)
	if res.Error != nil {
		return fmt.Errorf("failed to complete match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// DiscardStaleStrokes deletes unevaluated strokes older than maxAge
// that belong to completed matches; run from the maintenance cron.
func (s *MatchService) DiscardStaleStrokes(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res := s.db.WithContext(ctx).
		Where("evaluated = ? AND created_at < ? AND match_id IN (?)",
			false, cutoff,
			s.db.Model(&models.Match{}).Select("id").Where("status <> ?", models.MatchInProgress),
		).
		Delete(&models.Stroke{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to discard stale strokes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *MatchService) broadcast(matchID uuid.UUID, event MatchEvent) {
	if s.hub != nil {
		s.hub.Broadcast(matchID, event)
	}
}
