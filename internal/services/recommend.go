package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/engine"
	"github.com/kdigolf/caddie/internal/models"
)

// RecommendRequest is one GPS fix from a player asking where to hit.
type RecommendRequest struct {
	CourseID           uuid.UUID    `json:"course_id" binding:"required"`
	MatchID            *uuid.UUID   `json:"match_id,omitempty"`
	UserID             string       `json:"-"`
	Position           models.Point `json:"position" binding:"required"`
	ExpectedHoleNumber int          `json:"expected_hole_number,omitempty"`
	TerrainDescription string       `json:"terrain_description,omitempty"`
	ClubUsedID         *uint        `json:"club_used_id,omitempty"`
}

// RecommendResult is the full answer to a fix: where the engine thinks
// the player stands, what to play, and the stroke the plan was echoed
// onto.
type RecommendResult struct {
	Position       *engine.ResolvedPosition `json:"position"`
	Recommendation *engine.Recommendation   `json:"recommendation"`
	Stroke         *models.Stroke           `json:"stroke,omitempty"`
	Evaluated      *models.Stroke           `json:"evaluated_stroke,omitempty"`
	Weather        *WeatherAdvisory         `json:"weather,omitempty"`
}

// RecommendService runs the fix pipeline: resolve the position,
// settle the previous stroke, decide the next trajectory, and echo the
// proposal onto a new pending stroke when a match is in play.
type RecommendService struct {
	courses  *CourseService
	players  *PlayerService
	matches  *MatchService
	weather  *WeatherService
	hub      *MatchHub
	resolver *engine.PositionResolver
	decider  *engine.DecisionEngine
	logger   *logrus.Logger
}

func NewRecommendService(courses *CourseService, players *PlayerService, matches *MatchService, weather *WeatherService, hub *MatchHub, logger *logrus.Logger) *RecommendService {
	return &RecommendService{
		courses:  courses,
		players:  players,
		matches:  matches,
		weather:  weather,
		hub:      hub,
		resolver: engine.NewPositionResolver(logger),
		decider:  engine.NewDecisionEngine(logger),
		logger:   logger,
	}
}

// Recommend handles one fix end to end.
func (s *RecommendService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	course, err := s.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	stats, err := s.players.GetClubStats(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	firstStroke, err := s.isFirstStroke(ctx, req)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(course.Holes, req.Position, engine.ResolveOptions{
		ExpectedHoleNumber: req.ExpectedHoleNumber,
		FirstStroke:        firstStroke,
		TerrainDescription: req.TerrainDescription,
	})
	if err != nil {
		return nil, err
	}

	result := &RecommendResult{Position: resolved}
	if !resolved.Valid || resolved.Hole == nil {
		return result, nil
	}

	position := req.Position
	if resolved.CorrectedPosition != nil {
		position = *resolved.CorrectedPosition
	}

	// Settle the previous stroke before planning the next one: the
	// arrival fix is the previous stroke's end position.
	if req.MatchID != nil {
		evaluated, err := s.matches.EvaluatePendingStroke(ctx, *req.MatchID, req.UserID, resolved.Hole, position, stats)
		switch {
		case err == nil:
			result.Evaluated = evaluated
			// Outcome landed in statistics, reload before deciding.
			if stats, err = s.players.GetClubStats(ctx, req.UserID); err != nil {
				return nil, err
			}
		case errors.Is(err, ErrNoPendingStroke),
			errors.Is(err, ErrStrokeAlreadyClaimed),
			errors.Is(err, engine.ErrStrokeRejected):
			// Nothing to settle, or another fix got there first, or
			// the pairing was implausible. Recommend anyway.
		default:
			return nil, err
		}
	}

	result.Recommendation = s.decider.Decide(resolved.Hole, position, stats)

	if s.weather != nil {
		result.Weather = s.weather.Advisory(ctx, position)
	}

	if req.MatchID != nil {
		stroke, err := s.registerStroke(ctx, req, resolved.Hole, position, result.Recommendation)
		if err != nil {
			return nil, err
		}
		result.Stroke = stroke
		if s.hub != nil {
			s.hub.Broadcast(*req.MatchID, MatchEvent{
				Type:    EventRecommendation,
				UserID:  req.UserID,
				HoleID:  resolved.Hole.ID,
				Payload: result.Recommendation,
			})
		}
	}

	return result, nil
}

// isFirstStroke reports whether this fix opens the hole: outside a
// match every fix counts as a fresh start, inside a match it is the
// absence of registered strokes on the expected hole.
func (s *RecommendService) isFirstStroke(ctx context.Context, req RecommendRequest) (bool, error) {
	if req.MatchID == nil {
		return true, nil
	}
	if req.ExpectedHoleNumber == 0 {
		return false, nil
	}
	hole, err := s.courses.GetHoleByNumber(ctx, req.CourseID, req.ExpectedHoleNumber)
	if err != nil {
		if errors.Is(err, ErrHoleNotFound) {
			return false, nil
		}
		return false, err
	}
	count, err := s.matches.CountStrokes(ctx, *req.MatchID, req.UserID, hole.ID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// registerStroke persists the next pending stroke with the chosen
// trajectory echoed onto it so the following fix can evaluate it.
func (s *RecommendService) registerStroke(ctx context.Context, req RecommendRequest, hole *models.Hole, position models.Point, rec *engine.Recommendation) (*models.Stroke, error) {
	count, err := s.matches.CountStrokes(ctx, *req.MatchID, req.UserID, hole.ID)
	if err != nil {
		return nil, err
	}

	stroke := &models.Stroke{
		MatchID:      *req.MatchID,
		UserID:       req.UserID,
		HoleID:       hole.ID,
		StrokeNumber: count + 1,
		Start:        position,
		ClubUsedID:   req.ClubUsedID,
	}

	if chosen, kind := chosenTrajectory(rec); chosen != nil {
		stroke.ProposedDistance = &chosen.DistanceMeters
		stroke.TrajectoryType = &kind
		if chosen.Club != nil {
			clubID := chosen.Club.Club.ClubID
			stroke.ProposedClubID = &clubID
		}
	}

	if err := s.matches.CreateStroke(ctx, stroke); err != nil {
		return nil, fmt.Errorf("failed to register stroke: %w", err)
	}
	return stroke, nil
}

// chosenTrajectory picks what the player is assumed to follow: the
// direct line when accepted, the conservative fallback otherwise.
func chosenTrajectory(rec *engine.Recommendation) (*engine.Trajectory, models.TrajectoryType) {
	if rec == nil {
		return nil, ""
	}
	if rec.Direct != nil {
		return rec.Direct, models.TrajectoryDirect
	}
	if rec.Conservative != nil {
		return rec.Conservative, models.TrajectoryConservative
	}
	return nil, ""
}
