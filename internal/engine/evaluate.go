package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/kdigolf/caddie/internal/models"
)

// ErrStrokeRejected marks a pending stroke that failed plausibility
// validation. The stroke stays untouched and no statistics move.
var ErrStrokeRejected = errors.New("stroke rejected")

// maxDistanceFactor allows an evaluated stroke to exceed the player's
// best club average by 30% before it reads as a GPS glitch.
const maxDistanceFactor = 1.3

// lateralSlackMeters is the flat allowance for off-line shots before
// the lateral plausibility guard considers a GPS jump.
const lateralSlackMeters = 50.0

// StrokeEvaluation is the measured outcome of a completed stroke.
// QualityScore is nil for putts holed out inside the green, which are
// marked evaluated without feeding club statistics.
type StrokeEvaluation struct {
	ActualDistance float64  `json:"actual_distance"`
	QualityScore   *float64 `json:"quality_score,omitempty"`
	DistanceError  *float64 `json:"distance_error,omitempty"`
	DirectionError *float64 `json:"direction_error,omitempty"`
	WithinGreen    bool     `json:"within_green"`
}

// EvaluateStroke validates that the observed end position plausibly
// completes the pending stroke and computes its outcome metrics.
// Returns an error wrapping ErrStrokeRejected when the pairing is
// implausible; the caller must then leave the stroke pending.
func EvaluateStroke(stroke *models.Stroke, end models.Point, currentStrokeCount int, stats []ClubStat, hole *models.Hole) (*StrokeEvaluation, error) {
	if stroke.StrokeNumber != currentStrokeCount-1 {
		return nil, fmt.Errorf("%w: stroke %d is not the predecessor of stroke %d",
			ErrStrokeRejected, stroke.StrokeNumber, currentStrokeCount)
	}

	actual := Haversine(stroke.Start, end)

	maxPlausible := DefaultMaxAccessibleDistance
	if maxAvg := maxAverageDistance(stats); maxAvg > 0 {
		maxPlausible = maxDistanceFactor * maxAvg
	}
	if actual > maxPlausible {
		return nil, fmt.Errorf("%w: observed %.1fm exceeds plausible %.1fm",
			ErrStrokeRejected, actual, maxPlausible)
	}

	if stroke.ProposedDistance != nil && hole != nil && !hole.Flag.IsZero() {
		if err := checkLateralPlausibility(stroke, end, hole.Flag); err != nil {
			return nil, err
		}
	}

	// A stroke played entirely on the green is a putt: evaluated, but
	// carrying no club-statistics signal.
	if hole != nil && PointInPolygon(stroke.Start, hole.GreenPolygon) && PointInPolygon(end, hole.GreenPolygon) {
		return &StrokeEvaluation{ActualDistance: actual, WithinGreen: true}, nil
	}

	reference := referenceDistance(stroke, end, hole, actual)
	quality := clamp(100-100*math.Abs(actual-reference)/reference, 0, 100)
	distErr := math.Abs(actual - reference)
	dirErr := directionError(stroke, end, hole)

	return &StrokeEvaluation{
		ActualDistance: actual,
		QualityScore:   &quality,
		DistanceError:  &distErr,
		DirectionError: dirErr,
	}, nil
}

// checkLateralPlausibility rejects end positions that land far off
// the expected line. Expected distance remaining is what the proposed
// shot should have left to the flag; the guard fires only when the
// end is both well past the slack and at more than double the
// expectation, so honest bad shots still evaluate.
func checkLateralPlausibility(stroke *models.Stroke, end, flag models.Point) error {
	proposed := *stroke.ProposedDistance
	startToFlag := Haversine(stroke.Start, flag)
	endToFlag := Haversine(end, flag)

	expectedRemaining := math.Max(0, startToFlag-proposed)
	if endToFlag > expectedRemaining+lateralSlackMeters &&
		expectedRemaining > 0 && endToFlag/expectedRemaining > 2.0 {
		return fmt.Errorf("%w: end position %.1fm from flag, expected about %.1fm",
			ErrStrokeRejected, endToFlag, expectedRemaining)
	}
	return nil
}

// referenceDistance picks the yardstick for quality: the distance the
// engine proposed, else the distance to the flag from the start, else
// the shot itself (a neutral 100).
func referenceDistance(stroke *models.Stroke, end models.Point, hole *models.Hole, actual float64) float64 {
	if stroke.ProposedDistance != nil && *stroke.ProposedDistance > 0 {
		return *stroke.ProposedDistance
	}
	if hole != nil && !hole.Flag.IsZero() {
		if d := Haversine(stroke.Start, hole.Flag); d > 0 {
			return d
		}
	}
	if actual > 0 {
		return actual
	}
	return 1
}

// directionError measures how far the ball finished from where it was
// aimed: the proposed landing point on the start-flag line when a
// distance was proposed, the flag itself otherwise.
func directionError(stroke *models.Stroke, end models.Point, hole *models.Hole) *float64 {
	if hole == nil || hole.Flag.IsZero() {
		return nil
	}
	target := hole.Flag
	if stroke.ProposedDistance != nil && *stroke.ProposedDistance > 0 {
		bearing := Bearing(stroke.Start, hole.Flag)
		target = Destination(stroke.Start, bearing, *stroke.ProposedDistance)
	}
	d := Haversine(end, target)
	return &d
}

func maxAverageDistance(stats []ClubStat) float64 {
	var max float64
	for _, s := range stats {
		if s.AverageDistance > max {
			max = s.AverageDistance
		}
	}
	return max
}

// GreenStrokeQuality scores a putt once the hole is completed, from
// the number of putts taken: one putt is excellent, each extra putt
// costs dearly.
func GreenStrokeQuality(putts int) float64 {
	switch {
	case putts <= 1:
		return 80
	case putts == 2:
		return 60
	case putts == 3:
		return 40
	default:
		return math.Max(0, 20-float64(putts-4)*5)
	}
}
