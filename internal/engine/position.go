package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/kdigolf/caddie/internal/models"
)

// ErrNoHoles is returned when a course has no surveyed holes to
// resolve against.
var ErrNoHoles = errors.New("course has no holes")

const (
	// DefaultCorrectionRadius bounds how far a terrain-description
	// correction may move the ball, in meters.
	DefaultCorrectionRadius = 100.0

	// DefaultFallbackDistance bounds the expected-hole distance
	// identification, in meters.
	DefaultFallbackDistance = 500.0

	teeProximityMeters = 15.0
)

// ResolveOptions carries the match context available for a GPS fix.
// The zero value means "no context": only geometry is used.
type ResolveOptions struct {
	// ExpectedHoleNumber is the hole the player should be on
	// according to the match state. Zero means unknown.
	ExpectedHoleNumber int

	// FirstStroke marks the opening shot of a hole. The resolver
	// then expects the position near a tee.
	FirstStroke bool

	// TerrainDescription is free text from the player describing the
	// lie, used to correct a drifted GPS fix.
	TerrainDescription string
}

// ResolvedPosition is the outcome of the resolution cascade.
type ResolvedPosition struct {
	Hole                *models.Hole       `json:"hole"`
	Position            models.Point       `json:"position"`
	Valid               bool               `json:"valid"`
	Confidence          float64            `json:"confidence"`
	Reason              string             `json:"reason"`
	CorrectedHoleNumber *int               `json:"corrected_hole_number,omitempty"`
	CorrectedPosition   *models.Point      `json:"corrected_position,omitempty"`
	DistanceToFlag      float64            `json:"distance_to_flag"`
	Terrain             *TerrainExtraction `json:"terrain,omitempty"`
}

// PositionResolver turns a raw GPS fix into a hole plus a trusted
// position, combining polygon containment, match context, the
// player's own description of the lie, and distance fallbacks.
type PositionResolver struct {
	CorrectionRadius float64
	FallbackDistance float64
	Logger           *logrus.Logger
}

func NewPositionResolver(logger *logrus.Logger) *PositionResolver {
	return &PositionResolver{
		CorrectionRadius: DefaultCorrectionRadius,
		FallbackDistance: DefaultFallbackDistance,
		Logger:           logger,
	}
}

// Resolve runs the cascade over the loaded holes. Holes must carry
// their polygons and obstacles. Returns ErrNoHoles when holes is
// empty; every other outcome is expressed through the result's Valid
// and Confidence fields rather than an error.
func (r *PositionResolver) Resolve(holes []models.Hole, pos models.Point, opts ResolveOptions) (*ResolvedPosition, error) {
	if len(holes) == 0 {
		return nil, ErrNoHoles
	}

	detected := findHoleByPolygon(holes, pos)
	result := r.validateContext(holes, detected, pos, opts)

	// Terrain-description correction: when the player says where the
	// ball is and the geometry disagrees, trust the player.
	if opts.TerrainDescription != "" {
		if ext := ExtractTerrain(opts.TerrainDescription); ext != nil && ext.Confidence > 0.6 {
			result.Terrain = ext
			if corrected := r.correctByTerrain(holes, detected, pos, ext.TerrainType, opts, result); corrected != nil {
				pos = *corrected
				result.CorrectedPosition = corrected
				result.Position = pos
				result.Confidence = minf(1.0, result.Confidence+0.15)
				result.Reason += fmt.Sprintf(" | position corrected to described %s", ext.TerrainType)
				// Re-resolve containment at the corrected point.
				if h := findHoleByPolygon(holes, pos); h != nil {
					result.Hole = h
				}
			}
		}
	}

	// Distance fallback when polygons gave nothing trustworthy.
	if !result.Valid || result.Confidence < 0.7 {
		if fallback := r.identifyByDistance(holes, pos, opts); fallback != nil && fallback.Confidence > result.Confidence {
			fallback.Terrain = result.Terrain
			fallback.CorrectedPosition = result.CorrectedPosition
			result = fallback
		}
	}

	if result.Hole != nil && !result.Hole.Flag.IsZero() {
		result.DistanceToFlag = Haversine(result.Position, result.Hole.Flag)
	}

	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"valid":      result.Valid,
			"confidence": result.Confidence,
			"reason":     result.Reason,
		}).Debug("Position resolved")
	}
	return result, nil
}

func findHoleByPolygon(holes []models.Hole, pos models.Point) *models.Hole {
	for i := range holes {
		h := &holes[i]
		if PointInPolygon(pos, h.FairwayPolygon) || PointInPolygon(pos, h.GreenPolygon) || PointInPolygon(pos, h.TeePolygon) {
			return h
		}
	}
	return nil
}

func holeByNumber(holes []models.Hole, number int) *models.Hole {
	for i := range holes {
		if holes[i].HoleNumber == number {
			return &holes[i]
		}
	}
	return nil
}

func (r *PositionResolver) validateContext(holes []models.Hole, detected *models.Hole, pos models.Point, opts ResolveOptions) *ResolvedPosition {
	result := &ResolvedPosition{Position: pos, Hole: detected}

	if detected == nil {
		result.Reason = "no hole polygon contains the position"
		return result
	}

	// Without match context a polygon hit is as good as it gets.
	if opts.ExpectedHoleNumber == 0 {
		result.Valid = true
		result.Confidence = 0.9
		result.Reason = fmt.Sprintf("hole %d detected by polygon containment", detected.HoleNumber)
		return result
	}

	if detected.HoleNumber == opts.ExpectedHoleNumber {
		result.Valid = true
		result.Confidence = 0.9
		result.Reason = fmt.Sprintf("expected hole %d confirmed by polygons", detected.HoleNumber)
		if opts.FirstStroke {
			if PointInPolygon(pos, detected.TeePolygon) {
				result.Confidence = 1.0
				result.Reason += " | on the tee for the opening stroke"
			} else {
				result.Confidence = 0.7
				result.Reason += " | opening stroke away from the tee"
			}
		}
		return result
	}

	diff := detected.HoleNumber - opts.ExpectedHoleNumber
	if diff < 0 {
		diff = -diff
	}
	if diff <= 2 {
		// Adjacent fairways overlap in practice; check whether the
		// fix is actually close to the expected flag before trusting
		// the detected hole.
		if expected := holeByNumber(holes, opts.ExpectedHoleNumber); expected != nil && !expected.Flag.IsZero() {
			if Haversine(pos, expected.Flag) < 100 {
				n := opts.ExpectedHoleNumber
				return &ResolvedPosition{
					Position:            pos,
					Hole:                expected,
					Valid:               true,
					Confidence:          0.8,
					Reason:              fmt.Sprintf("polygons say hole %d but position is near the expected hole %d", detected.HoleNumber, n),
					CorrectedHoleNumber: &n,
				}
			}
		}
		result.Valid = true
		result.Confidence = 0.5
		result.Reason = fmt.Sprintf("adjacent hole %d detected, expected %d", detected.HoleNumber, opts.ExpectedHoleNumber)
		return result
	}

	result.Confidence = 0.2
	result.Reason = fmt.Sprintf("detected hole %d is far from expected hole %d", detected.HoleNumber, opts.ExpectedHoleNumber)
	return result
}

// correctByTerrain snaps the fix onto the nearest obstacle of the
// described type on the contextual hole, within CorrectionRadius.
// Returns nil when no correction applies.
func (r *PositionResolver) correctByTerrain(holes []models.Hole, detected *models.Hole, pos models.Point, terrain models.TerrainType, opts ResolveOptions, current *ResolvedPosition) *models.Point {
	target := detected
	if opts.ExpectedHoleNumber != 0 {
		if expected := holeByNumber(holes, opts.ExpectedHoleNumber); expected != nil {
			target = expected
		}
	}
	if target == nil {
		return nil
	}

	shouldCorrect := detected == nil ||
		(opts.ExpectedHoleNumber != 0 && detected.HoleNumber != opts.ExpectedHoleNumber) ||
		current.Confidence < 0.8
	if !shouldCorrect && detected != nil {
		shouldCorrect = TerrainAt(detected, pos) != terrain
	}
	if !shouldCorrect {
		return nil
	}

	var best *models.Obstacle
	bestDist := r.CorrectionRadius
	for i := range target.Obstacles {
		o := &target.Obstacles[i]
		if o.Type != terrain {
			continue
		}
		if d := DistanceToPolygon(pos, o.Shape); d <= bestDist {
			bestDist = d
			best = o
		}
	}
	if best == nil {
		return nil
	}
	c := best.Centroid()
	return &c
}

// identifyByDistance accepts the contextual hole when the fix is
// within FallbackDistance of its flag; without context it picks the
// nearest flag on the course at low confidence, however far away, so
// a surveyed course always resolves to some hole.
func (r *PositionResolver) identifyByDistance(holes []models.Hole, pos models.Point, opts ResolveOptions) *ResolvedPosition {
	if opts.ExpectedHoleNumber != 0 {
		expected := holeByNumber(holes, opts.ExpectedHoleNumber)
		if expected == nil || expected.Flag.IsZero() {
			return nil
		}
		d := Haversine(pos, expected.Flag)
		if d > r.FallbackDistance {
			return nil
		}
		confidence := 0.85
		reason := fmt.Sprintf("identified by distance to expected hole %d (%.1fm)", opts.ExpectedHoleNumber, d)
		if opts.FirstStroke {
			if PointInPolygon(pos, expected.TeePolygon) {
				confidence = 0.95
				reason += " | on the tee"
			} else {
				confidence = 0.7
				reason += " | opening stroke away from the tee"
			}
		}
		return &ResolvedPosition{
			Position:   pos,
			Hole:       expected,
			Valid:      true,
			Confidence: confidence,
			Reason:     reason,
		}
	}

	var nearest *models.Hole
	nearestDist := math.Inf(1)
	for i := range holes {
		h := &holes[i]
		if h.Flag.IsZero() {
			continue
		}
		if d := Haversine(pos, h.Flag); d < nearestDist {
			nearestDist = d
			nearest = h
		}
	}
	if nearest == nil {
		return nil
	}
	return &ResolvedPosition{
		Position:   pos,
		Hole:       nearest,
		Valid:      true,
		Confidence: 0.5,
		Reason:     fmt.Sprintf("nearest flag fallback: hole %d (%.1fm)", nearest.HoleNumber, nearestDist),
	}
}

// TerrainAt classifies the ground at a point on a hole. Obstacles win
// over the fairway so a bunker carved into the fairway reads as a
// bunker.
func TerrainAt(hole *models.Hole, pos models.Point) models.TerrainType {
	if PointInPolygon(pos, hole.GreenPolygon) {
		return models.TerrainGreen
	}
	if PointInPolygon(pos, hole.TeePolygon) {
		return models.TerrainTee
	}
	for i := range hole.Obstacles {
		if PointInPolygon(pos, hole.Obstacles[i].Shape) {
			return hole.Obstacles[i].Type
		}
	}
	if PointInPolygon(pos, hole.FairwayPolygon) {
		return models.TerrainFairway
	}
	return models.TerrainRough
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
