package engine

import (
	"math"
	"sort"

	"github.com/kdigolf/caddie/internal/models"
)

// Risk thresholds driving the decision engine.
const (
	// RiskTerminal and below: accept the trajectory and stop looking.
	RiskTerminal = 30.0
	// RiskAcceptable and below: accept, but keep looking for a
	// conservative alternative.
	RiskAcceptable = 75.0
)

// obstacleBasePenalty scores how much crossing one obstacle of a type
// costs. Types not listed are mild zones, not hazards.
var obstacleBasePenalty = map[models.TerrainType]float64{
	models.TerrainWater:       50,
	models.TerrainOutOfBounds: 45,
	models.TerrainTrees:       25,
	models.TerrainHeavyRough:  20,
	models.TerrainBunker:      15,
	models.TerrainRough:       10,
}

// terrainClubRisk scores hitting a club category from a lie. Missing
// lies read as the worst row.
var terrainClubRisk = map[models.TerrainType]map[models.ClubCategory]float64{
	models.TerrainTee: {
		models.CategoryDriver: 0, models.CategoryWood: 0, models.CategoryHybrid: 0,
		models.CategoryIron: 0, models.CategoryWedge: 0, models.CategoryPutter: 40,
	},
	models.TerrainFairway: {
		models.CategoryDriver: 60, models.CategoryWood: 40, models.CategoryHybrid: 15,
		models.CategoryIron: 5, models.CategoryWedge: 0, models.CategoryPutter: 25,
	},
	models.TerrainGreen: {
		models.CategoryDriver: 100, models.CategoryWood: 100, models.CategoryHybrid: 80,
		models.CategoryIron: 60, models.CategoryWedge: 5, models.CategoryPutter: 0,
	},
	models.TerrainRough: {
		models.CategoryDriver: 70, models.CategoryWood: 55, models.CategoryHybrid: 25,
		models.CategoryIron: 10, models.CategoryWedge: 0, models.CategoryPutter: 45,
	},
	models.TerrainHeavyRough: {
		models.CategoryDriver: 85, models.CategoryWood: 70, models.CategoryHybrid: 45,
		models.CategoryIron: 25, models.CategoryWedge: 2, models.CategoryPutter: 70,
	},
	models.TerrainBunker: {
		models.CategoryDriver: 95, models.CategoryWood: 85, models.CategoryHybrid: 60,
		models.CategoryIron: 35, models.CategoryWedge: 2, models.CategoryPutter: 80,
	},
	models.TerrainTrees: {
		models.CategoryDriver: 90, models.CategoryWood: 80, models.CategoryHybrid: 55,
		models.CategoryIron: 30, models.CategoryWedge: 5, models.CategoryPutter: 85,
	},
	models.TerrainWater: {
		models.CategoryDriver: 100, models.CategoryWood: 100, models.CategoryHybrid: 100,
		models.CategoryIron: 100, models.CategoryWedge: 5, models.CategoryPutter: 100,
	},
	models.TerrainOutOfBounds: {
		models.CategoryDriver: 100, models.CategoryWood: 100, models.CategoryHybrid: 100,
		models.CategoryIron: 100, models.CategoryWedge: 5, models.CategoryPutter: 100,
	},
}

// worstTerrainRow serves unknown lies: assume the most hostile ground.
var worstTerrainRow = terrainClubRisk[models.TerrainWater]

// RiskInput is one candidate trajectory to score.
type RiskInput struct {
	Start     models.Point
	Target    models.Point
	Club      *ClubStat
	Obstacles []models.Obstacle
	Terrain   models.TerrainType
	// TargetIsFlag switches the distance curve from the shallow
	// waypoint profile to the steeper flag profile.
	TargetIsFlag bool
}

// ScoreRisk computes a 0-100 heuristic risk for a candidate
// trajectory: obstacle exposure plus lie/club compatibility plus a
// distance penalty, clamped.
func ScoreRisk(in RiskInput) float64 {
	risk := obstacleRisk(in) + terrainRisk(in.Terrain, in.Club) + distanceRisk(in)
	return clamp(risk, 0, 100)
}

// obstacleRiskCap bounds the obstacle component so terrain and
// distance always remain visible in the total.
const obstacleRiskCap = 74.0

func obstacleRisk(in RiskInput) float64 {
	if len(in.Obstacles) == 0 {
		return 0
	}

	penalties := make([]float64, 0, len(in.Obstacles))
	for i := range in.Obstacles {
		if p, ok := obstacleBasePenalty[in.Obstacles[i].Type]; ok {
			penalties = append(penalties, p)
		}
	}
	if len(penalties) == 0 {
		return 0
	}
	// Diminishing additive scale: the worst obstacle counts fully,
	// each additional one half as much as the previous.
	sort.Sort(sort.Reverse(sort.Float64Slice(penalties)))
	var base, weight float64 = 0, 1
	for _, p := range penalties {
		base += p * weight
		weight *= 0.5
	}

	return clamp(base*precisionFactor(in.Club)*densityFactor(in), 0, obstacleRiskCap)
}

// precisionFactor rewards precise clubs: a player who lands within a
// few meters of target threads hazards more safely. Average error is
// in meters; 15m reads as neutral.
func precisionFactor(club *ClubStat) float64 {
	if club == nil || club.AverageError <= 0 {
		return 1.0
	}
	return clamp(0.7+club.AverageError/50, 0.7, 1.3)
}

// densityFactor scales risk up when obstacles cluster near the
// target, where the ball is most likely to finish.
func densityFactor(in RiskInput) float64 {
	segLen := Haversine(in.Start, in.Target)
	if segLen <= 0 {
		return 1.0
	}
	var proximity float64
	var n int
	for i := range in.Obstacles {
		if _, ok := obstacleBasePenalty[in.Obstacles[i].Type]; !ok {
			continue
		}
		d := Haversine(in.Obstacles[i].Centroid(), in.Target)
		proximity += 1 - clamp(d, 0, segLen)/segLen
		n++
	}
	if n == 0 {
		return 1.0
	}
	return 1 + 0.3*(proximity/float64(n))
}

func terrainRisk(terrain models.TerrainType, club *ClubStat) float64 {
	row, ok := terrainClubRisk[terrain]
	if !ok {
		row = worstTerrainRow
	}
	if club == nil {
		// No club context: report the row's mid-range entry so an
		// unknown club neither hides nor dominates the lie.
		return row[models.CategoryIron]
	}
	if r, ok := row[club.Category]; ok {
		return r
	}
	return row[models.CategoryIron]
}

// Distance curves: waypoints carry a shallow penalty, the flag a
// steeper one since overshooting the green is expensive.
const (
	waypointDistanceRiskMax = 6.0
	waypointDistanceScale   = 300.0
	flagDistanceRiskMax     = 20.0
	flagDistanceScale       = 200.0
)

func distanceRisk(in RiskInput) float64 {
	d := Haversine(in.Start, in.Target)
	if in.TargetIsFlag {
		return flagDistanceRiskMax * math.Min(1, d/flagDistanceScale)
	}
	return waypointDistanceRiskMax * math.Min(1, d/waypointDistanceScale)
}

// ObstaclesOnSegment returns the hole's hazards whose shape crosses or
// contains the segment start-target. Non-hazard zones (green, fairway,
// tee) are skipped.
func ObstaclesOnSegment(hole *models.Hole, start, target models.Point) []models.Obstacle {
	var crossed []models.Obstacle
	for i := range hole.Obstacles {
		o := &hole.Obstacles[i]
		if _, ok := obstacleBasePenalty[o.Type]; !ok {
			continue
		}
		if SegmentIntersectsPolygon(start, target, o.Shape) {
			crossed = append(crossed, *o)
		}
	}
	return crossed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
