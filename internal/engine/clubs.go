package engine

import (
	"math"
	"sort"

	"github.com/kdigolf/caddie/internal/models"
)

// SwingType is how much of a full swing a recommendation asks for.
type SwingType string

const (
	SwingFull          SwingType = "full"
	SwingThreeQuarters SwingType = "three_quarters"
	SwingHalf          SwingType = "half"
)

// DefaultMaxAccessibleDistance caps reachable distance when a player
// has no usable stats at all.
const DefaultMaxAccessibleDistance = 350.0

// ClubStat is the per-club view the recommender works on: catalog
// identity plus the player's running numbers (or defaults).
type ClubStat struct {
	ClubID          uint                `json:"club_id"`
	Name            string              `json:"name"`
	Category        models.ClubCategory `json:"category"`
	Number          int                 `json:"number"`
	AverageDistance float64             `json:"average_distance"`
	MinDistance     float64             `json:"min_distance"`
	MaxDistance     float64             `json:"max_distance"`
	AverageError    float64             `json:"average_error"`
}

// ClubChoice is a recommended club and how to swing it.
type ClubChoice struct {
	Club          ClubStat  `json:"club"`
	Swing         SwingType `json:"swing"`
	TargetMeters  float64   `json:"target_meters"`
	ExpectedError float64   `json:"expected_error"`
}

// RecommendClub picks the club whose average distance best fits the
// target, penalizing imprecise clubs: score = |avg - target| +
// 0.5*avg_error, lower wins. Ties go to the shorter club. Returns nil
// when stats is empty or target is not positive.
func RecommendClub(stats []ClubStat, targetMeters float64) *ClubChoice {
	if len(stats) == 0 || targetMeters <= 0 {
		return nil
	}

	best := stats[0]
	bestScore := clubScore(stats[0], targetMeters)
	for _, s := range stats[1:] {
		score := clubScore(s, targetMeters)
		if score < bestScore || (score == bestScore && s.AverageDistance < best.AverageDistance) {
			best = s
			bestScore = score
		}
	}

	return &ClubChoice{
		Club:          best,
		Swing:         swingFor(best.AverageDistance, targetMeters),
		TargetMeters:  targetMeters,
		ExpectedError: best.AverageError,
	}
}

func clubScore(s ClubStat, target float64) float64 {
	return math.Abs(s.AverageDistance-target) + 0.5*s.AverageError
}

// swingFor bins the target/average ratio into a swing. Below 0.6 of a
// full swing the shot is a half swing, below 0.85 three quarters.
func swingFor(average, target float64) SwingType {
	if average <= 0 {
		return SwingFull
	}
	ratio := target / average
	switch {
	case ratio < 0.6:
		return SwingHalf
	case ratio < 0.85:
		return SwingThreeQuarters
	default:
		return SwingFull
	}
}

// MaxAccessibleDistance is the longest shot the player can plausibly
// hit: the largest max distance across clubs, falling back to the
// largest average, then to the global default.
func MaxAccessibleDistance(stats []ClubStat) float64 {
	var maxMax, maxAvg float64
	for _, s := range stats {
		if s.MaxDistance > maxMax {
			maxMax = s.MaxDistance
		}
		if s.AverageDistance > maxAvg {
			maxAvg = s.AverageDistance
		}
	}
	if maxMax > 0 {
		return maxMax
	}
	if maxAvg > 0 {
		return maxAvg
	}
	return DefaultMaxAccessibleDistance
}

// defaultClubDistances holds average carry in meters per club, by
// gender and skill level. Club names match the seeded catalog.
var defaultClubDistances = map[models.Gender]map[models.SkillLevel]map[string]float64{
	models.GenderMale: {
		models.SkillBeginner: {
			"Driver": 160, "Madera 3": 145, "Madera 5": 135,
			"Híbrido 3": 130, "Híbrido 4": 120,
			"Hierro 4": 140, "Hierro 5": 130, "Hierro 6": 120,
			"Hierro 7": 110, "Hierro 8": 100, "Hierro 9": 90,
			"Pitching Wedge": 80, "Gap Wedge": 65, "Sand Wedge": 50, "Lob Wedge": 35,
		},
		models.SkillIntermediate: {
			"Driver": 190, "Madera 3": 175, "Madera 5": 165,
			"Híbrido 3": 160, "Híbrido 4": 150,
			"Hierro 4": 170, "Hierro 5": 160, "Hierro 6": 150,
			"Hierro 7": 140, "Hierro 8": 130, "Hierro 9": 120,
			"Pitching Wedge": 110, "Gap Wedge": 95, "Sand Wedge": 80, "Lob Wedge": 65,
		},
		models.SkillAdvanced: {
			"Driver": 230, "Madera 3": 215, "Madera 5": 200,
			"Híbrido 3": 195, "Híbrido 4": 185,
			"Hierro 4": 200, "Hierro 5": 190, "Hierro 6": 180,
			"Hierro 7": 170, "Hierro 8": 160, "Hierro 9": 145,
			"Pitching Wedge": 135, "Gap Wedge": 115, "Sand Wedge": 100, "Lob Wedge": 85,
		},
		models.SkillProfessional: {
			"Driver": 270, "Madera 3": 250, "Madera 5": 235,
			"Híbrido 3": 230, "Híbrido 4": 215,
			"Hierro 4": 225, "Hierro 5": 215, "Hierro 6": 205,
			"Hierro 7": 195, "Hierro 8": 185, "Hierro 9": 170,
			"Pitching Wedge": 155, "Gap Wedge": 135, "Sand Wedge": 120, "Lob Wedge": 105,
		},
	},
	models.GenderFemale: {
		models.SkillBeginner: {
			"Driver": 130, "Madera 3": 120, "Madera 5": 110,
			"Híbrido 3": 105, "Híbrido 4": 95,
			"Hierro 4": 110, "Hierro 5": 100, "Hierro 6": 95,
			"Hierro 7": 85, "Hierro 8": 75, "Hierro 9": 65,
			"Pitching Wedge": 60, "Gap Wedge": 50, "Sand Wedge": 40, "Lob Wedge": 30,
		},
		models.SkillIntermediate: {
			"Driver": 160, "Madera 3": 150, "Madera 5": 140,
			"Híbrido 3": 135, "Híbrido 4": 125,
			"Hierro 4": 140, "Hierro 5": 130, "Hierro 6": 120,
			"Hierro 7": 110, "Hierro 8": 100, "Hierro 9": 90,
			"Pitching Wedge": 85, "Gap Wedge": 75, "Sand Wedge": 65, "Lob Wedge": 55,
		},
		models.SkillAdvanced: {
			"Driver": 190, "Madera 3": 175, "Madera 5": 165,
			"Híbrido 3": 160, "Híbrido 4": 150,
			"Hierro 4": 170, "Hierro 5": 160, "Hierro 6": 150,
			"Hierro 7": 140, "Hierro 8": 130, "Hierro 9": 120,
			"Pitching Wedge": 110, "Gap Wedge": 95, "Sand Wedge": 85, "Lob Wedge": 75,
		},
		models.SkillProfessional: {
			"Driver": 220, "Madera 3": 205, "Madera 5": 195,
			"Híbrido 3": 190, "Híbrido 4": 175,
			"Hierro 4": 195, "Hierro 5": 185, "Hierro 6": 175,
			"Hierro 7": 165, "Hierro 8": 155, "Hierro 9": 145,
			"Pitching Wedge": 130, "Gap Wedge": 115, "Sand Wedge": 105, "Lob Wedge": 95,
		},
	},
}

// DefaultDistances returns the baseline carry table for a player
// bucket, sorted by descending distance. Unknown buckets fall back to
// male intermediate.
func DefaultDistances(gender models.Gender, level models.SkillLevel) map[string]float64 {
	byLevel, ok := defaultClubDistances[gender]
	if !ok {
		byLevel = defaultClubDistances[models.GenderMale]
	}
	table, ok := byLevel[level]
	if !ok {
		table = byLevel[models.SkillIntermediate]
	}
	out := make(map[string]float64, len(table))
	for name, d := range table {
		out[name] = d
	}
	return out
}

// DefaultStatsFor derives an initial PlayerClubStat from a baseline
// carry distance: min 90%, max 110%, average error 8% of the carry,
// and a standard deviation at half the error.
func DefaultStatsFor(distance float64) (minD, maxD, avgErr, stdDev float64) {
	minD = 0.9 * distance
	maxD = 1.1 * distance
	avgErr = 0.08 * distance
	stdDev = 0.5 * avgErr
	return
}

// SortClubStats orders stats by descending average distance so
// reported stat sets read driver-first.
func SortClubStats(stats []ClubStat) {
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].AverageDistance > stats[j].AverageDistance
	})
}
