package engine

import (
	"math"

	"github.com/kdigolf/caddie/internal/models"
)

// StatsAlpha is the learning rate of the exponentially weighted
// statistics update. Recent shots dominate but a single outlier
// cannot rewrite a club's profile.
const StatsAlpha = 0.3

// UpdateClubStat folds one evaluated shot into a player's running
// numbers for a club. A zero-shot stat initializes every field from
// the single observation. The standard deviation is kept at half the
// average error rather than tracked exactly; downstream consumers
// depend on that relationship.
func UpdateClubStat(stat *models.PlayerClubStat, actualDistance, targetDistance float64) {
	errNow := math.Abs(actualDistance - targetDistance)

	if stat.ShotsRecorded == 0 {
		stat.AverageDistance = actualDistance
		stat.MinDistance = actualDistance
		stat.MaxDistance = actualDistance
		stat.AverageError = errNow
		stat.ErrorStdDeviation = 0.5 * errNow
		stat.ShotsRecorded = 1
		return
	}

	stat.AverageDistance = (1-StatsAlpha)*stat.AverageDistance + StatsAlpha*actualDistance
	stat.AverageError = (1-StatsAlpha)*stat.AverageError + StatsAlpha*errNow
	if actualDistance < stat.MinDistance {
		stat.MinDistance = actualDistance
	}
	if actualDistance > stat.MaxDistance {
		stat.MaxDistance = actualDistance
	}
	stat.ErrorStdDeviation = 0.5 * stat.AverageError
	stat.ShotsRecorded++
}
