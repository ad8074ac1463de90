package recommend

import (
	"sort"

	"chargeassist/backend/services/assistant-service/internal/models"
)

// Weights tunes the additive recommendation score.
type Weights struct {
	NearBonus        int
	MidBonus         int
	FastChargeBonus  int
	OperationalBonus int
	NearKm           float64
	MidKm            float64
}

// DefaultWeights returns the stock scoring weights: full proximity bonus
// inside NearKm, half inside MidKm, flat bonuses for fast charging and a
// confirmed operational status.
func DefaultWeights() Weights {
	return Weights{
		NearBonus:        10,
		MidBonus:         5,
		FastChargeBonus:  8,
		OperationalBonus: 5,
		NearKm:           5,
		MidKm:            10,
	}
}

// MaxScore returns the highest score the weights can produce.
func (w Weights) MaxScore() int {
	return w.NearBonus + w.FastChargeBonus + w.OperationalBonus
}

// Score computes the additive score for one station. Unknown charger type
// and unknown status take the no-bonus branch, so the result is defined for
// every station the directory can return.
func Score(station models.Station, w Weights) int {
	score := 0
	if station.DistanceKm < w.NearKm {
		score += w.NearBonus
	} else if station.DistanceKm < w.MidKm {
		score += w.MidBonus
	}
	if station.FastCharge() {
		score += w.FastChargeBonus
	}
	if station.Status == models.StationStatusOperational {
		score += w.OperationalBonus
	}
	return score
}

// Rank scores every station and orders the result best first. The sort is
// stable, so stations with equal scores keep their directory order. The
// input slice is left untouched.
func Rank(stations []models.Station, w Weights) []models.ScoredStation {
	ranked := make([]models.ScoredStation, 0, len(stations))
	for _, station := range stations {
		ranked = append(ranked, models.ScoredStation{
			Station: station,
			Score:   Score(station, w),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
