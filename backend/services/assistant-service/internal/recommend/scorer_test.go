package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeassist/backend/services/assistant-service/internal/models"
)

func stationAt(distanceKm float64) models.Station {
	return models.Station{
		Name:       "Test Station",
		DistanceKm: distanceKm,
		Status:     models.StationStatusUnknown,
	}
}

func fastStationAt(distanceKm float64) models.Station {
	s := stationAt(distanceKm)
	s.Connectors = []models.Connector{{Type: "CCS", Level: "Level 3: High (Over 40kW)", FastCharge: true}}
	return s
}

func TestScore_ProximityBands(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name       string
		distanceKm float64
		want       int
	}{
		{"at query point", 0, 10},
		{"just inside near band", 4.9, 10},
		{"near boundary falls to mid band", 5, 5},
		{"just inside mid band", 9.9, 5},
		{"mid boundary gets nothing", 10, 0},
		{"far away", 42.5, 0},
		{"unknown distance placeholder", models.UnknownDistanceKm, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(stationAt(tt.distanceKm), w))
		})
	}
}

func TestScore_FastChargeBonus(t *testing.T) {
	w := DefaultWeights()

	standard := stationAt(50)
	standard.Connectors = []models.Connector{{Type: "Type 2", Level: "Level 2: Medium (Over 2kW)"}}
	assert.Equal(t, 0, Score(standard, w))

	fast := fastStationAt(50)
	assert.Equal(t, w.FastChargeBonus, Score(fast, w))

	// The bonus is flat regardless of how many fast connectors a site has.
	multi := fastStationAt(50)
	multi.Connectors = append(multi.Connectors,
		models.Connector{Type: "CHAdeMO", FastCharge: true},
		models.Connector{Type: "CCS", FastCharge: true},
	)
	assert.Equal(t, w.FastChargeBonus, Score(multi, w))
}

func TestScore_OperationalBonus(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name   string
		status models.StationStatus
		want   int
	}{
		{"operational", models.StationStatusOperational, w.OperationalBonus},
		{"offline", models.StationStatusOffline, 0},
		{"unknown", models.StationStatusUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stationAt(50)
			s.Status = tt.status
			assert.Equal(t, tt.want, Score(s, w))
		})
	}
}

func TestScore_UnknownFieldsGetProximityOnly(t *testing.T) {
	w := DefaultWeights()

	for _, distance := range []float64{1, 7.5, 30} {
		s := stationAt(distance)
		proximity := 0
		if distance < w.NearKm {
			proximity = w.NearBonus
		} else if distance < w.MidKm {
			proximity = w.MidBonus
		}
		assert.Equal(t, proximity, Score(s, w), "distance %.1f", distance)
	}
}

func TestScore_CloserNeverScoresLower(t *testing.T) {
	w := DefaultWeights()

	pairs := []struct {
		closer  float64
		farther float64
	}{
		{1, 2},
		{1, 8},
		{4.9, 5},
		{8, 12},
		{6, 9},
		{20, 400},
	}
	for _, p := range pairs {
		near := Score(stationAt(p.closer), w)
		far := Score(stationAt(p.farther), w)
		assert.GreaterOrEqual(t, near, far, "closer %.1fkm vs %.1fkm", p.closer, p.farther)
	}
}

func TestScore_FastBeatsStandardAtSameDistance(t *testing.T) {
	w := DefaultWeights()

	standard := stationAt(3)
	fast := fastStationAt(3)
	assert.Greater(t, Score(fast, w), Score(standard, w))
}

func TestRank_BestFirst(t *testing.T) {
	w := DefaultWeights()

	nearFast := fastStationAt(1)
	nearFast.Status = models.StationStatusOperational
	midStandard := stationAt(5)
	midStandard.Connectors = []models.Connector{{Type: "Type 2"}}
	midStandard.Status = models.StationStatusOperational

	ranked := Rank([]models.Station{midStandard, nearFast}, w)
	require.Len(t, ranked, 2)
	assert.Equal(t, nearFast.Connectors, ranked[0].Station.Connectors)
	assert.Equal(t, w.MaxScore(), ranked[0].Score)
	assert.Equal(t, w.MidBonus+w.OperationalBonus, ranked[1].Score)
}

func TestRank_StableOnTies(t *testing.T) {
	w := DefaultWeights()

	first := stationAt(50)
	first.Name = "Alpha"
	second := stationAt(60)
	second.Name = "Bravo"
	third := stationAt(70)
	third.Name = "Charlie"

	ranked := Rank([]models.Station{first, second, third}, w)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Alpha", ranked[0].Station.Name)
	assert.Equal(t, "Bravo", ranked[1].Station.Name)
	assert.Equal(t, "Charlie", ranked[2].Station.Name)
}

func TestRank_PermutationOfInput(t *testing.T) {
	w := DefaultWeights()

	input := []models.Station{fastStationAt(1), stationAt(8), stationAt(400), fastStationAt(6)}
	for i := range input {
		input[i].Name = string(rune('A' + i))
	}
	original := make([]models.Station, len(input))
	copy(original, input)

	ranked := Rank(input, w)
	require.Len(t, ranked, len(input))

	// Input order untouched.
	assert.Equal(t, original, input)

	// Every input station appears exactly once in the output.
	counts := make(map[string]int)
	for _, s := range input {
		counts[s.Name]++
	}
	for _, rs := range ranked {
		counts[rs.Station.Name]--
	}
	for name, n := range counts {
		assert.Zero(t, n, "station %q", name)
	}

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	ranked := Rank(nil, DefaultWeights())
	assert.Empty(t, ranked)
}

func TestWeights_MaxScore(t *testing.T) {
	assert.Equal(t, 23, DefaultWeights().MaxScore())
}
