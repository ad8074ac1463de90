package models

// StationStatus is the operational state reported by the directory. The
// upstream feed leaves status unset for many stations, so unknown is a
// first-class value rather than a missing one.
type StationStatus string

// Status values.
const (
	StationStatusOperational StationStatus = "operational"
	StationStatusOffline     StationStatus = "offline"
	StationStatusUnknown     StationStatus = "unknown"
)

// UnknownDistanceKm substitutes for stations the directory returns without
// a computed distance.
const UnknownDistanceKm = 999

// Connector is a single charging connection offered by a station.
type Connector struct {
	Type       string  `json:"type,omitempty"`
	Level      string  `json:"level,omitempty"`
	PowerKW    float64 `json:"power_kw,omitempty"`
	FastCharge bool    `json:"fast_charge"`
}

// Station is a charging station normalized from the directory payload.
type Station struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Address     string        `json:"address,omitempty"`
	Town        string        `json:"town,omitempty"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	DistanceKm  float64       `json:"distance_km"`
	Status      StationStatus `json:"status"`
	StatusTitle string        `json:"status_title,omitempty"`
	Connectors  []Connector   `json:"connectors,omitempty"`
}

// FastCharge reports whether any connector supports fast charging.
func (s Station) FastCharge() bool {
	for _, c := range s.Connectors {
		if c.FastCharge {
			return true
		}
	}
	return false
}

// ChargerTypes returns the distinct connector type titles in first-seen order.
func (s Station) ChargerTypes() []string {
	seen := make(map[string]struct{}, len(s.Connectors))
	types := make([]string, 0, len(s.Connectors))
	for _, c := range s.Connectors {
		if c.Type == "" {
			continue
		}
		if _, ok := seen[c.Type]; ok {
			continue
		}
		seen[c.Type] = struct{}{}
		types = append(types, c.Type)
	}
	return types
}

// ScoredStation pairs a station with its recommendation score.
type ScoredStation struct {
	Station Station `json:"station"`
	Score   int     `json:"score"`
}
