package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/models"
)

// ErrDirectoryUnavailable reports that the station directory could not be
// reached or returned an unusable response.
var ErrDirectoryUnavailable = errors.New("station directory unavailable")

// Level 3 in the directory's classification is DC fast charging.
const fastChargeLevelID = 3

// DirectoryQuery bounds a station search around a geographic point.
type DirectoryQuery struct {
	Latitude   float64
	Longitude  float64
	RadiusKm   float64
	MaxResults int
}

// DirectoryClient fetches charging stations from an Open Charge Map
// compatible directory.
type DirectoryClient struct {
	base   *BaseClient
	apiKey string
	logger *zap.Logger
}

// NewDirectoryClient returns client. The API key may be empty; the public
// directory accepts unauthenticated reads at a lower rate limit.
func NewDirectoryClient(baseURL, apiKey string, httpClient HTTPDoer, logger *zap.Logger) *DirectoryClient {
	return &DirectoryClient{
		base:   NewBaseClient(baseURL, httpClient),
		apiKey: apiKey,
		logger: logger,
	}
}

// poi mirrors the subset of the directory payload the assistant reads.
// Optional objects stay pointers so absence survives decoding.
type poi struct {
	ID          int64 `json:"ID"`
	AddressInfo struct {
		Title        string   `json:"Title"`
		AddressLine1 string   `json:"AddressLine1"`
		Town         string   `json:"Town"`
		Latitude     float64  `json:"Latitude"`
		Longitude    float64  `json:"Longitude"`
		Distance     *float64 `json:"Distance"`
	} `json:"AddressInfo"`
	Connections []struct {
		LevelID int64 `json:"LevelID"`
		Level   *struct {
			Title               string `json:"Title"`
			IsFastChargeCapable bool   `json:"IsFastChargeCapable"`
		} `json:"Level"`
		ConnectionType *struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
		PowerKW *float64 `json:"PowerKW"`
	} `json:"Connections"`
	StatusType *struct {
		Title         string `json:"Title"`
		IsOperational *bool  `json:"IsOperational"`
	} `json:"StatusType"`
}

// Search returns stations near the query point, normalized and in directory
// order. Transport failures, non-200 statuses and undecodable bodies all
// map to ErrDirectoryUnavailable.
func (c *DirectoryClient) Search(ctx context.Context, query DirectoryQuery) ([]models.Station, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(query.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(query.Longitude, 'f', -1, 64))
	params.Set("distance", strconv.FormatFloat(query.RadiusKm, 'f', -1, 64))
	params.Set("maxresults", strconv.Itoa(query.MaxResults))
	params.Set("compact", "true")
	params.Set("verbose", "false")

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"X-API-Key": c.apiKey}
	}

	status, body, err := c.base.Do(ctx, http.MethodGet, "/poi/?"+params.Encode(), nil, headers)
	if err != nil {
		c.logger.Warn("directory request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if status != http.StatusOK {
		c.logger.Warn("directory returned unexpected status", zap.Int("status", status))
		return nil, fmt.Errorf("%w: status %d", ErrDirectoryUnavailable, status)
	}

	var pois []poi
	if err := json.Unmarshal(body, &pois); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrDirectoryUnavailable, err)
	}

	stations := make([]models.Station, 0, len(pois))
	for _, p := range pois {
		stations = append(stations, normalizeStation(p))
	}
	return stations, nil
}

// normalizeStation converts one raw directory record into the boundary
// schema: missing distance becomes UnknownDistanceKm, missing or ambiguous
// status becomes unknown, and an empty title gets a readable placeholder.
func normalizeStation(p poi) models.Station {
	station := models.Station{
		ID:         p.ID,
		Name:       p.AddressInfo.Title,
		Address:    p.AddressInfo.AddressLine1,
		Town:       p.AddressInfo.Town,
		Latitude:   p.AddressInfo.Latitude,
		Longitude:  p.AddressInfo.Longitude,
		DistanceKm: models.UnknownDistanceKm,
		Status:     models.StationStatusUnknown,
	}
	if station.Name == "" {
		station.Name = "Unknown Station"
	}
	if p.AddressInfo.Distance != nil {
		station.DistanceKm = *p.AddressInfo.Distance
	}
	if p.StatusType != nil {
		station.StatusTitle = p.StatusType.Title
		if p.StatusType.IsOperational != nil {
			if *p.StatusType.IsOperational {
				station.Status = models.StationStatusOperational
			} else {
				station.Status = models.StationStatusOffline
			}
		}
	}
	for _, conn := range p.Connections {
		connector := models.Connector{}
		if conn.ConnectionType != nil {
			connector.Type = conn.ConnectionType.Title
		}
		if conn.PowerKW != nil {
			connector.PowerKW = *conn.PowerKW
		}
		if conn.Level != nil {
			connector.Level = conn.Level.Title
			connector.FastCharge = conn.Level.IsFastChargeCapable || strings.Contains(conn.Level.Title, "Fast")
		}
		if conn.LevelID == fastChargeLevelID {
			connector.FastCharge = true
		}
		station.Connectors = append(station.Connectors, connector)
	}
	return station
}
