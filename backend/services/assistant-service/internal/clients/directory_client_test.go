package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/models"
)

const directoryPayload = `[
  {
    "ID": 101,
    "AddressInfo": {
      "Title": "Mission Bay Supercharger",
      "AddressLine1": "1 Market St",
      "Town": "San Francisco",
      "Latitude": 37.77,
      "Longitude": -122.41,
      "Distance": 2.4
    },
    "Connections": [
      {"LevelID": 3, "Level": {"Title": "Level 3:  High (Over 40kW)", "IsFastChargeCapable": true}, "ConnectionType": {"Title": "CCS (Type 1)"}, "PowerKW": 150},
      {"LevelID": 2, "Level": {"Title": "Level 2 : Medium (Over 2kW)", "IsFastChargeCapable": false}, "ConnectionType": {"Title": "Type 2"}}
    ],
    "StatusType": {"Title": "Operational", "IsOperational": true}
  },
  {
    "ID": 102,
    "AddressInfo": {
      "Title": "Harbor Garage",
      "Town": "Oakland",
      "Latitude": 37.8,
      "Longitude": -122.27
    },
    "Connections": [
      {"LevelID": 2, "Level": {"Title": "Level 2 : Medium (Over 2kW)", "IsFastChargeCapable": false}, "ConnectionType": {"Title": "Type 2"}}
    ],
    "StatusType": {"Title": "Not Operational", "IsOperational": false}
  },
  {
    "ID": 103,
    "AddressInfo": {
      "Latitude": 37.75,
      "Longitude": -122.45,
      "Distance": 11.2
    }
  }
]`

func TestDirectoryClient_Search(t *testing.T) {
	var gotQuery map[string]string
	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/poi/", r.URL.Path)
		gotAPIKey = r.Header.Get("X-API-Key")
		gotQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			gotQuery[key] = values[0]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directoryPayload))
	}))
	defer server.Close()

	client := NewDirectoryClient(server.URL, "test-key", server.Client(), zap.NewNop())
	stations, err := client.Search(context.Background(), DirectoryQuery{
		Latitude:   37.7749,
		Longitude:  -122.4194,
		RadiusKm:   10,
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, stations, 3)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "37.7749", gotQuery["latitude"])
	assert.Equal(t, "-122.4194", gotQuery["longitude"])
	assert.Equal(t, "10", gotQuery["distance"])
	assert.Equal(t, "10", gotQuery["maxresults"])
	assert.Equal(t, "true", gotQuery["compact"])
	assert.Equal(t, "false", gotQuery["verbose"])

	first := stations[0]
	assert.Equal(t, int64(101), first.ID)
	assert.Equal(t, "Mission Bay Supercharger", first.Name)
	assert.Equal(t, "1 Market St", first.Address)
	assert.Equal(t, "San Francisco", first.Town)
	assert.Equal(t, 2.4, first.DistanceKm)
	assert.Equal(t, models.StationStatusOperational, first.Status)
	assert.Equal(t, "Operational", first.StatusTitle)
	require.Len(t, first.Connectors, 2)
	assert.True(t, first.Connectors[0].FastCharge)
	assert.Equal(t, "CCS (Type 1)", first.Connectors[0].Type)
	assert.Equal(t, float64(150), first.Connectors[0].PowerKW)
	assert.False(t, first.Connectors[1].FastCharge)
	assert.True(t, first.FastCharge())

	second := stations[1]
	assert.Equal(t, models.StationStatusOffline, second.Status)
	assert.Equal(t, float64(models.UnknownDistanceKm), second.DistanceKm)
	assert.False(t, second.FastCharge())

	third := stations[2]
	assert.Equal(t, "Unknown Station", third.Name)
	assert.Equal(t, models.StationStatusUnknown, third.Status)
	assert.Equal(t, 11.2, third.DistanceKm)
}

func TestDirectoryClient_SearchWithoutAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewDirectoryClient(server.URL, "", server.Client(), zap.NewNop())
	stations, err := client.Search(context.Background(), DirectoryQuery{Latitude: 1, Longitude: 2, RadiusKm: 5, MaxResults: 10})
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestDirectoryClient_SearchUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewDirectoryClient(server.URL, "", server.Client(), zap.NewNop())
	_, err := client.Search(context.Background(), DirectoryQuery{Latitude: 1, Longitude: 2, RadiusKm: 5, MaxResults: 10})
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestDirectoryClient_SearchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewDirectoryClient(server.URL, "", &http.Client{}, zap.NewNop())
	_, err := client.Search(context.Background(), DirectoryQuery{Latitude: 1, Longitude: 2, RadiusKm: 5, MaxResults: 10})
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestDirectoryClient_SearchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	client := NewDirectoryClient(server.URL, "", server.Client(), zap.NewNop())
	_, err := client.Search(context.Background(), DirectoryQuery{Latitude: 1, Longitude: 2, RadiusKm: 5, MaxResults: 10})
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}
