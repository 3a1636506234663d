package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staticCreds() *Credentials {
	return NewCredentials(CredentialsConfig{StaticToken: "test-token"}, zap.NewNop())
}

func TestFlightOffers_TruncatesLongLists(t *testing.T) {
	items := make([]map[string]interface{}, 25)
	for i := range items {
		items[i] = map[string]interface{}{"id": fmt.Sprintf("offer-%d", i)}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v2/shopping/flight-offers", r.URL.Path)
		assert.Equal(t, "MAD", r.URL.Query().Get("originLocationCode"))
		assert.Equal(t, "2", r.URL.Query().Get("adults"))
		// Optional params stay absent when not set.
		assert.False(t, r.URL.Query().Has("returnDate"))

		json.NewEncoder(w).Encode(map[string]interface{}{"data": items})
	}))
	defer server.Close()

	client := NewClient(staticCreds(), server.URL, zap.NewNop())

	payload, err := client.FlightOffers(context.Background(), FlightOffersQuery{
		OriginIataCode:      "MAD",
		DestinationIataCode: "JFK",
		DepartureDate:       "2026-10-01",
		Adults:              "2",
	})
	require.NoError(t, err)

	data, ok := payload["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, maxListResults)
}

func TestFlightOffers_ShortListPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"id": "only"}},
		})
	}))
	defer server.Close()

	client := NewClient(staticCreds(), server.URL, zap.NewNop())

	payload, err := client.FlightOffers(context.Background(), FlightOffersQuery{
		OriginIataCode:      "MAD",
		DestinationIataCode: "JFK",
		DepartureDate:       "2026-10-01",
		Adults:              "1",
	})
	require.NoError(t, err)

	data, ok := payload["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestAirportInfo_PrefixesLocationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/reference-data/locations/CMAD", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"iataCode": "MAD"}})
	}))
	defer server.Close()

	client := NewClient(staticCreds(), server.URL, zap.NewNop())

	payload, err := client.AirportInfo(context.Background(), "MAD")
	require.NoError(t, err)
	assert.Contains(t, payload, "data")
}

func TestHotelsByGeocode_RadiusUnit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("radius"))
		assert.Equal(t, "KM", r.URL.Query().Get("radiusUnit"))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(staticCreds(), server.URL, zap.NewNop())

	_, err := client.HotelsByGeocode(context.Background(), "40.4", "-3.7", "5")
	require.NoError(t, err)
}

func TestGet_UpstreamErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(staticCreds(), server.URL, zap.NewNop())

	_, err := client.ActivitiesByGeocode(context.Background(), "40.4", "-3.7", "")
	require.Error(t, err)
}
