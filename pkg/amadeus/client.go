package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

// maxListResults caps list-valued provider payloads before they reach the
// model or the frontend.
const maxListResults = 10

// Client issues authenticated requests against the Amadeus travel APIs.
// Responses are passed through verbatim apart from list truncation.
type Client struct {
	creds      *Credentials
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an Amadeus API client sharing the given credential cache
func NewClient(creds *Credentials, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		creds:      creds,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// FlightOffersQuery holds the flight-offers search parameters. Optional
// fields are appended to the provider query only when present.
type FlightOffersQuery struct {
	OriginIataCode      string
	DestinationIataCode string
	DepartureDate       string
	Adults              string
	ReturnDate          string
	MaxPrice            string
	IncludedAirlines    string
	ExcludedAirlines    string
	TravelClass         string
}

// FlightOffers searches flight offers between two IATA locations
func (c *Client) FlightOffers(ctx context.Context, q FlightOffersQuery) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("originLocationCode", q.OriginIataCode)
	params.Set("destinationLocationCode", q.DestinationIataCode)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", q.Adults)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	if q.MaxPrice != "" {
		params.Set("maxPrice", q.MaxPrice)
	}
	if q.IncludedAirlines != "" {
		params.Set("includedAirlineCodes", q.IncludedAirlines)
	}
	if q.ExcludedAirlines != "" {
		params.Set("excludedAirlineCodes", q.ExcludedAirlines)
	}
	if q.TravelClass != "" {
		params.Set("travelClass", q.TravelClass)
	}

	return c.get(ctx, "/v2/shopping/flight-offers?"+params.Encode(), true)
}

// AirportInfo looks up reference data for an airport by IATA code
func (c *Client) AirportInfo(ctx context.Context, iataCode string) (map[string]interface{}, error) {
	// Amadeus location IDs prefix airport IATA codes with "C".
	return c.get(ctx, "/v1/reference-data/locations/C"+url.PathEscape(iataCode), false)
}

// HotelsByGeocode lists hotels near a coordinate, optionally within a radius
// in kilometers
func (c *Client) HotelsByGeocode(ctx context.Context, latitude, longitude, radiusKM string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("latitude", latitude)
	params.Set("longitude", longitude)
	if radiusKM != "" {
		params.Set("radius", radiusKM)
		params.Set("radiusUnit", "KM")
	}

	return c.get(ctx, "/v1/reference-data/locations/hotels/by-geocode?"+params.Encode(), true)
}

// ActivitiesByGeocode lists tours and activities near a coordinate,
// optionally within a radius in meters
func (c *Client) ActivitiesByGeocode(ctx context.Context, latitude, longitude, radius string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("latitude", latitude)
	params.Set("longitude", longitude)
	if radius != "" {
		params.Set("radius", radius)
	}

	return c.get(ctx, "/v1/shopping/activities?"+params.Encode(), true)
}

// MostTraveledDestinations reports air-traffic analytics from an origin city
// for a given YYYY-MM period
func (c *Client) MostTraveledDestinations(ctx context.Context, cityIataCode, period string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("originCityCode", cityIataCode)
	params.Set("period", period)

	return c.get(ctx, "/v1/travel/analytics/air-traffic/traveled?"+params.Encode(), true)
}

func (c *Client) get(ctx context.Context, pathAndQuery string, truncate bool) (map[string]interface{}, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("amadeus", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("Amadeus request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("path", pathAndQuery),
		)
		return nil, apperrors.NewExternalError("amadeus",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("amadeus",
			fmt.Errorf("malformed response: %w", err))
	}

	if truncate {
		truncateList(payload)
	}

	return payload, nil
}

// truncateList caps the payload's data array at maxListResults entries
func truncateList(payload map[string]interface{}) {
	if data, ok := payload["data"].([]interface{}); ok && len(data) > maxListResults {
		payload["data"] = data[:maxListResults]
	}
}
