package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

const userAgent = "tripchat/1.0"

// Client resolves free-form place names to coordinates via a Nominatim
// instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a geocoding client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Location is the first geocoding match for a place
type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Geocode returns the coordinates of the first match for place, or a not
// found error when the lookup yields nothing.
func (c *Client) Geocode(ctx context.Context, place string) (*Location, error) {
	if c.baseURL == "" {
		return nil, apperrors.NewConfigError("nominatim base URL is not configured")
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("nominatim", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError("nominatim",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var matches []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, apperrors.NewExternalError("nominatim",
			fmt.Errorf("malformed response: %w", err))
	}
	if len(matches) == 0 {
		return nil, apperrors.NewNotFoundError("location")
	}

	c.logger.Debug("Geocoded place",
		zap.String("place", place),
		zap.String("lat", matches[0].Lat),
		zap.String("lon", matches[0].Lon),
	)

	return &Location{Latitude: matches[0].Lat, Longitude: matches[0].Lon}, nil
}
