package mcp

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"tripchat/pkg/amadeus"
	apperrors "tripchat/pkg/errors"
	"tripchat/pkg/nominatim"
	"tripchat/pkg/utils"
)

// NewToolSet builds the full tool list served by the protocol server
func NewToolSet(amadeusClient *amadeus.Client, nominatimClient *nominatim.Client, logger *zap.Logger) []Tool {
	return []Tool{
		flightOffersTool(amadeusClient),
		airportInfoTool(amadeusClient),
		hotelsNearPlaceTool(amadeusClient, nominatimClient),
		activitiesNearPlaceTool(amadeusClient, nominatimClient),
		findLatitudeLongitudeTool(nominatimClient),
		mostTraveledDestinationsTool(amadeusClient),
		renderChartOptionsTool(),
		renderMapOptionsTool(),
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return apperrors.NewValidationError("missing tool arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperrors.NewValidationError("malformed tool arguments")
	}
	if err := utils.ValidateStruct(v); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func flightOffersTool(client *amadeus.Client) Tool {
	type args struct {
		OriginIataCode      string `json:"originIataCode" validate:"required,len=3"`
		DestinationIataCode string `json:"destinationIataCode" validate:"required,len=3"`
		DepartureDate       string `json:"departureDate" validate:"required"`
		Adults              string `json:"adults" validate:"required"`
		ReturnDate          string `json:"returnDate"`
		MaxPrice            string `json:"maxPrice"`
		IncludedAirlines    string `json:"includedAirlineCodes"`
		ExcludedAirlines    string `json:"excludedAirlineCodes"`
		TravelClass         string `json:"travelClass" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	}

	return Tool{
		Name:        "get-flight-offers",
		Description: "Search flight offers between two IATA airport codes for a departure date",
		InputSchema: objectSchema(map[string]interface{}{
			"originIataCode":       stringProp("IATA code of the departure airport"),
			"destinationIataCode":  stringProp("IATA code of the arrival airport"),
			"departureDate":        stringProp("departure date, YYYY-MM-DD"),
			"adults":               stringProp("number of adult travelers"),
			"returnDate":           stringProp("optional return date, YYYY-MM-DD"),
			"maxPrice":             stringProp("optional maximum price per traveler"),
			"includedAirlineCodes": stringProp("optional comma-separated airline codes to include"),
			"excludedAirlineCodes": stringProp("optional comma-separated airline codes to exclude"),
			"travelClass":          stringProp("optional cabin class"),
		}, "originIataCode", "destinationIataCode", "departureDate", "adults"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			return client.FlightOffers(ctx, amadeus.FlightOffersQuery{
				OriginIataCode:      a.OriginIataCode,
				DestinationIataCode: a.DestinationIataCode,
				DepartureDate:       a.DepartureDate,
				Adults:              a.Adults,
				ReturnDate:          a.ReturnDate,
				MaxPrice:            a.MaxPrice,
				IncludedAirlines:    a.IncludedAirlines,
				ExcludedAirlines:    a.ExcludedAirlines,
				TravelClass:         a.TravelClass,
			})
		},
	}
}

func airportInfoTool(client *amadeus.Client) Tool {
	type args struct {
		IataCode string `json:"iataCode" validate:"required,len=3"`
	}

	return Tool{
		Name:        "get-airport-info",
		Description: "Look up reference data for an airport by IATA code",
		InputSchema: objectSchema(map[string]interface{}{
			"iataCode": stringProp("IATA code of the airport"),
		}, "iataCode"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			return client.AirportInfo(ctx, a.IataCode)
		},
	}
}

func hotelsNearPlaceTool(client *amadeus.Client, geocoder *nominatim.Client) Tool {
	type args struct {
		Place  string `json:"place" validate:"required"`
		Radius string `json:"radius"`
	}

	return Tool{
		Name:        "search-hotels-near-to-place",
		Description: "List hotels near a free-form place name, optionally within a radius in kilometers",
		InputSchema: objectSchema(map[string]interface{}{
			"place":  stringProp("free-form place name to search around"),
			"radius": stringProp("optional search radius in kilometers"),
		}, "place"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			loc, err := geocoder.Geocode(ctx, a.Place)
			if err != nil {
				return nil, err
			}
			return client.HotelsByGeocode(ctx, loc.Latitude, loc.Longitude, a.Radius)
		},
	}
}

func activitiesNearPlaceTool(client *amadeus.Client, geocoder *nominatim.Client) Tool {
	type args struct {
		Place  string `json:"place" validate:"required"`
		Radius string `json:"radius"`
	}

	return Tool{
		Name:        "search-activities-near-place",
		Description: "List tours and activities near a free-form place name",
		InputSchema: objectSchema(map[string]interface{}{
			"place":  stringProp("free-form place name to search around"),
			"radius": stringProp("optional search radius in meters"),
		}, "place"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			loc, err := geocoder.Geocode(ctx, a.Place)
			if err != nil {
				return nil, err
			}
			return client.ActivitiesByGeocode(ctx, loc.Latitude, loc.Longitude, a.Radius)
		},
	}
}

func findLatitudeLongitudeTool(geocoder *nominatim.Client) Tool {
	type args struct {
		Place string `json:"place" validate:"required"`
	}

	return Tool{
		Name:        "find-latitude-longitude",
		Description: "Resolve a free-form place name to latitude and longitude",
		InputSchema: objectSchema(map[string]interface{}{
			"place": stringProp("free-form place name to geocode"),
		}, "place"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			return geocoder.Geocode(ctx, a.Place)
		},
	}
}

func mostTraveledDestinationsTool(client *amadeus.Client) Tool {
	type args struct {
		CityIataCode string `json:"cityIataCode" validate:"required,len=3"`
		Period       string `json:"period" validate:"required"`
	}

	return Tool{
		Name:        "most-traveled-destinations",
		Description: "Report the most traveled destinations from an origin city for a YYYY-MM period",
		InputSchema: objectSchema(map[string]interface{}{
			"cityIataCode": stringProp("IATA code of the origin city"),
			"period":       stringProp("analytics period, YYYY-MM"),
		}, "cityIataCode", "period"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			return client.MostTraveledDestinations(ctx, a.CityIataCode, a.Period)
		},
	}
}

// chartSeries is one named data series of a chart
type chartSeries struct {
	Name string    `json:"name" validate:"required"`
	Data []float64 `json:"data" validate:"required,min=1"`
}

// renderChartOptionsTool validates a chart description and echoes it back as
// a structured options document the frontend can feed to its chart widget.
// Only declarative data crosses the boundary; no script is ever produced.
func renderChartOptionsTool() Tool {
	type args struct {
		Type   string        `json:"type" validate:"required,oneof=bar line pie"`
		Title  string        `json:"title" validate:"required,max=200"`
		Labels []string      `json:"labels" validate:"required,min=1"`
		Series []chartSeries `json:"series" validate:"required,min=1,dive"`
	}

	return Tool{
		Name:        "render-chart-options",
		Description: "Build a validated chart options document from labels and data series",
		InputSchema: objectSchema(map[string]interface{}{
			"type":   stringProp("chart type: bar, line, or pie"),
			"title":  stringProp("chart title"),
			"labels": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"series": map[string]interface{}{"type": "array", "description": "named data series"},
		}, "type", "title", "labels", "series"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			for _, s := range a.Series {
				if len(s.Data) != len(a.Labels) {
					return nil, apperrors.NewValidationError(
						"series data length must match the number of labels")
				}
			}
			return map[string]interface{}{
				"chartType": a.Type,
				"title":     a.Title,
				"labels":    a.Labels,
				"series":    a.Series,
			}, nil
		},
	}
}

// mapMarker is one labeled point on a map
type mapMarker struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Label     string  `json:"label" validate:"required,max=200"`
}

// renderMapOptionsTool validates a map description and echoes it back as a
// structured options document. Same contract as the chart tool: data only.
func renderMapOptionsTool() Tool {
	type args struct {
		CenterLatitude  float64     `json:"centerLatitude" validate:"latitude"`
		CenterLongitude float64     `json:"centerLongitude" validate:"longitude"`
		Zoom            int         `json:"zoom" validate:"required,min=1,max=19"`
		Markers         []mapMarker `json:"markers" validate:"required,min=1,dive"`
	}

	return Tool{
		Name:        "render-map-options",
		Description: "Build a validated map options document from a center, zoom level, and markers",
		InputSchema: objectSchema(map[string]interface{}{
			"centerLatitude":  map[string]interface{}{"type": "number"},
			"centerLongitude": map[string]interface{}{"type": "number"},
			"zoom":            map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 19},
			"markers":         map[string]interface{}{"type": "array", "description": "labeled coordinate markers"},
		}, "centerLatitude", "centerLongitude", "zoom", "markers"),
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var a args
			if err := decodeArgs(raw, &a); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"center": map[string]float64{
					"latitude":  a.CenterLatitude,
					"longitude": a.CenterLongitude,
				},
				"zoom":    a.Zoom,
				"markers": a.Markers,
			}, nil
		},
	}
}
