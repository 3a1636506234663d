package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tripchat/pkg/amadeus"
	"tripchat/pkg/common"
	"tripchat/pkg/nominatim"
)

// ToolHandler exposes the travel tool endpoints consumed by the reasoning
// pipeline. Provider payloads pass through verbatim apart from truncation.
type ToolHandler struct {
	amadeus   *amadeus.Client
	nominatim *nominatim.Client
	logger    *zap.Logger
}

// NewToolHandler creates a new ToolHandler
func NewToolHandler(amadeusClient *amadeus.Client, nominatimClient *nominatim.Client, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		amadeus:   amadeusClient,
		nominatim: nominatimClient,
		logger:    logger,
	}
}

// FlightOffers handles GET /tools/get-flight-offers
func (h *ToolHandler) FlightOffers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	missing := missingParams(q.Get, "originIataCode", "destinationIataCode", "departureDate", "adults")
	if len(missing) > 0 {
		common.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")))
		return
	}

	payload, err := h.amadeus.FlightOffers(r.Context(), amadeus.FlightOffersQuery{
		OriginIataCode:      q.Get("originIataCode"),
		DestinationIataCode: q.Get("destinationIataCode"),
		DepartureDate:       q.Get("departureDate"),
		Adults:              q.Get("adults"),
		ReturnDate:          q.Get("returnDate"),
		MaxPrice:            q.Get("maxPrice"),
		IncludedAirlines:    q.Get("includedAirlineCodes"),
		ExcludedAirlines:    q.Get("excludedAirlineCodes"),
		TravelClass:         q.Get("travelClass"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope(payload))
}

// AirportInfo handles GET /tools/get-airport-info
func (h *ToolHandler) AirportInfo(w http.ResponseWriter, r *http.Request) {
	iataCode := r.URL.Query().Get("iataCode")
	if iataCode == "" {
		common.RespondError(w, http.StatusBadRequest, "missing required parameters: iataCode")
		return
	}

	payload, err := h.amadeus.AirportInfo(r.Context(), iataCode)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope(payload))
}

// HotelsNearPlace handles GET /tools/search-hotels-near-to-place. The place
// name is geocoded first, then hotels are listed around the coordinate.
func (h *ToolHandler) HotelsNearPlace(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		common.RespondError(w, http.StatusBadRequest, "missing required parameters: place")
		return
	}

	loc, err := h.nominatim.Geocode(r.Context(), place)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	payload, err := h.amadeus.HotelsByGeocode(r.Context(), loc.Latitude, loc.Longitude, r.URL.Query().Get("radius"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope(payload))
}

// ActivitiesNearPlace handles GET /tools/search-activities-near-place
func (h *ToolHandler) ActivitiesNearPlace(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		common.RespondError(w, http.StatusBadRequest, "missing required parameters: place")
		return
	}

	loc, err := h.nominatim.Geocode(r.Context(), place)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	payload, err := h.amadeus.ActivitiesByGeocode(r.Context(), loc.Latitude, loc.Longitude, r.URL.Query().Get("radius"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope(payload))
}

// FindLatitudeLongitude handles GET /tools/find-latitude-longitude
func (h *ToolHandler) FindLatitudeLongitude(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		common.RespondError(w, http.StatusBadRequest, "missing required parameters: place")
		return
	}

	loc, err := h.nominatim.Geocode(r.Context(), place)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{
		"latitude":  loc.Latitude,
		"longitude": loc.Longitude,
	})
}

// MostTraveledDestinations handles GET /tools/most-traveled-destinations
func (h *ToolHandler) MostTraveledDestinations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	missing := missingParams(q.Get, "cityIataCode", "period")
	if len(missing) > 0 {
		common.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")))
		return
	}

	payload, err := h.amadeus.MostTraveledDestinations(r.Context(), q.Get("cityIataCode"), q.Get("period"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope(payload))
}

func missingParams(get func(string) string, names ...string) []string {
	var missing []string
	for _, name := range names {
		if get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
