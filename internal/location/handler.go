package location

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/httputil"
	"github.com/abbasiconnect/api/internal/logging"
)

type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Cities godoc
// @Summary Suggest city names
// @Description Returns city names matching a prefix, for onboarding autocomplete.
// @Tags location
// @Produce json
// @Param q query string true "City name prefix (min 2 chars)"
// @Param limit query int false "Max results"
// @Success 200 {object} map[string][]string
// @Router /location/cities [get]
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	cities, err := h.service.CitySuggestions(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to load city suggestions", "error", err, "query", query)
		httputil.RespondErrorWithCode(w, "Failed to load cities", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if cities == nil {
		cities = []string{}
	}

	httputil.RespondJSON(w, map[string][]string{"cities": cities}, http.StatusOK)
}

// Pincodes godoc
// @Summary List pincodes for a city
// @Tags location
// @Produce json
// @Param city query string true "City name"
// @Success 200 {object} map[string][]PincodeInfo
// @Router /location/pincodes [get]
func (h *Handler) Pincodes(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		httputil.RespondErrorWithCode(w, "city query parameter is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	pincodes, err := h.service.PincodesForCity(r.Context(), city)
	if err != nil {
		h.logger.Error("failed to load pincodes", "error", err, "city", city)
		httputil.RespondErrorWithCode(w, "Failed to load pincodes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if pincodes == nil {
		pincodes = []PincodeInfo{}
	}

	httputil.RespondJSON(w, map[string][]PincodeInfo{"pincodes": pincodes}, http.StatusOK)
}

// NearbyUsers godoc
// @Summary Find verified members near a pincode
// @Tags location
// @Produce json
// @Param pincode query string true "Center pincode"
// @Param radius_km query number false "Search radius in km"
// @Param limit query int false "Max results"
// @Success 200 {object} map[string][]NearbyUser
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /location/nearby/users [get]
func (h *Handler) NearbyUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authentication required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	pincode := r.URL.Query().Get("pincode")
	radiusKm, _ := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	users, err := h.service.NearbyUsers(r.Context(), userID, pincode, radiusKm, limit)
	if err != nil {
		h.respondLookupError(w, err, pincode)
		return
	}
	if users == nil {
		users = []NearbyUser{}
	}

	httputil.RespondJSON(w, map[string][]NearbyUser{"users": users}, http.StatusOK)
}

// NearbyEvents godoc
// @Summary Find upcoming events near a pincode
// @Tags location
// @Produce json
// @Param pincode query string true "Center pincode"
// @Param radius_km query number false "Search radius in km"
// @Param limit query int false "Max results"
// @Success 200 {object} map[string][]NearbyEvent
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /location/nearby/events [get]
func (h *Handler) NearbyEvents(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	radiusKm, _ := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.service.NearbyEvents(r.Context(), pincode, radiusKm, limit)
	if err != nil {
		h.respondLookupError(w, err, pincode)
		return
	}
	if events == nil {
		events = []NearbyEvent{}
	}

	httputil.RespondJSON(w, map[string][]NearbyEvent{"events": events}, http.StatusOK)
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, pincode string) {
	switch {
	case errors.Is(err, ErrInvalidPincode):
		httputil.RespondErrorWithCode(w, "Pincode must be 6 digits", httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, ErrPincodeNotFound):
		httputil.RespondErrorWithCode(w, "Pincode not found", httputil.CodeNotFound, http.StatusNotFound)
	default:
		h.logger.Error("nearby lookup failed", "error", err, "pincode", pincode)
		httputil.RespondErrorWithCode(w, "Lookup failed", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
