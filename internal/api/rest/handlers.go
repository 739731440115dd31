package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fortuna/prospect/internal/profile"
	"github.com/fortuna/prospect/internal/scheduler"
	"github.com/fortuna/prospect/internal/scoring"
	"github.com/fortuna/prospect/internal/service"
	"github.com/fortuna/prospect/internal/store"
)

const (
	serviceName    = "prospect"
	serviceVersion = "1.0.0"

	maxBodyBytes = 1 << 20
)

var errMissingProfile = errors.New("request body must contain a profile")

// RosterScheduler reports on and triggers roster refreshes
type RosterScheduler interface {
	GetStatus() scheduler.Status
	TriggerRefresh(ctx context.Context) scheduler.Status
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	prospects *service.ProspectService
	scheduler RosterScheduler
	redis     Pinger
	metrics   http.Handler
}

// NewHandler creates a new handler. redis and metricsHandler may be nil.
func NewHandler(prospects *service.ProspectService, sched RosterScheduler, redis Pinger, metricsHandler http.Handler) *Handler {
	return &Handler{
		prospects: prospects,
		scheduler: sched,
		redis:     redis,
		metrics:   metricsHandler,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	}
	status := http.StatusOK

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.HealthCheck(ctx); err != nil {
			resp["status"] = "degraded"
			resp["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp["redis"] = "ok"
		}
	}

	respondJSON(w, status, resp)
}

// GetLevels returns the competition levels and sortable statistics
func (h *Handler) GetLevels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, service.GetCatalogue())
}

// GetRosterStatus returns roster counts, load errors and refresh timing
func (h *Handler) GetRosterStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetStatus())
}

// RefreshRosters forces a reload of both rosters from upstream
func (h *Handler) RefreshRosters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.TriggerRefresh(r.Context()))
}

// ValidateProfile parses a profile form and returns the typed record
func (h *Handler) ValidateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := readProfile(w, r, true)
	if err != nil {
		respondRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"profile": user})
}

// GetProbability scores the posted profile. An empty body yields a null estimate.
func (h *Handler) GetProbability(w http.ResponseWriter, r *http.Request) {
	user, err := readProfile(w, r, false)
	if err != nil {
		respondRequestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.prospects.Probability(r.Context(), user))
}

// GetComparisons returns the league players most similar to the posted profile
func (h *Handler) GetComparisons(w http.ResponseWriter, r *http.Request) {
	league, err := leagueParam(r)
	if err != nil {
		respondRequestError(w, err)
		return
	}

	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		top, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid top (use a whole number)", err)
			return
		}
	}

	user, err := readProfile(w, r, true)
	if err != nil {
		respondRequestError(w, err)
		return
	}

	result, err := h.prospects.Compare(r.Context(), user, league, top)
	if err != nil {
		respondRequestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetRankings returns the sorted league table. A POST body may carry the
// user's profile so they appear in the table.
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	league, err := leagueParam(r)
	if err != nil {
		respondRequestError(w, err)
		return
	}

	q := service.RankingsQuery{
		League: league,
		Search: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		q.SortBy, err = scoring.ParseStatistic(raw)
		if err != nil {
			respondRequestError(w, err)
			return
		}
	}

	if r.Method == http.MethodPost {
		q.User, err = readProfile(w, r, false)
		if err != nil {
			respondRequestError(w, err)
			return
		}
	}

	view, err := h.prospects.Rankings(r.Context(), q)
	if err != nil {
		respondRequestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// leagueParam reads ?league=, defaulting to NBA
func leagueParam(r *http.Request) (store.League, error) {
	raw := r.URL.Query().Get("league")
	if raw == "" {
		return store.LeagueNBA, nil
	}
	return store.ParseLeague(raw)
}

// readProfile decodes and validates a profile body. An empty body is an
// error only when required.
func readProfile(w http.ResponseWriter, r *http.Request, required bool) (*store.PlayerRecord, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		if required {
			return nil, errMissingProfile
		}
		return nil, nil
	}
	return profile.Decode(body)
}

// respondRequestError maps domain errors onto HTTP statuses
func respondRequestError(w http.ResponseWriter, err error) {
	var verr *profile.ValidationError
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Invalid profile",
			"status":  http.StatusUnprocessableEntity,
			"details": verr.Error(),
			"fields":  verr.Fields,
		})
	case errors.As(err, &maxErr):
		respondError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
	case errors.Is(err, store.ErrUnknownLeague):
		respondError(w, http.StatusBadRequest, "Unknown league (use nba or ncaa)", err)
	case errors.Is(err, scoring.ErrUnknownStatistic):
		respondError(w, http.StatusBadRequest, "Unknown sort statistic", err)
	case errors.Is(err, service.ErrNoRosters):
		respondError(w, http.StatusServiceUnavailable, "Rosters are not available yet", err)
	case errors.Is(err, errMissingProfile), errors.As(err, &syntaxErr):
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
	default:
		respondError(w, http.StatusBadRequest, "Invalid request", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
