package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pokedexapi/pkg/pokedex"
)

// retryAfterSeconds is sent with 503 responses while a refresh run holds
// the coordinator slot.
const retryAfterSeconds = "30"

type handler struct {
	svc    *pokedex.Service
	logger zerolog.Logger
}

func newHandler(svc *pokedex.Service) *handler {
	if svc == nil {
		panic("api: service is required")
	}

	return &handler{
		svc:    svc,
		logger: log.With().Str("component", "api").Logger(),
	}
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	storeStatus := "connected"
	if !h.svc.StoreHealthy(r.Context()) {
		storeStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Welcome to the Pokedex API!",
		"store_status": storeStatus,
		"refreshing":   h.svc.Refreshing(),
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (h *handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.GetSummaries(r.Context(), forceRefresh(r))
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) getPokemon(w http.ResponseWriter, r *http.Request) {
	ident := chi.URLParam(r, "ident")

	detail, err := h.svc.GetDetail(r.Context(), ident, forceRefresh(r))
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) listGenerations(w http.ResponseWriter, r *http.Request) {
	generations, err := h.svc.GetGenerations(r.Context(), forceRefresh(r))
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generations)
}

func (h *handler) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.GetTypes(r.Context(), forceRefresh(r))
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	artifact := chi.URLParam(r, "artifact")

	result, err := h.svc.Refresh(r.Context(), artifact)
	if err != nil {
		h.writeRefreshError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeReadError maps service errors for the data read endpoints. A refresh
// conflict is retryable here, so it maps to 503 rather than 409.
func (h *handler) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pokedex.ErrNotFound):
		writeError(w, http.StatusNotFound, "pokemon not found")
	case errors.Is(err, pokedex.ErrRefreshConflict):
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, "refresh in progress")
	case errors.Is(err, pokedex.ErrBuildFailed):
		h.logError(r, err)
		writeError(w, http.StatusBadGateway, "aggregation failed")
	case errors.Is(err, pokedex.ErrUpstream):
		h.logError(r, err)
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
	default:
		h.logError(r, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeRefreshError maps service errors for the admin refresh endpoint.
// Unknown artifact, conflict and build failure stay distinguishable.
func (h *handler) writeRefreshError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pokedex.ErrUnknownArtifact):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pokedex.ErrRefreshConflict):
		writeError(w, http.StatusConflict, "refresh already in progress")
	default:
		h.logError(r, err)
		writeError(w, http.StatusBadGateway, "refresh failed")
	}
}

func (h *handler) logError(r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Msg("Request failed")
}

// forceRefresh reports whether the request asked to bypass the cache.
func forceRefresh(r *http.Request) bool {
	force, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && force
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
