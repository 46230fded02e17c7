package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/query"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	games  *service.GameService
	stats  *service.StatsService
	checks map[string]HealthChecker
}

// NewHandler creates a new handler. checks are probed by /health.
func NewHandler(games *service.GameService, stats *service.StatsService, checks map[string]HealthChecker) *Handler {
	return &Handler{
		games:  games,
		stats:  stats,
		checks: checks,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":       state,
		"service":      serviceName,
		"dependencies": deps,
	})
}

// ListGames returns every game, or one page when paging params are present
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	state, paged := query.ParseParams(r.URL.Query())

	if !paged {
		games, err := h.games.ListGames(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
			return
		}
		games = query.Filter(games, state)
		if r.URL.Query().Get("sort") != "" {
			games = query.Sort(games, state.SortField, state.SortDir)
		}
		respondJSON(w, http.StatusOK, listResponse{
			Items: game.WireAll(games),
			Total: len(games),
		})
		return
	}

	page, err := h.games.ListPage(r.Context(), state)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{
		Items:      game.WireAll(page.Items),
		Total:      page.TotalCount,
		Page:       page.Page,
		PageSize:   state.Normalized().PageSize,
		TotalPages: page.TotalPages,
	})
}

type listResponse struct {
	Items      []game.Wire `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page,omitempty"`
	PageSize   int         `json:"page_size,omitempty"`
	TotalPages int         `json:"totalPages,omitempty"`
}

// GetGame returns a single game
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["gameID"]

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Failed to fetch game", err)
		return
	}
	respondJSON(w, http.StatusOK, game.ToWire(g))
}

// CreateGame stores a new game from a body in any of the accepted shapes
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGame(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	g.ID = ""

	created, err := h.games.CreateGame(r.Context(), g)
	if err != nil {
		respondServiceError(w, "Failed to create game", err)
		return
	}
	respondJSON(w, http.StatusCreated, game.ToWire(created))
}

// UpdateGame replaces a game
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	g, err := decodeGame(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	g.ID = mux.Vars(r)["gameID"]

	updated, err := h.games.UpdateGame(r.Context(), g)
	if err != nil {
		respondServiceError(w, "Failed to update game", err)
		return
	}
	respondJSON(w, http.StatusOK, game.ToWire(updated))
}

// DeleteGame removes a game
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["gameID"]

	if err := h.games.DeleteGame(r.Context(), id); err != nil {
		respondServiceError(w, "Failed to delete game", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// GetStats returns the aggregate over every game. The averages and totals
// are sent under each name clients have been seen to read.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Summary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats", err)
		return
	}

	payload := map[string]interface{}{
		"totalGames": s.TotalGames,
		"total":      s.TotalGames,
		"wins":       s.Wins,
		"losses":     s.Losses,
		"avgPF":      s.AvgPointsFor,
		"avg_pf":     s.AvgPointsFor,
		"highPFGame": nil,
	}
	if s.HighestScoringGame != nil {
		payload["highPFGame"] = game.ToWire(*s.HighestScoringGame)
	}
	respondJSON(w, http.StatusOK, payload)
}

// decodeGame reads a raw record and normalizes it. Any alias variant the
// client normalizer accepts is accepted here too.
func decodeGame(r *http.Request) (game.Game, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return game.Game{}, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return game.Game{}, err
	}
	if raw == nil {
		return game.Game{}, errors.New("body must be a JSON object")
	}
	return game.Normalize(raw), nil
}

// respondServiceError maps service errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, message string, err error) {
	var fe game.FieldErrors
	switch {
	case errors.As(err, &fe):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"status": http.StatusBadRequest,
			"fields": fe,
		})
	case errors.Is(err, repository.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found", err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
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
