package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/ingest/draftkings"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/trend"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db                *store.Database
	playersService    *service.PlayersService
	trendsService     *service.TrendsService
	summaryService    *service.SummaryService
	performersService *service.PerformersService
	mappingsService   *service.MappingsService
	refreshService    *service.RefreshService
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, redisCache *cache.RedisCache, pub *publisher.RedisStreamPublisher, refreshService *service.RefreshService) *Handler {
	return &Handler{
		db:                db,
		playersService:    service.NewPlayersService(db, redisCache),
		trendsService:     service.NewTrendsService(db, redisCache),
		summaryService:    service.NewSummaryService(db),
		performersService: service.NewPerformersService(db),
		mappingsService:   service.NewMappingsService(db, pub),
		refreshService:    refreshService,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "gridiron",
		"version": "1.0.0",
	})
}

// GetPlayers returns reconciled player-weeks with per-request scoring
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	season, err := intQueryParam(r, "season", currentSeason())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	week, err := intQueryParam(r, "week", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid week", err)
		return
	}

	mode, err := scoring.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scoring mode (use full-ppr or half-ppr)", err)
		return
	}

	position := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("position")))
	if position != "" && !store.IsFantasyPosition(position) {
		respondError(w, http.StatusBadRequest, "Invalid position (use QB, RB, WR, or TE)", nil)
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			offset = o
		}
	}

	players, err := h.playersService.ListPlayerWeeks(r.Context(), service.PlayersQuery{
		Season:   season,
		Week:     week,
		Team:     r.URL.Query().Get("team"),
		Position: position,
		Mode:     mode,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players":      players,
		"count":        len(players),
		"season":       season,
		"scoring_mode": string(mode),
	})
}

// GetPlayerTrends returns per-player weekly series for one team
func (h *Handler) GetPlayerTrends(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'team'", nil)
		return
	}

	season, err := intQueryParam(r, "season", currentSeason())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	startWeek, err := intQueryParam(r, "start_week", 1)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start_week", err)
		return
	}

	endWeek, err := intQueryParam(r, "end_week", 18)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end_week", err)
		return
	}

	if startWeek < 1 || endWeek > store.MaxWeek {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Week out of range (1-%d)", store.MaxWeek), nil)
		return
	}

	mode, err := scoring.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scoring mode (use full-ppr or half-ppr)", err)
		return
	}

	trends, err := h.trendsService.TeamTrends(r.Context(), service.TrendsQuery{
		Season:    season,
		Team:      team,
		StartWeek: startWeek,
		EndWeek:   endWeek,
		Mode:      mode,
	})
	if err != nil {
		if errors.Is(err, trend.ErrInvalidRange) {
			respondError(w, http.StatusBadRequest, "Invalid week range", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to build trends", err)
		return
	}

	respondJSON(w, http.StatusOK, trends)
}

// GetStatsSummary returns table counts and feed coverage
func (h *Handler) GetStatsSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := h.summaryService.Overview(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build summary", err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// GetTopPerformers returns week rankings, or season totals when no week is given
func (h *Handler) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	season, err := intQueryParam(r, "season", currentSeason())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	week, err := intQueryParam(r, "week", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid week", err)
		return
	}

	mode, err := scoring.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scoring mode (use full-ppr or half-ppr)", err)
		return
	}

	position := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("position")))
	if position != "" && !store.IsFantasyPosition(position) {
		respondError(w, http.StatusBadRequest, "Invalid position (use QB, RB, WR, or TE)", nil)
		return
	}

	limit := 25
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if week > 0 {
		performers, err := h.performersService.TopWeek(r.Context(), season, week, position, mode, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch top performers", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"performers": performers,
			"count":      len(performers),
			"scope":      "week",
		})
		return
	}

	performers, err := h.performersService.TopSeason(r.Context(), season, position, mode, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch top performers", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"performers": performers,
		"count":      len(performers),
		"scope":      "season",
	})
}

// GetSalaries returns raw DraftKings salary rows
func (h *Handler) GetSalaries(w http.ResponseWriter, r *http.Request) {
	season, err := intQueryParam(r, "season", currentSeason())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	week, err := intQueryParam(r, "week", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid week", err)
		return
	}

	position := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("position")))
	if position != "" && !store.IsFantasyPosition(position) {
		respondError(w, http.StatusBadRequest, "Invalid position (use QB, RB, WR, or TE)", nil)
		return
	}
	if position != "" && week == 0 {
		respondError(w, http.StatusBadRequest, "Position filter requires a week", nil)
		return
	}

	salariesRepo := repository.NewSalariesRepository(h.db)

	var entries []*store.SalaryEntry
	switch {
	case position != "":
		entries, err = salariesRepo.ListByPosition(r.Context(), season, week, position)
	case week > 0:
		entries, err = salariesRepo.ListByWeek(r.Context(), season, week)
	default:
		entries, err = salariesRepo.ListBySeason(r.Context(), season)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch salaries", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"salaries": entries,
		"count":    len(entries),
	})
}

// GetSnapCounts returns raw snap-count rows
func (h *Handler) GetSnapCounts(w http.ResponseWriter, r *http.Request) {
	season, err := intQueryParam(r, "season", currentSeason())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	week, err := intQueryParam(r, "week", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid week", err)
		return
	}

	snapsRepo := repository.NewSnapsRepository(h.db)

	var snaps []*store.SnapCount
	if week > 0 {
		snaps, err = snapsRepo.ListByWeek(r.Context(), season, week)
	} else {
		snaps, err = snapsRepo.ListBySeason(r.Context(), season)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch snap counts", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snap_counts": snaps,
		"count":       len(snaps),
	})
}

// GetMappings returns the name-mapping cache
func (h *Handler) GetMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappingsService.List(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch mappings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": mappings,
		"count":    len(mappings),
	})
}

type mappingRequest struct {
	RawName       string `json:"raw_name"`
	Team          string `json:"team"`
	CanonicalName string `json:"canonical_name"`
	Position      string `json:"position"`
}

// PutMapping records a manual name mapping. It takes effect on the next
// reconcile pass; stored canonical rows are not rewritten here.
func (h *Handler) PutMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	mapping, err := h.mappingsService.Record(r.Context(), req.RawName, req.Team, req.CanonicalName, req.Position)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to record mapping", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mapping": mapping,
	})
}

// DeleteMapping removes one mapping by raw name and team
func (h *Handler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	rawName := r.URL.Query().Get("raw_name")
	team := r.URL.Query().Get("team")
	if rawName == "" || team == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameters 'raw_name' and 'team'", nil)
		return
	}

	if err := h.mappingsService.Remove(r.Context(), rawName, team); err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			respondError(w, http.StatusNotFound, "Mapping not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to remove mapping", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Mapping removed",
	})
}

type refreshRequest struct {
	Seasons []int `json:"seasons"`
}

// TriggerRefresh runs the full pipeline for the requested seasons
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	seasons := req.Seasons
	if len(seasons) == 0 {
		season, err := intQueryParam(r, "season", currentSeason())
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid season", err)
			return
		}
		seasons = []int{season}
	}

	for _, season := range seasons {
		if season < store.FirstSeason || season > currentSeason()+1 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Season %d out of range", season), nil)
			return
		}
	}

	result, err := h.refreshService.Refresh(r.Context(), seasons)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Refresh failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type salaryIngestRequest struct {
	ContestID string `json:"contest_id"`
	Season    int    `json:"season"`
	Week      int    `json:"week"`
}

// IngestSalaries scrapes one DraftKings draft screen, stores its salary
// rows, and rebuilds the season so they join immediately.
func (h *Handler) IngestSalaries(w http.ResponseWriter, r *http.Request) {
	var req salaryIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.ContestID == "" {
		respondError(w, http.StatusBadRequest, "Missing contest_id", nil)
		return
	}
	if req.Season == 0 {
		req.Season = currentSeason()
	}
	if req.Week < 1 || req.Week > store.MaxWeek {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Week out of range (1-%d)", store.MaxWeek), nil)
		return
	}

	ingester, err := draftkings.NewIngester(h.db)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to start DraftKings ingester", err)
		return
	}
	defer ingester.Close()

	imported, err := ingester.IngestDraftScreen(r.Context(), req.ContestID, req.Season, req.Week)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to ingest draft screen", err)
		return
	}

	if _, err := h.refreshService.Rebuild(r.Context(), []int{req.Season}); err != nil {
		respondError(w, http.StatusInternalServerError, "Salaries stored but season rebuild failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported,
		"season":   req.Season,
		"week":     req.Week,
	})
}

func currentSeason() int {
	return store.CurrentSeason(time.Now())
}

// intQueryParam parses an integer query parameter, using the fallback when
// absent. A present but malformed value is an error.
func intQueryParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
