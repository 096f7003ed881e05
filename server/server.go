// Package server exposes the stored mealplans over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crwntec/mensaLog/intelligence"
	"github.com/crwntec/mensaLog/store"
)

// RefreshStatus reports the archive refresh loop for the health endpoint.
type RefreshStatus interface {
	Interval() time.Duration
	NextRun() time.Time
}

// Server routes read-only queries against the record store and the
// semantic search index.
type Server struct {
	store     *store.Store
	resolver  *intelligence.Resolver
	refresher RefreshStatus
	logger    *log.Logger
	started   time.Time
}

// New wires the HTTP layer. refresher and logger may be nil.
func New(st *store.Store, resolver *intelligence.Resolver, refresher RefreshStatus, logger *log.Logger) *Server {
	return &Server{store: st, resolver: resolver, refresher: refresher, logger: logger, started: time.Now()}
}

// Router builds the chi mux with all public routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.logger != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	}

	r.Get("/mealplan", s.handleMealplan)
	r.Get("/day", s.handleDay)
	r.Get("/meal", s.handleMeal)
	r.Get("/meals/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Get("/health/simple", s.handleHealthSimple)
	return r
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// handleMealplan serves GET /mealplan?year=YYYY&week=WW.
func (s *Server) handleMealplan(w http.ResponseWriter, r *http.Request) {
	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	week, errWeek := strconv.Atoi(r.URL.Query().Get("week"))
	if errYear != nil || errWeek != nil || week < 1 || week > 53 {
		writeError(w, http.StatusBadRequest, "year and week query parameters are required")
		return
	}
	p, err := s.store.FetchMealplan(year, week)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "mealplan not found")
		return
	}
	if err != nil {
		s.logf("mealplan %d/%d: %v", week, year, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, p)
}

// handleDay serves GET /day?date=YYYY-MM-DD.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	day, err := s.store.FetchDay(date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no schedule for that date")
		return
	}
	if err != nil {
		s.logf("day %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, day)
}

// handleMeal serves GET /meal?id=N.
func (s *Server) handleMeal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	meal, err := s.store.FetchMeal(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		s.logf("meal %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, meal)
}

type searchHit struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float32 `json:"score"`
}

// handleSearch serves GET /meals/search?q=... using the embedding index.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	matches, err := s.resolver.Rank(query, intelligence.SearchTopK, intelligence.SearchMinScore)
	if err != nil {
		s.logf("search %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	hits := make([]searchHit, 0, len(matches))
	for _, m := range matches {
		name, err := s.store.MealName(m.ID)
		if err != nil {
			continue
		}
		hits = append(hits, searchHit{ID: m.ID, Name: name, Score: m.Score})
	}
	writeData(w, hits)
}

type healthReport struct {
	Status          string      `json:"status"`
	UptimeSeconds   float64     `json:"uptime_seconds"`
	Database        store.Stats `json:"database"`
	RefreshInterval string      `json:"refresh_interval,omitempty"`
	NextRefresh     string      `json:"next_refresh,omitempty"`
}

// handleHealth serves GET /health with store stats and refresh status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.logf("health: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	report := healthReport{
		Status:        "degraded",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Database:      stats,
	}
	if stats.Healthy {
		report.Status = "ok"
	}
	if s.refresher != nil {
		report.RefreshInterval = s.refresher.Interval().String()
		report.NextRefresh = s.refresher.NextRun().Format(time.RFC3339)
	}
	writeData(w, report)
}

// handleHealthSimple serves GET /health/simple as a liveness probe.
func (s *Server) handleHealthSimple(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
