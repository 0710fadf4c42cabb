package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/archive"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

type ReportSource func(ctx context.Context) (models.RankingReport, error)

type SnapshotSource func(ctx context.Context, day string) (*archive.Snapshot, error)

type RankingHandler struct {
	report   ReportSource
	snapshot SnapshotSource
}

// NewRankingHandler serves live rankings from report. snapshot may be nil
// when no archive is configured.
func NewRankingHandler(report ReportSource, snapshot SnapshotSource) *RankingHandler {
	return &RankingHandler{report: report, snapshot: snapshot}
}

func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rankings", h.HandleTotal)
	r.Get("/rankings/{problem}", h.HandleProblem)
	if h.snapshot != nil {
		r.Get("/archive/{day}", h.HandleArchive)
	}
}

func (h *RankingHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		http.Error(w, "Invalid top parameter", http.StatusBadRequest)
		return
	}

	report, err := h.report(r.Context())
	if err != nil {
		logger.Error.Printf("Failed to build rankings: %v", err)
		http.Error(w, "Failed to build rankings", http.StatusInternalServerError)
		return
	}

	rows := report.Total
	if top > 0 && top < len(rows) {
		rows = rows[:top]
	}
	writeJSON(w, map[string]any{
		"day":      report.Day,
		"problems": report.Problems,
		"total":    rows,
	})
}

func (h *RankingHandler) HandleProblem(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problem")

	report, err := h.report(r.Context())
	if err != nil {
		logger.Error.Printf("Failed to build rankings: %v", err)
		http.Error(w, "Failed to build rankings", http.StatusInternalServerError)
		return
	}

	ranking, ok := report.Problem(problemID)
	if !ok {
		http.Error(w, "Unknown problem", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"day":     report.Day,
		"problem": ranking.ProblemID,
		"rows":    ranking.Rows,
	})
}

func (h *RankingHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")

	s, err := h.snapshot(r.Context(), day)
	if errors.Is(err, archive.ErrNoSnapshot) {
		http.Error(w, "No snapshot for "+day, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to load snapshot %s: %v", day, err)
		http.Error(w, "Failed to load snapshot", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.Report)
}

func parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	top, err := strconv.Atoi(raw)
	if err != nil || top < 0 {
		return 0, errors.New("top must be a non-negative integer")
	}
	return top, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}
