package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stepbookstep/server/internal/service"
)

type StatisticsHandler struct {
	statisticsService *service.StatisticsService
}

func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
	}
}

// yearParam reads ?year=, returning 0 (current year) when absent.
func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		return 0, fmt.Errorf("%w: %q", service.ErrInvalidYear, raw)
	}
	return year, nil
}

func (h *StatisticsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	year, err := yearParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	stats, err := h.statisticsService.Statistics(ctx, currentUser(r), year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", stats)
}

func (h *StatisticsHandler) MonthlyGraph(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	year, err := yearParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	graph, err := h.statisticsService.MonthlyGraph(ctx, currentUser(r), year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", graph)
}

func (h *StatisticsHandler) CategoryPreference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	preference, err := h.statisticsService.CategoryPreference(ctx, currentUser(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "ok", preference)
}
