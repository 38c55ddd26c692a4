package routes

import (
	"net/http"

	"github.com/stepbookstep/server/internal/app"
	"github.com/stepbookstep/server/internal/handler"
	"github.com/stepbookstep/server/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	readingLog := handler.NewReadingLogHandler(app.ReadingLogService)
	statistics := handler.NewStatisticsHandler(app.StatisticsService)
	export := handler.NewExportHandler(app.ExportService)

	writeLimit := middleware.RateLimitWrites(app.Cfg.RateLimitWrites, app.Cfg.RateLimitWindow)
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(writeLimit(h))
	}
	read := middleware.RequireAuth

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Check)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Goals
	mux.HandleFunc("PATCH /api/v1/books/{bookId}/goals", write(goal.Upsert))
	mux.HandleFunc("GET /api/v1/books/{bookId}/goals", read(goal.Get))
	mux.HandleFunc("GET /api/v1/routines", read(goal.Routines))

	// Reading logs
	mux.HandleFunc("POST /api/v1/books/{bookId}/reading-logs", write(readingLog.Create))
	mux.HandleFunc("GET /api/v1/books/{bookId}/reading-detail", read(readingLog.Detail))

	// Statistics
	mux.HandleFunc("GET /api/v1/statistics", read(statistics.Statistics))
	mux.HandleFunc("GET /api/v1/statistics/monthly-graph", read(statistics.MonthlyGraph))
	mux.HandleFunc("GET /api/v1/statistics/category-preference", read(statistics.CategoryPreference))

	// Export
	mux.HandleFunc("GET /api/v1/export", read(export.Download))
	mux.HandleFunc("POST /api/v1/export/archive", write(export.Archive))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.Authenticate(app.AuthService),
	)
}
