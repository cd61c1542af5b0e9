package routes

import (
	"net/http"

	"github.com/templui/duoplan/internal/app"
	"github.com/templui/duoplan/internal/handler"
	"github.com/templui/duoplan/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	task := handler.NewTaskHandler(app.GoalService)
	partner := handler.NewPartnerHandler(app.PartnerService, app.SyncService)
	export := handler.NewExportHandler(app.ExportService)
	week := handler.NewWeekHandler(app.Clock)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// ============================================================================
	// API (/api/*, bearer token required)
	// ============================================================================

	// Week
	mux.HandleFunc("GET /api/week", middleware.RequireAuth(week.Current))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/export", middleware.RequireAuth(export.Download))
	mux.HandleFunc("POST /api/goals/export", middleware.RequireAuth(export.Archive))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Show))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("PATCH /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("POST /api/goals/{id}/task-completed", middleware.RequireAuth(goal.TaskCompleted))
	mux.HandleFunc("POST /api/maintenance", middleware.RequireAuth(goal.Maintenance))

	// Task links
	mux.HandleFunc("POST /api/tasks/{taskId}/completed", middleware.RequireAuth(task.Completed))
	mux.HandleFunc("DELETE /api/tasks/{taskId}", middleware.RequireAuth(task.Deleted))
	mux.HandleFunc("GET /api/tasks/{taskId}/goal", middleware.RequireAuth(task.LinkedGoal))
	mux.HandleFunc("PUT /api/tasks/{taskId}/goal", middleware.RequireAuth(task.Link))
	mux.HandleFunc("DELETE /api/tasks/{taskId}/goal", middleware.RequireAuth(task.Unlink))

	// Partner cache (read-only)
	mux.HandleFunc("GET /api/partner/goals", middleware.RequireAuth(partner.Goals))

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	// Partner sync channel (signed with standard-webhooks, rate limited per IP)
	syncLimiter := middleware.RateLimit(app.Cfg.SyncRateLimit, app.Cfg.SyncRateWindow)
	mux.HandleFunc("POST /webhooks/partner-goals", syncLimiter(partner.Webhook))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.AuthMiddleware(app.AuthService),
	)
}
