package handler

import (
	"net/http"

	"github.com/templui/duoplan/internal/ctxkeys"
	"github.com/templui/duoplan/internal/lifecycle"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// goalView is a goal with its derived target and progress fraction.
type goalView struct {
	*model.Goal
	Target   int     `json:"target"`
	Fraction float64 `json:"fraction"`
}

func viewOf(g *model.Goal) *goalView {
	target := lifecycle.Target(g.GoalType)
	return &goalView{
		Goal:     g,
		Target:   target,
		Fraction: lifecycle.Fraction(g.CurrentProgress, target),
	}
}

type createGoalRequest struct {
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Type          string `json:"type"`
	Target        *int   `json:"target"`
	DurationWeeks *int   `json:"duration_weeks"`
}

// goalType builds the variant for kind. A target on a recurring task is kept so
// validation can reject it.
func goalType(kind string, target *int) model.GoalType {
	t := model.GoalType{Kind: model.GoalKind(kind)}
	switch t.Kind {
	case model.GoalKindTargetAmount:
		t.TargetTotal = target
	default:
		t.TargetPerWeek = target
	}
	return t
}

type updateGoalRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// List returns the acting user's goals with the current week and whether another
// goal can be created.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	sortBy := r.URL.Query().Get("sort")
	status := r.URL.Query().Get("status")

	goals, err := h.goalService.Goals(userID, sortBy)
	if err != nil {
		handleServiceError(w, err, "failed to load goals", "user_id", userID)
		return
	}

	canCreate, err := h.goalService.CanCreateGoal(userID)
	if err != nil {
		handleServiceError(w, err, "failed to check goal limit", "user_id", userID)
		return
	}

	views := make([]*goalView, 0, len(goals))
	for _, g := range goals {
		if status != "" && g.Status != status {
			continue
		}
		views = append(views, viewOf(g))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week_id":    h.goalService.CurrentWeekID(),
		"can_create": canCreate,
		"goals":      views,
	})
}

// Show returns one goal with its weekly history.
func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	goal, history, err := h.goalService.GoalWithHistory(userID, goalID)
	if err != nil {
		handleServiceError(w, err, "failed to load goal", "user_id", userID, "goal_id", goalID)
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	if history == nil {
		history = []*model.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":    viewOf(goal),
		"history": history,
	})
}

// Create adds a goal for the acting user.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Create(userID, service.CreateGoalInput{
		Name:          req.Name,
		Icon:          req.Icon,
		Type:          goalType(req.Type, req.Target),
		DurationWeeks: req.DurationWeeks,
	})
	if err != nil {
		handleServiceError(w, err, "failed to create goal", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(goal))
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req updateGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Update(userID, goalID, req.Name, req.Icon)
	if err != nil {
		handleServiceError(w, err, "failed to update goal", "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := h.goalService.Delete(userID, goalID)
	if err != nil {
		handleServiceError(w, err, "failed to delete goal", "user_id", userID, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TaskCompleted counts one completion toward the goal.
func (h *GoalHandler) TaskCompleted(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.OnTaskCompleted(userID, goalID)
	if err != nil {
		handleServiceError(w, err, "failed to record progress", "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(goal))
}

// Maintenance runs the weekly reset and expiration pass for the acting user.
func (h *GoalHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	report, err := h.goalService.RunWeeklyMaintenanceNow(userID)
	if err != nil {
		handleServiceError(w, err, "failed to run weekly maintenance", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
