package handler

import (
	"net/http"

	"github.com/templui/duoplan/internal/ctxkeys"
	"github.com/templui/duoplan/internal/service"
)

// TaskHandler receives the task subsystem's events for tasks linked to goals.
type TaskHandler struct {
	goalService *service.GoalService
}

func NewTaskHandler(goalService *service.GoalService) *TaskHandler {
	return &TaskHandler{
		goalService: goalService,
	}
}

type linkTaskRequest struct {
	GoalID string `json:"goal_id"`
}

// Completed counts a completed task toward its linked goal. Unlinked tasks get 204.
func (h *TaskHandler) Completed(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	taskID := r.PathValue("taskId")

	goal, err := h.goalService.OnTaskCompletedForTask(userID, taskID)
	if err != nil {
		handleServiceError(w, err, "failed to record task completion", "user_id", userID, "task_id", taskID)
		return
	}
	if goal == nil {
		// Unlinked task: nothing to count.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(goal))
}

// Deleted drops the task's link. Progress already counted is kept.
func (h *TaskHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	taskID := r.PathValue("taskId")

	err := h.goalService.DeleteTask(userID, taskID)
	if err != nil {
		handleServiceError(w, err, "failed to delete task link", "user_id", userID, "task_id", taskID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Link points the task at one of the acting user's goals.
func (h *TaskHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	taskID := r.PathValue("taskId")

	var req linkTaskRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.GoalID == "" {
		writeError(w, http.StatusBadRequest, "goal_id is required")
		return
	}

	err = h.goalService.LinkTask(userID, taskID, req.GoalID)
	if err != nil {
		handleServiceError(w, err, "failed to link task", "user_id", userID, "task_id", taskID, "goal_id", req.GoalID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID, "goal_id": req.GoalID})
}

// Unlink removes the task's goal link.
func (h *TaskHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	taskID := r.PathValue("taskId")

	err := h.goalService.UnlinkTask(userID, taskID)
	if err != nil {
		handleServiceError(w, err, "failed to unlink task", "user_id", userID, "task_id", taskID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LinkedGoal returns the goal the task counts toward.
func (h *TaskHandler) LinkedGoal(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	taskID := r.PathValue("taskId")

	goal, err := h.goalService.LinkedGoal(userID, taskID)
	if err != nil {
		handleServiceError(w, err, "failed to load linked goal", "user_id", userID, "task_id", taskID)
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "task is not linked to a goal")
		return
	}

	writeJSON(w, http.StatusOK, viewOf(goal))
}
