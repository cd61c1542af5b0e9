package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/duoplan/internal/app"
	"github.com/templui/duoplan/internal/config"
	"github.com/templui/duoplan/internal/model"
	"github.com/templui/duoplan/internal/testutil"
)

const webhookSecret = "partner-sync-test-secret"

type api struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "development",
		JWTSecret:         "test-secret",
		SyncWebhookSecret: webhookSecret,
		SyncRateLimit:     100,
		SyncRateWindow:    time.Minute,
		S3PresignExpiry:   time.Hour,
	}
	clock := &testutil.FixedClock{Day: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)}
	a := app.NewWithDB(cfg, testutil.NewDB(t), nil, clock)

	return &api{t: t, app: a, handler: SetupRoutes(a)}
}

func (a *api) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := a.app.AuthService.GenerateJWT(userID, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type goalBody struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	CurrentProgress int     `json:"current_progress"`
	CurrentWeekID   string  `json:"current_week_id"`
	Target          int     `json:"target"`
	Fraction        float64 `json:"fraction"`
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_GoalLifecycle(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
		"name": "Save", "icon": "💰", "type": "target_amount", "target": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[goalBody](t, rec)
	assert.Equal(t, "target_amount", created.Type)
	assert.Equal(t, 2, created.Target)
	assert.Equal(t, "2026-W01", created.CurrentWeekID)

	rec = a.do(http.MethodPost, "/api/goals/"+created.ID+"/task-completed", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progressed := decode[goalBody](t, rec)
	assert.Equal(t, 1, progressed.CurrentProgress)
	assert.InDelta(t, 0.5, progressed.Fraction, 1e-9)

	rec = a.do(http.MethodPost, "/api/goals/"+created.ID+"/task-completed", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.GoalStatusCompleted, decode[goalBody](t, rec).Status)

	rec = a.do(http.MethodPost, "/api/goals/"+created.ID+"/task-completed", "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	name := "Renamed"
	rec = a.do(http.MethodPatch, "/api/goals/"+created.ID, "alice", map[string]any{"name": name})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/goals/"+created.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodDelete, "/api/goals/"+created.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodDelete, "/api/goals/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, "/api/goals/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateValidation(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
		"name": "", "icon": "x", "type": "weekly_habit", "duration_weeks": 3,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}](t, rec)
	var fields []string
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "icon", "target", "duration_weeks"}, fields)

	rec = a.do(http.MethodPost, "/api/goals", "alice", map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GoalLimit(t *testing.T) {
	a := newAPI(t)

	for i := 0; i < 10; i++ {
		rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
			"name": "Stretch", "icon": "🧘", "type": "recurring_task",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
		"name": "One more", "icon": "🧘", "type": "recurring_task",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/goals?status=active&sort=name", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		WeekID    string     `json:"week_id"`
		CanCreate bool       `json:"can_create"`
		Goals     []goalBody `json:"goals"`
	}](t, rec)
	assert.Equal(t, "2026-W01", list.WeekID)
	assert.False(t, list.CanCreate)
	assert.Len(t, list.Goals, 10)
}

func TestAPI_TaskLinks(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
		"name": "Run", "icon": "🏃", "type": "weekly_habit", "target": 3, "duration_weeks": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decode[goalBody](t, rec)

	rec = a.do(http.MethodPost, "/api/tasks/t-1/completed", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodPut, "/api/tasks/t-1/goal", "bob", map[string]string{"goal_id": goal.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPut, "/api/tasks/t-1/goal", "alice", map[string]string{"goal_id": goal.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/tasks/t-1/goal", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goal.ID, decode[goalBody](t, rec).ID)

	rec = a.do(http.MethodPost, "/api/tasks/t-1/completed", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[goalBody](t, rec).CurrentProgress)

	rec = a.do(http.MethodDelete, "/api/tasks/t-1", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, "/api/goals/"+goal.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Goal goalBody `json:"goal"`
	}](t, rec)
	assert.Equal(t, 1, detail.Goal.CurrentProgress)

	rec = a.do(http.MethodDelete, "/api/tasks/t-1/goal", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_MaintenanceAndWeek(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/maintenance", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[map[string]any](t, rec)
	assert.Equal(t, "2026-W01", report["week_id"])

	rec = a.do(http.MethodGet, "/api/week", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wk := decode[map[string]any](t, rec)
	assert.Equal(t, "2026-W01", wk["week_id"])
	assert.Equal(t, "2026-W02", wk["next"])
	assert.True(t, strings.HasPrefix(wk["start"].(string), "2025-12-29"))
}

func TestAPI_Export(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/goals", "alice", map[string]any{
		"name": "Read", "icon": "📚", "type": "weekly_habit", "target": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/goals/export", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "goals-export.json")
	export := decode[struct {
		OwnerID string `json:"owner_id"`
		Goals   []any  `json:"goals"`
	}](t, rec)
	assert.Equal(t, "alice", export.OwnerID)
	assert.Len(t, export.Goals, 1)

	rec = a.do(http.MethodPost, "/api/goals/export", "alice", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func (a *api) push(t *testing.T, event map[string]any, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/partner-goals", bytes.NewReader(payload))
	if sign {
		wh, err := standardwebhooks.NewWebhookRaw([]byte(webhookSecret))
		require.NoError(t, err)

		id := "msg_" + time.Now().Format("150405.000000000")
		now := time.Now()
		signature, err := wh.Sign(id, now, payload)
		require.NoError(t, err)

		req.Header.Set("webhook-id", id)
		req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
		req.Header.Set("webhook-signature", signature)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestAPI_PartnerSync(t *testing.T) {
	a := newAPI(t)

	remote := testutil.Goal("bob", model.WeeklyHabit(3), "2026-W01")
	remote.Name = "Bob runs"
	t1 := time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC)

	rec := a.push(t, map[string]any{"type": "upsert", "goal": remote, "synced_at": t1}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]bool](t, rec)["applied"])

	older := *remote
	older.Name = "Bob walks"
	rec = a.push(t, map[string]any{"type": "upsert", "goal": &older, "synced_at": t1.Add(-time.Hour)}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]bool](t, rec)["applied"])

	rec = a.do(http.MethodGet, "/api/partner/goals", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cache := decode[struct {
		Goals   []goalBody `json:"goals"`
		Warning string     `json:"warning"`
	}](t, rec)
	require.Len(t, cache.Goals, 1)
	assert.Equal(t, "Bob runs", cache.Goals[0].Name)
	assert.Empty(t, cache.Warning)

	// Partner records cannot be mutated locally.
	rec = a.do(http.MethodPost, "/api/goals/"+remote.ID+"/task-completed", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodPut, "/api/tasks/t-9/goal", "alice", map[string]string{"goal_id": remote.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unsigned pushes are rejected and surface as a warning.
	rec = a.push(t, map[string]any{"type": "delete", "goal_id": remote.ID, "synced_at": t1.Add(time.Hour)}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/partner/goals", "alice", nil)
	cache = decode[struct {
		Goals   []goalBody `json:"goals"`
		Warning string     `json:"warning"`
	}](t, rec)
	assert.Len(t, cache.Goals, 1)
	assert.NotEmpty(t, cache.Warning)

	rec = a.push(t, map[string]any{"type": "delete", "goal_id": remote.ID, "synced_at": t1.Add(time.Hour)}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/partner/goals", "alice", nil)
	cache = decode[struct {
		Goals   []goalBody `json:"goals"`
		Warning string     `json:"warning"`
	}](t, rec)
	assert.Empty(t, cache.Goals)
	assert.Empty(t, cache.Warning)
}
