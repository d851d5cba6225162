package missions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"careerquest/internal/models"
	"careerquest/internal/response"
	"careerquest/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockMissionService returns canned results and records its inputs
type mockMissionService struct {
	mission    *models.Mission
	createErr  error
	getErr     error
	deleted    bool
	lastCreate *services.CreateMissionRequest
	lastPatch  *models.MissionPatch
}

func (m *mockMissionService) CreateMission(ctx context.Context, req *services.CreateMissionRequest) (*models.Mission, error) {
	m.lastCreate = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.mission, nil
}

func (m *mockMissionService) GetMissionByID(ctx context.Context, id string) (*models.Mission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.mission == nil || m.mission.ID != id {
		return nil, nil
	}
	return m.mission, nil
}

func (m *mockMissionService) ListMissions(ctx context.Context) []*models.Mission {
	if m.mission == nil {
		return []*models.Mission{}
	}
	return []*models.Mission{m.mission}
}

func (m *mockMissionService) UpdateMission(ctx context.Context, id string, patch *models.MissionPatch) *models.Mission {
	m.lastPatch = patch
	return m.mission
}

func (m *mockMissionService) DeleteMission(ctx context.Context, id string) bool {
	return m.deleted
}

func (m *mockMissionService) GetAvailableBadges(ctx context.Context) []*models.Badge {
	return []*models.Badge{{ID: "b1", Name: "Pathfinder"}}
}

func (m *mockMissionService) GetMissionStatistics(ctx context.Context) *models.MissionStatistics {
	return &models.MissionStatistics{TotalMissions: 4, CompletedMissions: 2, AverageCompletionRate: 50}
}

// mockTaskService returns canned results
type mockTaskService struct {
	task       *models.Task
	ok         bool
	reorderErr error
	lastIDs    []string
}

func (m *mockTaskService) GetTasksForMission(ctx context.Context, missionID string) []*models.Task {
	if m.task == nil {
		return []*models.Task{}
	}
	return []*models.Task{m.task}
}

func (m *mockTaskService) CreateTask(ctx context.Context, missionID, description string) *models.Task {
	return m.task
}

func (m *mockTaskService) UpdateTask(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) *models.Task {
	return m.task
}

func (m *mockTaskService) DeleteTask(ctx context.Context, missionID, taskID string) bool {
	return m.ok
}

func (m *mockTaskService) ReorderTasks(ctx context.Context, missionID string, taskIDs []string) (bool, error) {
	m.lastIDs = taskIDs
	return m.ok, m.reorderErr
}

func (m *mockTaskService) ToggleTaskCompletion(ctx context.Context, missionID, taskID string) bool {
	return m.ok
}

func newTestRouter(ms *mockMissionService, ts *mockTaskService) *mux.Router {
	c := NewMissionController(ms, ts, zap.NewNop(), response.NewBuilder(response.DefaultConfig(), zap.NewNop()))

	r := mux.NewRouter()
	r.HandleFunc("/missions", c.ListMissions).Methods(http.MethodGet)
	r.HandleFunc("/missions", c.CreateMission).Methods(http.MethodPost)
	r.HandleFunc("/missions/statistics", c.GetStatistics).Methods(http.MethodGet)
	r.HandleFunc("/missions/{id}", c.GetMission).Methods(http.MethodGet)
	r.HandleFunc("/missions/{id}", c.UpdateMission).Methods(http.MethodPatch)
	r.HandleFunc("/missions/{id}", c.DeleteMission).Methods(http.MethodDelete)
	r.HandleFunc("/missions/{id}/tasks", c.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/missions/{id}/tasks", c.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/missions/{id}/tasks/order", c.ReorderTasks).Methods(http.MethodPut)
	r.HandleFunc("/missions/{id}/tasks/{taskId}", c.UpdateTask).Methods(http.MethodPatch)
	r.HandleFunc("/missions/{id}/tasks/{taskId}", c.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/missions/{id}/tasks/{taskId}/toggle", c.ToggleTask).Methods(http.MethodPost)
	r.HandleFunc("/badges", c.ListBadges).Methods(http.MethodGet)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string                 `json:"type"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, router http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestGetMission(t *testing.T) {
	ms := &mockMissionService{mission: &models.Mission{ID: "m1", Title: "Graph search"}}
	router := newTestRouter(ms, &mockTaskService{})

	code, env := serve(t, router, http.MethodGet, "/missions/m1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var got models.Mission
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Graph search", got.Title)

	code, env = serve(t, router, http.MethodGet, "/missions/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, services.ErrTypeNotFound, env.Error.Type)

	ms.getErr = services.NewPersistenceError("get mission", assert.AnError)
	code, _ = serve(t, router, http.MethodGet, "/missions/m1", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestStatisticsRouteIsNotAnID(t *testing.T) {
	router := newTestRouter(&mockMissionService{}, &mockTaskService{})

	code, env := serve(t, router, http.MethodGet, "/missions/statistics", "")
	assert.Equal(t, http.StatusOK, code)

	var stats models.MissionStatistics
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 4, stats.TotalMissions)
	assert.Equal(t, 50.0, stats.AverageCompletionRate)
}

func TestCreateMission(t *testing.T) {
	ms := &mockMissionService{mission: &models.Mission{ID: "m1", Title: "Untitled Mission"}}
	router := newTestRouter(ms, &mockTaskService{})

	code, _ := serve(t, router, http.MethodPost, "/missions", `{"points": 250, "required_skills": [{"name": "Go", "category": "technical"}]}`)
	assert.Equal(t, http.StatusCreated, code)
	require.NotNil(t, ms.lastCreate)
	assert.Equal(t, 250, ms.lastCreate.Points)
	assert.Len(t, ms.lastCreate.RequiredSkills, 1)

	code, env := serve(t, router, http.MethodPost, "/missions", `{"points": "many"`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrTypeValidation, env.Error.Type)

	ms.createErr = services.NewValidationError("invalid mission", nil)
	code, _ = serve(t, router, http.MethodPost, "/missions", `{"points": -1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateMission(t *testing.T) {
	ms := &mockMissionService{mission: &models.Mission{ID: "m1", Title: "Renamed"}}
	router := newTestRouter(ms, &mockTaskService{})

	code, _ := serve(t, router, http.MethodPatch, "/missions/m1", `{"title": "Renamed", "badge_reward_id": null}`)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, ms.lastPatch)
	assert.True(t, ms.lastPatch.Title.HasValue())
	assert.True(t, ms.lastPatch.BadgeRewardID.Null)
	assert.False(t, ms.lastPatch.Description.Set)

	ms.mission = nil
	code, env := serve(t, router, http.MethodPatch, "/missions/m1", `{"title": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, services.ErrTypeOperationFailed, env.Error.Type)
}

func TestDeleteMission(t *testing.T) {
	ms := &mockMissionService{deleted: true}
	router := newTestRouter(ms, &mockTaskService{})

	code, _ := serve(t, router, http.MethodDelete, "/missions/m1", "")
	assert.Equal(t, http.StatusOK, code)

	ms.deleted = false
	code, env := serve(t, router, http.MethodDelete, "/missions/m1", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, services.ErrTypeOperationFailed, env.Error.Type)
}

func TestCreateTask(t *testing.T) {
	ts := &mockTaskService{task: &models.Task{ID: "t1", MissionID: "m1", Description: "Write tests"}}
	router := newTestRouter(&mockMissionService{}, ts)

	code, _ := serve(t, router, http.MethodPost, "/missions/m1/tasks", `{"description": "Write tests"}`)
	assert.Equal(t, http.StatusCreated, code)

	code, env := serve(t, router, http.MethodPost, "/missions/m1/tasks", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrTypeValidation, env.Error.Type)

	ts.task = nil
	code, _ = serve(t, router, http.MethodPost, "/missions/m1/tasks", `{"description": "Write tests"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestReorderTasks(t *testing.T) {
	ts := &mockTaskService{ok: true, task: &models.Task{ID: "b"}}
	router := newTestRouter(&mockMissionService{}, ts)

	code, _ := serve(t, router, http.MethodPut, "/missions/m1/tasks/order", `{"task_ids": ["b", "a"]}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"b", "a"}, ts.lastIDs)

	ts.ok = false
	ts.reorderErr = services.NewTaskSetMismatchError(2, 1, nil, []string{"a"}, nil)
	code, env := serve(t, router, http.MethodPut, "/missions/m1/tasks/order", `{"task_ids": ["b"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, services.ErrTypeTaskSetMismatch, env.Error.Type)
	assert.Equal(t, []interface{}{"a"}, env.Error.Details["missing_ids"])

	ts.reorderErr = nil
	code, env = serve(t, router, http.MethodPut, "/missions/m1/tasks/order", `{"task_ids": ["b", "a"]}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, services.ErrTypeOperationFailed, env.Error.Type)

	code, _ = serve(t, router, http.MethodPut, "/missions/m1/tasks/order", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTaskRoutesMapFalseAndNil(t *testing.T) {
	ts := &mockTaskService{ok: true, task: &models.Task{ID: "t1", Completed: true}}
	router := newTestRouter(&mockMissionService{}, ts)

	code, _ := serve(t, router, http.MethodPost, "/missions/m1/tasks/t1/toggle", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, router, http.MethodPatch, "/missions/m1/tasks/t1", `{"completed": true}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, router, http.MethodDelete, "/missions/m1/tasks/t1", "")
	assert.Equal(t, http.StatusOK, code)

	ts.ok = false
	ts.task = nil
	code, _ = serve(t, router, http.MethodPost, "/missions/m1/tasks/t1/toggle", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	code, _ = serve(t, router, http.MethodPatch, "/missions/m1/tasks/t1", `{"completed": true}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	code, _ = serve(t, router, http.MethodDelete, "/missions/m1/tasks/t1", "")
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = serve(t, router, http.MethodPatch, "/missions/m1/tasks/t1", `{"description": ""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListsNeverFail(t *testing.T) {
	router := newTestRouter(&mockMissionService{}, &mockTaskService{})

	code, env := serve(t, router, http.MethodGet, "/missions", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = serve(t, router, http.MethodGet, "/missions/m1/tasks", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = serve(t, router, http.MethodGet, "/badges", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Pathfinder")
}
