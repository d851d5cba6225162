// ===============================
// FILE: internal/handlers/api/v1/missions/missions_controller.go
// ===============================

package missions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"careerquest/internal/contextutils"
	"careerquest/internal/models"
	"careerquest/internal/response"
	"careerquest/internal/services"
	"careerquest/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// MissionController exposes the mission and task services over HTTP
type MissionController struct {
	missions        services.MissionService
	tasks           services.TaskService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewMissionController creates a mission controller
func NewMissionController(
	missions services.MissionService,
	tasks services.TaskService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *MissionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if responseBuilder == nil {
		responseBuilder = response.NewBuilder(nil, logger)
	}

	return &MissionController{
		missions:        missions,
		tasks:           tasks,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// MISSIONS
// ===============================

// ListMissions handles GET /api/v1/missions
func (c *MissionController) ListMissions(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, c.missions.ListMissions(r.Context()))
}

// CreateMission handles POST /api/v1/missions
func (c *MissionController) CreateMission(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	mission, err := c.missions.CreateMission(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Mission created via API",
		zap.String("mission_id", mission.ID),
		zap.String("created_by", mission.CreatedBy),
		zap.String("request_id", contextutils.GetRequestID(r.Context())),
	)
	c.responseBuilder.WriteCreated(w, r, mission)
}

// GetMission handles GET /api/v1/missions/{id}
func (c *MissionController) GetMission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	mission, err := c.missions.GetMissionByID(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if mission == nil {
		c.responseBuilder.WriteError(w, r, services.EntityNotFoundError("mission", id))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, mission)
}

// UpdateMission handles PATCH /api/v1/missions/{id}
func (c *MissionController) UpdateMission(w http.ResponseWriter, r *http.Request) {
	var patch models.MissionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid mission update", err))
		return
	}

	mission := c.missions.UpdateMission(r.Context(), mux.Vars(r)["id"], &patch)
	if mission == nil {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("mission could not be updated"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, mission)
}

// DeleteMission handles DELETE /api/v1/missions/{id}
func (c *MissionController) DeleteMission(w http.ResponseWriter, r *http.Request) {
	if !c.missions.DeleteMission(r.Context(), mux.Vars(r)["id"]) {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("mission could not be deleted"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]bool{"deleted": true})
}

// GetStatistics handles GET /api/v1/missions/statistics
func (c *MissionController) GetStatistics(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, c.missions.GetMissionStatistics(r.Context()))
}

// ListBadges handles GET /api/v1/badges
func (c *MissionController) ListBadges(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, c.missions.GetAvailableBadges(r.Context()))
}

// ===============================
// TASKS
// ===============================

// ListTasks handles GET /api/v1/missions/{id}/tasks
func (c *MissionController) ListTasks(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, c.tasks.GetTasksForMission(r.Context(), mux.Vars(r)["id"]))
}

// CreateTask handles POST /api/v1/missions/{id}/tasks
func (c *MissionController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid task", err))
		return
	}

	task := c.tasks.CreateTask(r.Context(), mux.Vars(r)["id"], req.Description)
	if task == nil {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("task could not be created"))
		return
	}

	c.responseBuilder.WriteCreated(w, r, task)
}

// UpdateTask handles PATCH /api/v1/missions/{id}/tasks/{taskId}
func (c *MissionController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid task update", err))
		return
	}

	vars := mux.Vars(r)
	task := c.tasks.UpdateTask(r.Context(), vars["id"], vars["taskId"], &patch)
	if task == nil {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("task could not be updated"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, task)
}

// DeleteTask handles DELETE /api/v1/missions/{id}/tasks/{taskId}
func (c *MissionController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !c.tasks.DeleteTask(r.Context(), vars["id"], vars["taskId"]) {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("task could not be deleted"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]bool{"deleted": true})
}

// ReorderTasks handles PUT /api/v1/missions/{id}/tasks/order
func (c *MissionController) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderTasksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid reorder request", err))
		return
	}

	missionID := mux.Vars(r)["id"]
	ok, err := c.tasks.ReorderTasks(r.Context(), missionID, req.TaskIDs)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if !ok {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("tasks could not be reordered"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, c.tasks.GetTasksForMission(r.Context(), missionID))
}

// ToggleTask handles POST /api/v1/missions/{id}/tasks/{taskId}/toggle
func (c *MissionController) ToggleTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !c.tasks.ToggleTaskCompletion(r.Context(), vars["id"], vars["taskId"]) {
		c.responseBuilder.WriteError(w, r, services.NewOperationFailedError("task completion could not be toggled"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, map[string]bool{"toggled": true})
}

// ===============================
// HELPERS
// ===============================

// decodeJSON reads a bounded JSON body; an empty body decodes to the zero
// value
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return services.NewValidationError("request body too large", nil)
	}
	return services.NewValidationError("invalid request body format", err)
}
