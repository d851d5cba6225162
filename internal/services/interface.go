// file: internal/services/interface.go
package services

import (
	"context"

	"careerquest/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// MissionService owns the mission aggregate. Failure reporting differs per
// operation: methods returning an error surface failures, the others log
// them and return nil, false or an empty result.
type MissionService interface {
	CreateMission(ctx context.Context, req *CreateMissionRequest) (*models.Mission, error)
	// GetMissionByID returns nil, nil when the mission does not exist
	GetMissionByID(ctx context.Context, id string) (*models.Mission, error)
	ListMissions(ctx context.Context) []*models.Mission
	UpdateMission(ctx context.Context, id string, patch *models.MissionPatch) *models.Mission
	DeleteMission(ctx context.Context, id string) bool

	GetAvailableBadges(ctx context.Context) []*models.Badge
	GetMissionStatistics(ctx context.Context) *models.MissionStatistics
}

// TaskService keeps a mission's tasks densely ordered and derives the
// mission status from task completion.
type TaskService interface {
	GetTasksForMission(ctx context.Context, missionID string) []*models.Task
	CreateTask(ctx context.Context, missionID, description string) *models.Task
	UpdateTask(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) *models.Task
	DeleteTask(ctx context.Context, missionID, taskID string) bool
	// ReorderTasks returns a non-nil error only when taskIDs is not a
	// permutation of the mission's tasks. Storage failures report false.
	ReorderTasks(ctx context.Context, missionID string, taskIDs []string) (bool, error)
	ToggleTaskCompletion(ctx context.Context, missionID, taskID string) bool
}
