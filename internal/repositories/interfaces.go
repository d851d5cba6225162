package repositories

import (
	"context"
	"errors"

	"careerquest/internal/models"
)

// ErrNoDataReturned is returned when a write reports success but the
// store hands back no row.
var ErrNoDataReturned = errors.New("no data returned from store")

// ===============================
// MISSION REPOSITORY
// ===============================

// MissionRepository persists the scalar part of a mission
type MissionRepository interface {
	// Create inserts the mission and fills ID and CreatedAt from the store
	Create(ctx context.Context, mission *models.Mission) error
	// GetByID returns the mission with its badge joined, or nil when missing.
	// Tasks and skills are not loaded.
	GetByID(ctx context.Context, id string) (*models.Mission, error)
	// List returns every mission, newest first
	List(ctx context.Context) ([]*models.Mission, error)
	// Lock takes a row lock on the mission for the rest of the transaction
	Lock(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, patch *models.MissionPatch) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.MissionStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListStatuses(ctx context.Context) ([]models.MissionStatus, error)
}

// ===============================
// TASK REPOSITORY
// ===============================

// TaskRepository persists mission tasks. Every call is scoped by mission id.
type TaskRepository interface {
	ListByMission(ctx context.Context, missionID string) ([]*models.Task, error)
	// MaxOrderIndex returns -1 when the mission has no tasks
	MaxOrderIndex(ctx context.Context, missionID string) (int, error)
	Create(ctx context.Context, task *models.Task) error
	BulkCreate(ctx context.Context, tasks []*models.Task) error
	// Update returns nil when no task matched
	Update(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) (*models.Task, error)
	// ToggleCompleted negates the completed flag; nil when no task matched
	ToggleCompleted(ctx context.Context, missionID, taskID string) (*models.Task, error)
	SetOrderIndex(ctx context.Context, missionID, taskID string, index int) (bool, error)
	Delete(ctx context.Context, missionID, taskID string) (bool, error)
	DeleteByMission(ctx context.Context, missionID string) (int64, error)
	CompletionFlags(ctx context.Context, missionID string) ([]bool, error)
}

// ===============================
// REFERENCE DATA
// ===============================

// SkillRepository persists the required skill set of a mission
type SkillRepository interface {
	ListByMission(ctx context.Context, missionID string) ([]models.Skill, error)
	BulkCreate(ctx context.Context, missionID string, skills []models.Skill) error
	DeleteByMission(ctx context.Context, missionID string) (int64, error)
}

// BadgeRepository reads the badge catalog
type BadgeRepository interface {
	// List returns the catalog ordered by name
	List(ctx context.Context) ([]*models.Badge, error)
	// GetByID returns nil when the badge does not exist
	GetByID(ctx context.Context, id string) (*models.Badge, error)
}

// ===============================
// STORE
// ===============================

// Store groups the repositories and runs units of work atomically. The
// Store passed to fn is bound to the transaction.
type Store interface {
	Missions() MissionRepository
	Tasks() TaskRepository
	Skills() SkillRepository
	Badges() BadgeRepository
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}
