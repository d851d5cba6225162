// file: internal/services/types.go
package services

import (
	"strings"

	"careerquest/internal/models"
)

// ===============================
// MISSION SERVICE TYPES
// ===============================

// CreateMissionRequest is the input of CreateMission. Zero values pick the
// mission defaults; Tasks are accepted but only created through TaskService
// once the mission exists.
type CreateMissionRequest struct {
	Title              string                   `json:"title" validate:"max=200"`
	Description        string                   `json:"description" validate:"max=5000"`
	Category           models.MissionCategory   `json:"category" validate:"omitempty,mission_category"`
	Difficulty         models.MissionDifficulty `json:"difficulty" validate:"omitempty,mission_difficulty"`
	Points             int                      `json:"points" validate:"gte=0"`
	TimeLimit          *int                     `json:"time_limit,omitempty" validate:"omitempty,gt=0"`
	CompletionCriteria string                   `json:"completion_criteria" validate:"max=5000"`
	CreatedBy          string                   `json:"created_by" validate:"max=255"`
	BadgeRewardID      *string                  `json:"badge_reward_id,omitempty" validate:"omitempty,min=1"`
	RequiredSkills     []models.Skill           `json:"required_skills" validate:"omitempty,dive"`
	Tasks              []models.TaskInput       `json:"tasks,omitempty"`
}

// toMission applies the creation defaults. Status is always not-started.
func (r *CreateMissionRequest) toMission(actor string) *models.Mission {
	mission := &models.Mission{
		Title:              strings.TrimSpace(r.Title),
		Description:        r.Description,
		Category:           r.Category,
		Difficulty:         r.Difficulty,
		Points:             r.Points,
		TimeLimit:          r.TimeLimit,
		Status:             models.StatusNotStarted,
		CompletionCriteria: r.CompletionCriteria,
		CreatedBy:          strings.TrimSpace(r.CreatedBy),
		BadgeRewardID:      r.BadgeRewardID,
		Tasks:              []*models.Task{},
		RequiredSkills:     models.DedupeSkills(r.RequiredSkills),
	}

	if mission.Title == "" {
		mission.Title = models.DefaultMissionTitle
	}
	if mission.Category == "" {
		mission.Category = models.DefaultMissionCategory
	}
	if mission.Difficulty == "" {
		mission.Difficulty = models.DefaultMissionDifficulty
	}
	if mission.Points == 0 {
		mission.Points = models.DefaultMissionPoints
	}
	if mission.CreatedBy == "" {
		mission.CreatedBy = actor
	}
	if mission.CreatedBy == "" {
		mission.CreatedBy = models.DefaultMissionCreator
	}

	return mission
}

// ===============================
// TASK SERVICE TYPES
// ===============================

// CreateTaskRequest is the HTTP body of a task creation
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
}

// ReorderTasksRequest is the HTTP body of a reorder
type ReorderTasksRequest struct {
	TaskIDs []string `json:"task_ids" validate:"required"`
}
