package events

import (
	"careerquest/internal/models"
)

// Event types published by the mission services
const (
	MissionCreated        = "mission.created"
	MissionUpdated        = "mission.updated"
	MissionDeleted        = "mission.deleted"
	MissionStatusChanged  = "mission.status_changed"
	TaskCreated           = "task.created"
	TaskUpdated           = "task.updated"
	TaskDeleted           = "task.deleted"
	TaskCompletionToggled = "task.completion_toggled"
	TasksReordered        = "tasks.reordered"
)

// MissionEvent carries a mission lifecycle change
type MissionEvent struct {
	BaseEvent
	MissionID string               `json:"mission_id"`
	Title     string               `json:"title,omitempty"`
	Status    models.MissionStatus `json:"status,omitempty"`
	Previous  models.MissionStatus `json:"previous_status,omitempty"`
	Points    int                  `json:"points,omitempty"`
}

// TaskEvent carries a change to one task, or to the task order of a mission
type TaskEvent struct {
	BaseEvent
	MissionID  string   `json:"mission_id"`
	TaskID     string   `json:"task_id,omitempty"`
	Completed  bool     `json:"completed"`
	OrderIndex int      `json:"order_index"`
	TaskIDs    []string `json:"task_ids,omitempty"`
}

// NewMissionCreatedEvent creates a new mission created event
func NewMissionCreatedEvent(mission *models.Mission, actor string) *MissionEvent {
	return &MissionEvent{
		BaseEvent: newBaseEvent(MissionCreated, actor),
		MissionID: mission.ID,
		Title:     mission.Title,
		Status:    mission.Status,
		Points:    mission.Points,
	}
}

// NewMissionUpdatedEvent creates a new mission updated event
func NewMissionUpdatedEvent(mission *models.Mission, actor string) *MissionEvent {
	return &MissionEvent{
		BaseEvent: newBaseEvent(MissionUpdated, actor),
		MissionID: mission.ID,
		Title:     mission.Title,
		Status:    mission.Status,
		Points:    mission.Points,
	}
}

// NewMissionDeletedEvent creates a new mission deleted event
func NewMissionDeletedEvent(missionID, actor string) *MissionEvent {
	return &MissionEvent{
		BaseEvent: newBaseEvent(MissionDeleted, actor),
		MissionID: missionID,
	}
}

// NewMissionStatusChangedEvent is published when task completion moves a
// mission between statuses
func NewMissionStatusChangedEvent(missionID string, previous, current models.MissionStatus, actor string) *MissionEvent {
	return &MissionEvent{
		BaseEvent: newBaseEvent(MissionStatusChanged, actor),
		MissionID: missionID,
		Status:    current,
		Previous:  previous,
	}
}

// NewTaskCreatedEvent creates a new task created event
func NewTaskCreatedEvent(task *models.Task, actor string) *TaskEvent {
	return &TaskEvent{
		BaseEvent:  newBaseEvent(TaskCreated, actor),
		MissionID:  task.MissionID,
		TaskID:     task.ID,
		Completed:  task.Completed,
		OrderIndex: task.OrderIndex,
	}
}

// NewTaskUpdatedEvent creates a new task updated event
func NewTaskUpdatedEvent(task *models.Task, actor string) *TaskEvent {
	return &TaskEvent{
		BaseEvent:  newBaseEvent(TaskUpdated, actor),
		MissionID:  task.MissionID,
		TaskID:     task.ID,
		Completed:  task.Completed,
		OrderIndex: task.OrderIndex,
	}
}

// NewTaskDeletedEvent creates a new task deleted event
func NewTaskDeletedEvent(missionID, taskID, actor string) *TaskEvent {
	return &TaskEvent{
		BaseEvent: newBaseEvent(TaskDeleted, actor),
		MissionID: missionID,
		TaskID:    taskID,
	}
}

// NewTaskCompletionToggledEvent creates a new task completion toggled event
func NewTaskCompletionToggledEvent(task *models.Task, actor string) *TaskEvent {
	return &TaskEvent{
		BaseEvent:  newBaseEvent(TaskCompletionToggled, actor),
		MissionID:  task.MissionID,
		TaskID:     task.ID,
		Completed:  task.Completed,
		OrderIndex: task.OrderIndex,
	}
}

// NewTasksReorderedEvent carries the new task order of a mission
func NewTasksReorderedEvent(missionID string, taskIDs []string, actor string) *TaskEvent {
	return &TaskEvent{
		BaseEvent: newBaseEvent(TasksReordered, actor),
		MissionID: missionID,
		TaskIDs:   append([]string(nil), taskIDs...),
	}
}
