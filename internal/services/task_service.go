// ===============================
// FILE: internal/services/task_service.go
// ===============================

package services

import (
	"context"
	"strings"

	"careerquest/internal/contextutils"
	"careerquest/internal/events"
	"careerquest/internal/models"
	"careerquest/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// taskService implements TaskService
type taskService struct {
	store  repositories.Store
	events events.EventBus
	logger *zap.Logger
}

// NewTaskService creates the task ordering and completion service. bus may
// be nil.
func NewTaskService(store repositories.Store, bus events.EventBus, logger *zap.Logger) TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &taskService{
		store:  store,
		events: bus,
		logger: logger,
	}
}

func newTaskID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func taskFields(missionID, taskID string) []zap.Field {
	fields := []zap.Field{zap.String("mission_id", missionID)}
	if taskID != "" {
		fields = append(fields, zap.String("task_id", taskID))
	}
	return fields
}

// GetTasksForMission returns the ordered task list, or an empty list on
// failure
func (s *taskService) GetTasksForMission(ctx context.Context, missionID string) []*models.Task {
	return resultOf(s.listTasks(ctx, missionID)).Swallow(s.logger, "list_tasks", []*models.Task{}, taskFields(missionID, "")...)
}

func (s *taskService) listTasks(ctx context.Context, missionID string) ([]*models.Task, error) {
	tasks, err := s.store.Tasks().ListByMission(ctx, missionID)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

// ===============================
// CREATE / UPDATE / DELETE
// ===============================

// CreateTask appends a task after the mission's last one
func (s *taskService) CreateTask(ctx context.Context, missionID, description string) *models.Task {
	return resultOf(s.createTask(ctx, missionID, description)).Swallow(s.logger, "create_task", nil, taskFields(missionID, "")...)
}

func (s *taskService) createTask(ctx context.Context, missionID, description string) (*models.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		var errs models.ValidationErrors
		errs.Add("description", "cannot be empty", "REQUIRED", nil)
		return nil, NewValidationError("invalid task", errs)
	}

	id, err := newTaskID()
	if err != nil {
		return nil, NewInternalError("failed to generate task id")
	}

	task := &models.Task{
		ID:          id,
		MissionID:   missionID,
		Description: description,
	}

	// The mission lock serializes appends, so two creates never read the
	// same max index.
	err = s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		if err := lockMission(ctx, tx, missionID); err != nil {
			return err
		}

		maxIndex, err := tx.Tasks().MaxOrderIndex(ctx, missionID)
		if err != nil {
			return classify("read max order index", err)
		}
		task.OrderIndex = maxIndex + 1

		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, classify("create task", err)
	}

	s.publish(ctx, events.NewTaskCreatedEvent(task, contextutils.GetUserID(ctx)))
	return task, nil
}

// UpdateTask changes description and/or completed. It never touches the
// mission status.
func (s *taskService) UpdateTask(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) *models.Task {
	return resultOf(s.updateTask(ctx, missionID, taskID, patch)).Swallow(s.logger, "update_task", nil, taskFields(missionID, taskID)...)
}

func (s *taskService) updateTask(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) (*models.Task, error) {
	if patch == nil {
		patch = &models.TaskPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, NewValidationError("invalid task update", err)
	}

	task, err := s.store.Tasks().Update(ctx, missionID, taskID, patch)
	if err != nil {
		return nil, classify("update task", err)
	}
	if task == nil {
		return nil, EntityNotFoundError("task", taskID)
	}

	if !patch.IsEmpty() {
		s.publish(ctx, events.NewTaskUpdatedEvent(task, contextutils.GetUserID(ctx)))
	}
	return task, nil
}

// DeleteTask removes a task and closes the gap in the order
func (s *taskService) DeleteTask(ctx context.Context, missionID, taskID string) bool {
	return resultOf(s.deleteTask(ctx, missionID, taskID)).Swallow(s.logger, "delete_task", false, taskFields(missionID, taskID)...)
}

func (s *taskService) deleteTask(ctx context.Context, missionID, taskID string) (bool, error) {
	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		if err := lockMission(ctx, tx, missionID); err != nil {
			return err
		}

		deleted, err := tx.Tasks().Delete(ctx, missionID, taskID)
		if err != nil {
			return classify("delete task", err)
		}
		if !deleted {
			return EntityNotFoundError("task", taskID)
		}

		remaining, err := tx.Tasks().ListByMission(ctx, missionID)
		if err != nil {
			return classify("list remaining tasks", err)
		}
		return applyIndexChanges(ctx, tx, missionID, reindexPlan(remaining))
	})
	if err != nil {
		return false, classify("delete task", err)
	}

	s.publish(ctx, events.NewTaskDeletedEvent(missionID, taskID, contextutils.GetUserID(ctx)))
	return true, nil
}

// ===============================
// ORDERING
// ===============================

// ReorderTasks sets each task's index to its position in taskIDs
func (s *taskService) ReorderTasks(ctx context.Context, missionID string, taskIDs []string) (bool, error) {
	result := resultOf(s.reorderTasks(ctx, missionID, taskIDs))
	if IsTaskSetMismatchError(result.Err) {
		return result.Surface(s.logger, "reorder_tasks", taskFields(missionID, "")...)
	}
	return result.Swallow(s.logger, "reorder_tasks", false, taskFields(missionID, "")...), nil
}

func (s *taskService) reorderTasks(ctx context.Context, missionID string, taskIDs []string) (bool, error) {
	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		if err := lockMission(ctx, tx, missionID); err != nil {
			return err
		}

		current, err := tx.Tasks().ListByMission(ctx, missionID)
		if err != nil {
			return classify("list tasks", err)
		}
		if err := validateTaskSet(current, taskIDs); err != nil {
			return err
		}

		return applyIndexChanges(ctx, tx, missionID, reorderPlan(current, taskIDs))
	})
	if err != nil {
		return false, classify("reorder tasks", err)
	}

	s.publish(ctx, events.NewTasksReorderedEvent(missionID, taskIDs, contextutils.GetUserID(ctx)))
	return true, nil
}

func applyIndexChanges(ctx context.Context, tx repositories.Store, missionID string, changes []indexChange) error {
	for _, change := range changes {
		updated, err := tx.Tasks().SetOrderIndex(ctx, missionID, change.TaskID, change.Index)
		if err != nil {
			return classify("set task order", err)
		}
		if !updated {
			return NewNoDataReturnedError("set task order")
		}
	}
	return nil
}

// ===============================
// COMPLETION
// ===============================

// ToggleTaskCompletion flips a task and then re-derives the mission status.
// The result reflects the toggle only; a failed status sync is logged.
func (s *taskService) ToggleTaskCompletion(ctx context.Context, missionID, taskID string) bool {
	fields := taskFields(missionID, taskID)

	task := resultOf(s.toggleTask(ctx, missionID, taskID)).Swallow(s.logger, "toggle_task_completion", nil, fields...)
	if task == nil {
		return false
	}

	actor := contextutils.GetUserID(ctx)
	s.publish(ctx, events.NewTaskCompletionToggledEvent(task, actor))

	resultOf(s.syncMissionStatus(ctx, missionID, actor)).Swallow(s.logger, "sync_mission_status", "", fields...)
	return true
}

func (s *taskService) toggleTask(ctx context.Context, missionID, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks().ToggleCompleted(ctx, missionID, taskID)
	if err != nil {
		return nil, classify("toggle task", err)
	}
	if task == nil {
		return nil, EntityNotFoundError("task", taskID)
	}
	return task, nil
}

// syncMissionStatus writes the status derived from the mission's tasks
func (s *taskService) syncMissionStatus(ctx context.Context, missionID, actor string) (models.MissionStatus, error) {
	flags, err := s.store.Tasks().CompletionFlags(ctx, missionID)
	if err != nil {
		return "", classify("read completion flags", err)
	}
	status := DeriveMissionStatus(flags)

	mission, err := s.store.Missions().GetByID(ctx, missionID)
	if err != nil {
		return "", classify("get mission", err)
	}
	if mission == nil {
		return "", EntityNotFoundError("mission", missionID)
	}
	if mission.Status == status {
		return status, nil
	}

	updated, err := s.store.Missions().UpdateStatus(ctx, missionID, status)
	if err != nil {
		return "", classify("update mission status", err)
	}
	if !updated {
		return "", EntityNotFoundError("mission", missionID)
	}

	s.publish(ctx, events.NewMissionStatusChangedEvent(missionID, mission.Status, status, actor))
	return status, nil
}

func (s *taskService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.events, s.logger, event)
}
