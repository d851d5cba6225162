package services

import (
	"careerquest/internal/models"
)

// indexChange moves one task to a new order index
type indexChange struct {
	TaskID string
	Index  int
}

// validateTaskSet checks that ids is a permutation of the ids of current
func validateTaskSet(current []*models.Task, ids []string) error {
	known := make(map[string]bool, len(current))
	for _, task := range current {
		known[task.ID] = false
	}

	unknown := []string{}
	duplicated := []string{}
	for _, id := range ids {
		seen, ok := known[id]
		switch {
		case !ok:
			unknown = append(unknown, id)
		case seen:
			duplicated = append(duplicated, id)
		default:
			known[id] = true
		}
	}

	missing := []string{}
	for _, task := range current {
		if !known[task.ID] {
			missing = append(missing, task.ID)
		}
	}

	if len(ids) != len(current) || len(unknown) > 0 || len(missing) > 0 || len(duplicated) > 0 {
		return NewTaskSetMismatchError(len(current), len(ids), unknown, missing, duplicated)
	}
	return nil
}

// reorderPlan lists the writes that give each id its position in ids.
// Tasks already at their position are skipped.
func reorderPlan(current []*models.Task, ids []string) []indexChange {
	index := make(map[string]int, len(current))
	for _, task := range current {
		index[task.ID] = task.OrderIndex
	}

	var changes []indexChange
	for position, id := range ids {
		if index[id] != position {
			changes = append(changes, indexChange{TaskID: id, Index: position})
		}
	}
	return changes
}

// reindexPlan closes gaps left by a delete. tasks must be ordered by their
// current index.
func reindexPlan(tasks []*models.Task) []indexChange {
	var changes []indexChange
	for position, task := range tasks {
		if task.OrderIndex != position {
			changes = append(changes, indexChange{TaskID: task.ID, Index: position})
		}
	}
	return changes
}

// tasksFromInput builds the replacement task list of a mission update.
// Order indices follow the input order; empty ids are generated.
func tasksFromInput(missionID string, inputs []models.TaskInput) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0, len(inputs))
	for position, input := range inputs {
		id := input.ID
		if id == "" {
			generated, err := newTaskID()
			if err != nil {
				return nil, err
			}
			id = generated
		}

		tasks = append(tasks, &models.Task{
			ID:          id,
			MissionID:   missionID,
			Description: input.Description,
			Completed:   input.Completed,
			OrderIndex:  position,
		})
	}
	return tasks, nil
}
