package repositories

import (
	"context"
	"fmt"
	"strings"

	"careerquest/internal/database"
	"careerquest/internal/models"

	"go.uber.org/zap"
)

type taskRepository struct {
	*BaseRepository
}

// NewTaskRepository creates a task repository over db
func NewTaskRepository(db database.Querier, logger *zap.Logger) TaskRepository {
	return &taskRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const taskColumns = `id, mission_id, description, completed, order_index`

func (r *taskRepository) ListByMission(ctx context.Context, missionID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM mission_tasks
		WHERE mission_id = $1
		ORDER BY order_index ASC, id ASC`

	rows, err := r.QueryContext(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for mission %s: %w", missionID, err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *taskRepository) MaxOrderIndex(ctx context.Context, missionID string) (int, error) {
	var maxIndex int
	err := r.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), -1) FROM mission_tasks WHERE mission_id = $1`,
		missionID,
	).Scan(&maxIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to get max order index: %w", err)
	}
	return maxIndex, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO mission_tasks (id, mission_id, description, completed, order_index)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	created, err := scanTask(r.QueryRowContext(ctx, query,
		task.ID, task.MissionID, task.Description, task.Completed, task.OrderIndex,
	))
	if err != nil {
		if r.IsNotFound(err) {
			return ErrNoDataReturned
		}
		r.GetLogger().Error("Failed to create task",
			zap.Error(err),
			zap.String("mission_id", task.MissionID),
		)
		return fmt.Errorf("failed to create task: %w", err)
	}

	*task = *created
	return nil
}

func (r *taskRepository) BulkCreate(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	values := make([][]interface{}, len(tasks))
	for i, t := range tasks {
		values[i] = []interface{}{t.ID, t.MissionID, t.Description, t.Completed, t.OrderIndex}
	}

	inserted, err := r.BulkInsert(ctx, "mission_tasks",
		[]string{"id", "mission_id", "description", "completed", "order_index"}, values)
	if err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}
	if inserted != int64(len(tasks)) {
		return fmt.Errorf("inserted %d of %d tasks", inserted, len(tasks))
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, missionID, taskID string, patch *models.TaskPatch) (*models.Task, error) {
	set := &setClause{}
	if patch != nil {
		if patch.Description.HasValue() {
			set.add("description", strings.TrimSpace(patch.Description.Value))
		}
		if patch.Completed.HasValue() {
			set.add("completed", patch.Completed.Value)
		}
	}

	var query string
	var args []interface{}
	if set.empty() {
		query = `SELECT ` + taskColumns + ` FROM mission_tasks WHERE id = $1 AND mission_id = $2`
		args = []interface{}{taskID, missionID}
	} else {
		where := set.where(taskID, missionID)
		query = fmt.Sprintf(`UPDATE mission_tasks SET %s WHERE id = %s AND mission_id = %s RETURNING %s`,
			set.String(), where[0], where[1], taskColumns)
		args = set.args
	}

	task, err := scanTask(r.QueryRowContext(ctx, query, args...))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return task, nil
}

func (r *taskRepository) ToggleCompleted(ctx context.Context, missionID, taskID string) (*models.Task, error) {
	query := `
		UPDATE mission_tasks SET completed = NOT completed
		WHERE id = $1 AND mission_id = $2
		RETURNING ` + taskColumns

	task, err := scanTask(r.QueryRowContext(ctx, query, taskID, missionID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to toggle task %s: %w", taskID, err)
	}
	return task, nil
}

func (r *taskRepository) SetOrderIndex(ctx context.Context, missionID, taskID string, index int) (bool, error) {
	result, err := r.ExecContext(ctx,
		`UPDATE mission_tasks SET order_index = $1 WHERE id = $2 AND mission_id = $3`,
		index, taskID, missionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set order index of task %s: %w", taskID, err)
	}
	return r.rowsAffected(result)
}

func (r *taskRepository) Delete(ctx context.Context, missionID, taskID string) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM mission_tasks WHERE id = $1 AND mission_id = $2`,
		taskID, missionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	return r.rowsAffected(result)
}

func (r *taskRepository) DeleteByMission(ctx context.Context, missionID string) (int64, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM mission_tasks WHERE mission_id = $1`, missionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks of mission %s: %w", missionID, err)
	}
	return result.RowsAffected()
}

func (r *taskRepository) CompletionFlags(ctx context.Context, missionID string) ([]bool, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT completed FROM mission_tasks WHERE mission_id = $1`, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion flags: %w", err)
	}
	defer rows.Close()

	flags := make([]bool, 0)
	for rows.Next() {
		var completed bool
		if err := rows.Scan(&completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion flag: %w", err)
		}
		flags = append(flags, completed)
	}
	return flags, rows.Err()
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	if err := row.Scan(&t.ID, &t.MissionID, &t.Description, &t.Completed, &t.OrderIndex); err != nil {
		return nil, err
	}
	return &t, nil
}
