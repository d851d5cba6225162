package services

import (
	"testing"

	"careerquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskList(ids ...string) []*models.Task {
	out := make([]*models.Task, len(ids))
	for i, id := range ids {
		out[i] = &models.Task{ID: id, OrderIndex: i}
	}
	return out
}

func TestValidateTaskSet(t *testing.T) {
	current := taskList("a", "b", "c")

	assert.NoError(t, validateTaskSet(current, []string{"c", "b", "a"}))
	assert.NoError(t, validateTaskSet(nil, nil))

	err := validateTaskSet(current, []string{"a", "a", "x"})
	require.Error(t, err)

	serviceErr := GetServiceError(err)
	assert.Equal(t, ErrTypeTaskSetMismatch, serviceErr.Type)
	assert.Equal(t, 422, serviceErr.GetStatusCode())
	assert.Equal(t, []string{"x"}, serviceErr.Details["unknown_ids"])
	assert.Equal(t, []string{"a"}, serviceErr.Details["duplicated_ids"])
	assert.Equal(t, []string{"b", "c"}, serviceErr.Details["missing_ids"])
}

func TestReorderPlanSkipsUnmovedTasks(t *testing.T) {
	changes := reorderPlan(taskList("a", "b", "c"), []string{"a", "c", "b"})

	assert.Equal(t, []indexChange{{TaskID: "c", Index: 1}, {TaskID: "b", Index: 2}}, changes)
}

func TestReindexPlanClosesGaps(t *testing.T) {
	remaining := []*models.Task{
		{ID: "a", OrderIndex: 0},
		{ID: "c", OrderIndex: 2},
		{ID: "d", OrderIndex: 3},
	}

	changes := reindexPlan(remaining)

	assert.Equal(t, []indexChange{{TaskID: "c", Index: 1}, {TaskID: "d", Index: 2}}, changes)
	assert.Empty(t, reindexPlan(taskList("a", "b")))
}
