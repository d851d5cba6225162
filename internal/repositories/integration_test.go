package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"careerquest/internal/config"
	"careerquest/internal/database"
	"careerquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestStore connects to TEST_DATABASE_URL, migrates and truncates.
func setupTestStore(t *testing.T) *Collection {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.DatabaseConfig{
		URL:                url,
		MaxOpenConns:       5,
		MaxIdleConns:       2,
		ConnMaxLifetime:    time.Minute,
		SlowQueryThreshold: 100 * time.Millisecond,
	}
	manager, err := database.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, manager.Migrate())

	_, err = manager.ExecContext(context.Background(),
		`TRUNCATE mission_skills, mission_tasks, missions, badges CASCADE`)
	require.NoError(t, err)

	store, err := NewCollection(manager, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertBadge(t *testing.T, store *Collection, name string) string {
	t.Helper()
	var id string
	err := store.db.QueryRowContext(context.Background(),
		`INSERT INTO badges (name, rarity, category) VALUES ($1, 'rare', 'technical') RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func newMission(title string) *models.Mission {
	return &models.Mission{
		Title:      title,
		Category:   models.CategoryTechnical,
		Difficulty: models.DifficultyMedium,
		Points:     100,
		Status:     models.StatusNotStarted,
		CreatedBy:  "anonymous",
	}
}

func TestMissionLifecycleAgainstPostgres(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	badgeID := insertBadge(t, store, "Bug Hunter")
	mission := newMission("Fix the flaky test")
	mission.BadgeRewardID = &badgeID
	require.NoError(t, store.Missions().Create(ctx, mission))
	require.NotEmpty(t, mission.ID)

	tasks := []*models.Task{
		{ID: "11111111-1111-4111-8111-111111111111", MissionID: mission.ID, Description: "reproduce", OrderIndex: 0},
		{ID: "22222222-2222-4222-8222-222222222222", MissionID: mission.ID, Description: "fix", OrderIndex: 1},
	}
	require.NoError(t, store.Tasks().BulkCreate(ctx, tasks))
	require.NoError(t, store.Skills().BulkCreate(ctx, mission.ID, []models.Skill{{Name: "Go", Category: models.CategoryTechnical}}))

	got, err := store.Missions().GetByID(ctx, mission.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BadgeReward)
	assert.Equal(t, "Bug Hunter", got.BadgeReward.Name)

	toggled, err := store.Tasks().ToggleCompleted(ctx, mission.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	flags, err := store.Tasks().CompletionFlags(ctx, mission.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []bool{true, false}, flags)

	deleted, err := store.Missions().Delete(ctx, mission.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	remaining, err := store.Tasks().ListByMission(ctx, mission.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	badge, err := store.Badges().GetByID(ctx, badgeID)
	require.NoError(t, err)
	assert.NotNil(t, badge)
}

func TestTransactionRollsBackAgainstPostgres(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mission := newMission("Rollback")
	require.NoError(t, store.Missions().Create(ctx, mission))

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(tx Store) error {
		if _, err := tx.Missions().UpdateStatus(ctx, mission.ID, models.StatusCompleted); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Missions().GetByID(ctx, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, got.Status)
}

func TestDeferredOrderConstraintAllowsSwapAgainstPostgres(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mission := newMission("Swap")
	require.NoError(t, store.Missions().Create(ctx, mission))
	require.NoError(t, store.Tasks().BulkCreate(ctx, []*models.Task{
		{ID: "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa", MissionID: mission.ID, Description: "a", OrderIndex: 0},
		{ID: "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb", MissionID: mission.ID, Description: "b", OrderIndex: 1},
	}))

	err := store.WithTransaction(ctx, func(tx Store) error {
		if _, err := tx.Tasks().SetOrderIndex(ctx, mission.ID, "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb", 0); err != nil {
			return err
		}
		_, err := tx.Tasks().SetOrderIndex(ctx, mission.ID, "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa", 1)
		return err
	})
	require.NoError(t, err)

	tasks, err := store.Tasks().ListByMission(ctx, mission.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[0].Description)
}
