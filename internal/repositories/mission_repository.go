package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"careerquest/internal/database"
	"careerquest/internal/models"

	"go.uber.org/zap"
)

type missionRepository struct {
	*BaseRepository
}

// NewMissionRepository creates a mission repository over db
func NewMissionRepository(db database.Querier, logger *zap.Logger) MissionRepository {
	return &missionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const missionColumns = `
	m.id, m.title, m.description, m.category, m.difficulty, m.points,
	m.time_limit, m.status, m.completion_criteria, m.badge_reward_id,
	m.created_by, m.created_at`

const badgeJoinColumns = `
	b.id, b.name, b.description, b.image_url, b.rarity, b.category`

// ===============================
// CREATE
// ===============================

func (r *missionRepository) Create(ctx context.Context, mission *models.Mission) error {
	query := `
		INSERT INTO missions (
			title, description, category, difficulty, points, time_limit,
			status, completion_criteria, badge_reward_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		mission.Title,
		mission.Description,
		mission.Category,
		mission.Difficulty,
		mission.Points,
		nullInt(mission.TimeLimit),
		mission.Status,
		mission.CompletionCriteria,
		nullString(mission.BadgeRewardID),
		mission.CreatedBy,
	).Scan(&mission.ID, &mission.CreatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNoDataReturned
		}
		r.GetLogger().Error("Failed to create mission",
			zap.Error(err),
			zap.String("title", mission.Title),
		)
		return fmt.Errorf("failed to create mission: %w", err)
	}

	r.GetLogger().Info("Mission created successfully",
		zap.String("mission_id", mission.ID),
		zap.String("created_by", mission.CreatedBy),
	)
	return nil
}

// ===============================
// READ
// ===============================

func (r *missionRepository) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	query := `SELECT ` + missionColumns + `,` + badgeJoinColumns + `
		FROM missions m
		LEFT JOIN badges b ON b.id = m.badge_reward_id
		WHERE m.id = $1`

	mission, err := scanMissionWithBadge(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mission %s: %w", id, err)
	}
	return mission, nil
}

func (r *missionRepository) List(ctx context.Context) ([]*models.Mission, error) {
	query := `SELECT ` + missionColumns + `,` + badgeJoinColumns + `
		FROM missions m
		LEFT JOIN badges b ON b.id = m.badge_reward_id
		ORDER BY m.created_at DESC, m.id`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	defer rows.Close()

	missions := make([]*models.Mission, 0)
	for rows.Next() {
		mission, err := scanMissionWithBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, mission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate missions: %w", err)
	}

	return missions, nil
}

func (r *missionRepository) Lock(ctx context.Context, id string) (bool, error) {
	var locked string
	err := r.QueryRowContext(ctx, `SELECT id FROM missions WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if r.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock mission %s: %w", id, err)
	}
	return true, nil
}

func (r *missionRepository) ListStatuses(ctx context.Context) ([]models.MissionStatus, error) {
	rows, err := r.QueryContext(ctx, `SELECT status FROM missions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mission statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]models.MissionStatus, 0)
	for rows.Next() {
		var status models.MissionStatus
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("failed to scan mission status: %w", err)
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

// ===============================
// UPDATE
// ===============================

func (r *missionRepository) Update(ctx context.Context, id string, patch *models.MissionPatch) (bool, error) {
	set := buildMissionSet(patch)
	if set.empty() {
		return true, nil
	}

	where := set.where(id)
	query := fmt.Sprintf(`UPDATE missions SET %s WHERE id = %s`, set.String(), where[0])

	result, err := r.ExecContext(ctx, query, set.args...)
	if err != nil {
		return false, fmt.Errorf("failed to update mission %s: %w", id, err)
	}
	return r.rowsAffected(result)
}

// buildMissionSet maps the present scalar fields of a patch to columns
func buildMissionSet(patch *models.MissionPatch) *setClause {
	set := &setClause{}
	if patch == nil {
		return set
	}

	if patch.Title.HasValue() {
		set.add("title", strings.TrimSpace(patch.Title.Value))
	}
	if patch.Description.HasValue() {
		set.add("description", patch.Description.Value)
	}
	if patch.Category.HasValue() {
		set.add("category", patch.Category.Value)
	}
	if patch.Difficulty.HasValue() {
		set.add("difficulty", patch.Difficulty.Value)
	}
	if patch.Points.HasValue() {
		set.add("points", patch.Points.Value)
	}
	if patch.TimeLimit.Set {
		if patch.TimeLimit.Null {
			set.add("time_limit", nil)
		} else {
			set.add("time_limit", patch.TimeLimit.Value)
		}
	}
	if patch.Status.HasValue() {
		set.add("status", patch.Status.Value)
	}
	if patch.CompletionCriteria.HasValue() {
		set.add("completion_criteria", patch.CompletionCriteria.Value)
	}
	if patch.BadgeRewardID.Set {
		if patch.BadgeRewardID.Null {
			set.add("badge_reward_id", nil)
		} else {
			set.add("badge_reward_id", patch.BadgeRewardID.Value)
		}
	}

	return set
}

func (r *missionRepository) UpdateStatus(ctx context.Context, id string, status models.MissionStatus) (bool, error) {
	result, err := r.ExecContext(ctx, `UPDATE missions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update mission status: %w", err)
	}
	return r.rowsAffected(result)
}

// ===============================
// DELETE
// ===============================

// Delete removes the mission; tasks and skills cascade in the schema
func (r *missionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM missions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete mission %s: %w", id, err)
	}

	deleted, err := r.rowsAffected(result)
	if err != nil {
		return false, err
	}
	if deleted {
		r.GetLogger().Info("Mission deleted successfully", zap.String("mission_id", id))
	}
	return deleted, nil
}

// ===============================
// SCANNING
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMissionWithBadge(row rowScanner) (*models.Mission, error) {
	var (
		m           models.Mission
		timeLimit   sql.NullInt64
		badgeReward sql.NullString

		badgeID, badgeName, badgeDescription sql.NullString
		badgeImage, badgeRarity, badgeCat    sql.NullString
	)

	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Category, &m.Difficulty, &m.Points,
		&timeLimit, &m.Status, &m.CompletionCriteria, &badgeReward,
		&m.CreatedBy, &m.CreatedAt,
		&badgeID, &badgeName, &badgeDescription, &badgeImage, &badgeRarity, &badgeCat,
	)
	if err != nil {
		return nil, err
	}

	if timeLimit.Valid {
		v := int(timeLimit.Int64)
		m.TimeLimit = &v
	}
	if badgeReward.Valid {
		v := badgeReward.String
		m.BadgeRewardID = &v
	}
	if badgeID.Valid {
		m.BadgeReward = &models.Badge{
			ID:          badgeID.String,
			Name:        badgeName.String,
			Description: badgeDescription.String,
			ImageURL:    badgeImage.String,
			Rarity:      models.BadgeRarity(badgeRarity.String),
			Category:    models.MissionCategory(badgeCat.String),
		}
	}

	return &m, nil
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
