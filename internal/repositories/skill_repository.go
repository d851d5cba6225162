package repositories

import (
	"context"
	"fmt"

	"careerquest/internal/database"
	"careerquest/internal/models"

	"go.uber.org/zap"
)

type skillRepository struct {
	*BaseRepository
}

// NewSkillRepository creates a mission skill repository over db
func NewSkillRepository(db database.Querier, logger *zap.Logger) SkillRepository {
	return &skillRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *skillRepository) ListByMission(ctx context.Context, missionID string) ([]models.Skill, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT skill_name, skill_category FROM mission_skills WHERE mission_id = $1 ORDER BY skill_name`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills for mission %s: %w", missionID, err)
	}
	defer rows.Close()

	skills := make([]models.Skill, 0)
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *skillRepository) BulkCreate(ctx context.Context, missionID string, skills []models.Skill) error {
	if len(skills) == 0 {
		return nil
	}

	values := make([][]interface{}, len(skills))
	for i, s := range skills {
		values[i] = []interface{}{missionID, s.Name, s.Category}
	}

	if _, err := r.BulkInsert(ctx, "mission_skills",
		[]string{"mission_id", "skill_name", "skill_category"}, values); err != nil {
		return fmt.Errorf("failed to insert skills: %w", err)
	}
	return nil
}

func (r *skillRepository) DeleteByMission(ctx context.Context, missionID string) (int64, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM mission_skills WHERE mission_id = $1`, missionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete skills of mission %s: %w", missionID, err)
	}
	return result.RowsAffected()
}
