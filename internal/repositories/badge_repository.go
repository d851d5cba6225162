package repositories

import (
	"context"
	"fmt"

	"careerquest/internal/database"
	"careerquest/internal/models"

	"go.uber.org/zap"
)

type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a read-only badge catalog repository
func NewBadgeRepository(db database.Querier, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const badgeColumns = `id, name, description, image_url, rarity, category`

func (r *badgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	rows, err := r.QueryContext(ctx, `SELECT `+badgeColumns+` FROM badges ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	badges := make([]*models.Badge, 0)
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badges: %w", err)
	}

	return badges, nil
}

func (r *badgeRepository) GetByID(ctx context.Context, id string) (*models.Badge, error) {
	badge, err := scanBadge(r.QueryRowContext(ctx, `SELECT `+badgeColumns+` FROM badges WHERE id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge %s: %w", id, err)
	}
	return badge, nil
}

func scanBadge(row rowScanner) (*models.Badge, error) {
	var b models.Badge
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.ImageURL, &b.Rarity, &b.Category); err != nil {
		return nil, err
	}
	return &b, nil
}
