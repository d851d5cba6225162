// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"careerquest/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection and
// implements Store over the connection manager.
type Collection struct {
	Mission MissionRepository
	Task    TaskRepository
	Skill   SkillRepository
	Badge   BadgeRepository

	db     *database.Manager
	tx     *sql.Tx
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	collection := newBoundCollection(db, logger)
	collection.db = db

	logger.Info("Repository collection initialized successfully")
	return collection, nil
}

func newBoundCollection(q database.Querier, logger *zap.Logger) *Collection {
	return &Collection{
		Mission: NewMissionRepository(q, logger),
		Task:    NewTaskRepository(q, logger),
		Skill:   NewSkillRepository(q, logger),
		Badge:   NewBadgeRepository(q, logger),
		logger:  logger,
	}
}

func (c *Collection) Missions() MissionRepository { return c.Mission }
func (c *Collection) Tasks() TaskRepository       { return c.Task }
func (c *Collection) Skills() SkillRepository     { return c.Skill }
func (c *Collection) Badges() BadgeRepository     { return c.Badge }

// ===============================
// TRANSACTION MANAGEMENT
// ===============================

// WithTransaction runs fn with a collection whose repositories share one
// transaction. It commits when fn returns nil and rolls back otherwise. A
// collection that is already inside a transaction reuses it.
func (c *Collection) WithTransaction(ctx context.Context, fn func(tx Store) error) (err error) {
	if c.tx != nil {
		return fn(c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txCollection := newBoundCollection(tx, c.logger)
	txCollection.db = c.db
	txCollection.tx = tx

	if err := fn(txCollection); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("Failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close releases the underlying database connection
func (c *Collection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

var _ Store = (*Collection)(nil)
