package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"careerquest/internal/database"

	"go.uber.org/zap"
)

// BaseRepository provides common database operations with query logging.
// The querier is either the connection manager or an open transaction.
type BaseRepository struct {
	db     database.Querier
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db database.Querier, logger *zap.Logger) *BaseRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement with slow and failed query logging
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
			zap.Any("args", args),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", r.truncateQuery(query)),
			zap.Error(err),
			zap.Any("args", args),
		)
	}

	return result, err
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
			zap.Any("args", args),
		)
	}

	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", r.truncateQuery(query)),
			zap.Error(err),
			zap.Any("args", args),
		)
	}

	return rows, err
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, args...)

	duration := time.Since(start)
	if duration > 50*time.Millisecond {
		r.logger.Warn("Slow single-row query detected",
			zap.String("query", r.truncateQuery(query)),
			zap.Duration("duration", duration),
			zap.Any("args", args),
		)
	}

	return row
}

// ===============================
// BATCH OPERATIONS
// ===============================

// BulkInsert inserts all rows with a single multi-VALUES statement
func (r *BaseRepository) BulkInsert(ctx context.Context, table string, columns []string, values [][]interface{}) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	query, args, err := buildBulkInsert(table, columns, values)
	if err != nil {
		return 0, err
	}

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func buildBulkInsert(table string, columns []string, values [][]interface{}) (string, []interface{}, error) {
	placeholders := make([]string, len(values))
	args := make([]interface{}, 0, len(values)*len(columns))
	argIndex := 1

	for i, row := range values {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("bulk insert into %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
		rowPlaceholders := make([]string, len(columns))
		for j := range columns {
			rowPlaceholders[j] = fmt.Sprintf("$%d", argIndex)
			args = append(args, row[j])
			argIndex++
		}
		placeholders[i] = "(" + strings.Join(rowPlaceholders, ", ") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}

// ===============================
// UPDATE HELPERS
// ===============================

// setClause accumulates "column = $n" assignments for a sparse UPDATE
type setClause struct {
	parts []string
	args  []interface{}
}

func (s *setClause) add(column string, value interface{}) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) empty() bool {
	return len(s.parts) == 0
}

// where appends the arguments of the WHERE clause and returns their
// placeholders, numbered after the assignments.
func (s *setClause) where(args ...interface{}) []string {
	placeholders := make([]string, len(args))
	for i, a := range args {
		s.args = append(s.args, a)
		placeholders[i] = fmt.Sprintf("$%d", len(s.args))
	}
	return placeholders
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}

// ===============================
// UTILITY METHODS
// ===============================

// truncateQuery truncates long queries for logging
func (r *BaseRepository) truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}

// IsNotFound checks if error is a "not found" error
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// rowsAffected reports whether the statement touched at least one row
func (r *BaseRepository) rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// GetLogger returns the logger instance
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
