package services

import (
	"go.uber.org/zap"
)

// Result pairs an operation's value with its error. Operations are
// implemented as (T, error) internally; each public method picks exactly
// one policy at the boundary: Surface returns the failure, Swallow logs it
// and hands back a fallback.
type Result[T any] struct {
	Value T
	Err   error
}

func resultOf[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Err: err}
}

// Surface logs a failure and returns it to the caller
func (r Result[T]) Surface(logger *zap.Logger, operation string, fields ...zap.Field) (T, error) {
	if r.Err != nil {
		logFailure(logger, operation, r.Err, fields...)
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

// Swallow logs a failure and returns fallback in its place
func (r Result[T]) Swallow(logger *zap.Logger, operation string, fallback T, fields ...zap.Field) T {
	if r.Err != nil {
		logFailure(logger, operation, r.Err, fields...)
		return fallback
	}
	return r.Value
}

func logFailure(logger *zap.Logger, operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.Error(err))

	switch {
	case IsNotFoundError(err), IsValidationError(err), IsTaskSetMismatchError(err):
		logger.Warn("Mission operation rejected", fields...)
	default:
		logger.Error("Mission operation failed", fields...)
	}
}
