package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	ResponseTime    time.Duration          `json:"response_time"`
	ConnectionCount int                    `json:"connection_count"`
	Errors          []string               `json:"errors,omitempty"`
	Details         map[string]interface{} `json:"details"`
	Summary         *HealthSummary         `json:"summary,omitempty"`
}

// HealthSummary provides aggregated health information
type HealthSummary struct {
	CriticalIssues int        `json:"critical_issues"`
	Warnings       int        `json:"warnings"`
	LastHealthy    *time.Time `json:"last_healthy,omitempty"`
}

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker probes connectivity, pool pressure and table access
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu          sync.RWMutex
	lastStatus  *HealthStatus
	lastHealthy *time.Time

	timeout        time.Duration
	criticalTables []string
}

// NewHealthChecker creates a checker bound to the manager's pool
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager:        manager,
		logger:         logger,
		timeout:        5 * time.Second,
		criticalTables: []string{"missions", "mission_tasks", "mission_skills", "badges"},
	}
}

// Check runs every probe and returns the aggregated status
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Details:   make(map[string]interface{}),
		Summary:   &HealthSummary{},
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	db := hc.manager.DB()
	if err := hc.checkConnectivity(ctx, db, status); err != nil {
		status.Errors = append(status.Errors, err.Error())
	} else {
		hc.checkConnectionPool(db.Stats(), status)
		if err := hc.checkTableAccess(ctx, db, status); err != nil {
			status.Errors = append(status.Errors, err.Error())
		}
	}

	status.ResponseTime = time.Since(start)
	status.Status = determineOverallStatus(status)

	hc.mu.Lock()
	if status.Status == StatusHealthy {
		now := time.Now()
		hc.lastHealthy = &now
	}
	status.Summary.LastHealthy = hc.lastHealthy
	hc.lastStatus = status
	hc.mu.Unlock()

	if status.Status != StatusHealthy {
		hc.logger.Warn("Database health degraded",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
			zap.Int("warnings", status.Summary.Warnings),
		)
	}

	return status
}

// LastStatus returns the most recent check result, or nil
func (hc *HealthChecker) LastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastStatus
}

func (hc *HealthChecker) checkConnectivity(ctx context.Context, db *sql.DB, status *HealthStatus) error {
	if db == nil {
		status.Summary.CriticalIssues++
		return fmt.Errorf("database connection is nil")
	}

	start := time.Now()
	err := db.PingContext(ctx)
	pingDuration := time.Since(start)

	status.Details["ping_duration"] = pingDuration
	status.Details["ping_success"] = err == nil

	if pingDuration > 500*time.Millisecond {
		status.Details["ping_warning"] = "Slow ping response"
		status.Summary.Warnings++
	}

	if err != nil {
		status.Summary.CriticalIssues++
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (hc *HealthChecker) checkConnectionPool(stats sql.DBStats, status *HealthStatus) {
	status.ConnectionCount = stats.OpenConnections
	status.Details["pool"] = map[string]interface{}{
		"max_open":   stats.MaxOpenConnections,
		"open":       stats.OpenConnections,
		"in_use":     stats.InUse,
		"idle":       stats.Idle,
		"wait_count": stats.WaitCount,
	}

	if stats.MaxOpenConnections > 0 && stats.InUse*10 >= stats.MaxOpenConnections*9 {
		status.Details["pool_warning"] = "Connection pool nearly exhausted"
		status.Summary.Warnings++
	}
}

func (hc *HealthChecker) checkTableAccess(ctx context.Context, db *sql.DB, status *HealthStatus) error {
	tableResults := make(map[string]interface{}, len(hc.criticalTables))

	for _, table := range hc.criticalTables {
		start := time.Now()
		var exists bool
		err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s LIMIT 1)", table)).Scan(&exists)
		duration := time.Since(start)

		tableResults[table] = map[string]interface{}{
			"accessible":  err == nil,
			"duration_ms": duration.Milliseconds(),
		}

		if err != nil {
			status.Summary.CriticalIssues++
			status.Details["table_access"] = tableResults
			return fmt.Errorf("cannot access table %s: %w", table, err)
		}
	}

	status.Details["table_access"] = tableResults
	return nil
}

func determineOverallStatus(status *HealthStatus) string {
	if status.Summary.CriticalIssues > 0 || len(status.Errors) > 0 {
		return StatusUnhealthy
	}
	if status.Summary.Warnings > 0 || status.ResponseTime > time.Second {
		return StatusDegraded
	}
	return StatusHealthy
}
