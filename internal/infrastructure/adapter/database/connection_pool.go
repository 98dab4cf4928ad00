package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// PoolSnapshot is one reading of the connection pool
type PoolSnapshot struct {
	Open      int
	Idle      int
	InUse     int
	MaxOpen   int
	WaitCount int64
	WaitTime  time.Duration
}

func snapshotOf(stats sql.DBStats) PoolSnapshot {
	return PoolSnapshot{
		Open:      stats.OpenConnections,
		Idle:      stats.Idle,
		InUse:     stats.InUse,
		MaxOpen:   stats.MaxOpenConnections,
		WaitCount: stats.WaitCount,
		WaitTime:  stats.WaitDuration,
	}
}

// Saturated reports whether more than 80% of a multi-connection pool is busy.
// The single sqlite connection is busy whenever a claim is running.
func (s PoolSnapshot) Saturated() bool {
	return s.MaxOpen > 1 && s.InUse*5 > s.MaxOpen*4
}

func (s PoolSnapshot) fields() map[string]any {
	return map[string]any{
		"open":       s.Open,
		"idle":       s.Idle,
		"in_use":     s.InUse,
		"max_open":   s.MaxOpen,
		"wait_count": s.WaitCount,
		"wait_time":  s.WaitTime.String(),
	}
}

// PoolMonitor samples the pool on an interval. Claims serialize on rows, so
// callers waiting for a connection show up here before they show up as latency.
type PoolMonitor struct {
	db     *gorm.DB
	logger coreport.Logger

	mu   sync.RWMutex
	last PoolSnapshot
}

// NewPoolMonitor creates a monitor for db
func NewPoolMonitor(db *gorm.DB, logger coreport.Logger) *PoolMonitor {
	return &PoolMonitor{db: db, logger: logger}
}

// Run samples until ctx is done
func (m *PoolMonitor) Run(ctx context.Context, interval time.Duration) error {
	if _, err := m.Sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.Sample(); err != nil {
				m.logger.Error("Failed to sample connection pool", coreport.ErrorFields(err, nil))
			}
		}
	}
}

// Sample takes one reading, logging when the pool is saturated or when
// callers started queueing since the previous reading
func (m *PoolMonitor) Sample() (PoolSnapshot, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return PoolSnapshot{}, err
	}
	snap := snapshotOf(sqlDB.Stats())

	m.mu.Lock()
	prev := m.last
	m.last = snap
	m.mu.Unlock()

	switch {
	case snap.Saturated():
		m.logger.Warn("Database connection pool nearly exhausted", snap.fields())
	case snap.WaitCount > prev.WaitCount:
		fields := snap.fields()
		fields["new_waits"] = snap.WaitCount - prev.WaitCount
		m.logger.Debug("Callers waited for a database connection", fields)
	}
	return snap, nil
}

// Last returns the most recent reading
func (m *PoolMonitor) Last() PoolSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// HealthStatus is the result of one database probe
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
	Pool    PoolSnapshot
}

// HealthChecker pings the database for the health route
type HealthChecker struct {
	db           *gorm.DB
	timeout      time.Duration
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewHealthChecker creates a checker; a non-positive timeout means five seconds
func NewHealthChecker(db *gorm.DB, timeout time.Duration, logger coreport.Logger, timeProvider coreport.TimeProvider) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{db: db, timeout: timeout, logger: logger, timeProvider: timeProvider}
}

// Check pings the database and reads the pool
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	start := h.timeProvider.Now()

	sqlDB, err := h.db.DB()
	if err != nil {
		return HealthStatus{Error: err.Error()}
	}

	if err := ping(ctx, h.db, h.timeout); err != nil {
		h.logger.Error("Database ping failed", coreport.ErrorFields(err, nil))
		return HealthStatus{Error: err.Error()}
	}

	return HealthStatus{
		Healthy: true,
		Latency: h.timeProvider.Since(start).Std(),
		Pool:    snapshotOf(sqlDB.Stats()),
	}
}
