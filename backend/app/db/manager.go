package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	maxBackoff    = 30 * time.Second
	backoffFactor = 1.5
)

// Status is the snapshot served by the database status endpoint.
type Status struct {
	Connected bool      `json:"connected"`
	Driver    string    `json:"driver"`
	LastCheck time.Time `json:"lastCheck"`
	LastError string    `json:"lastError,omitempty"`
	OpenConns int       `json:"openConnections"`
	InUse     int       `json:"inUse"`
	Idle      int       `json:"idle"`
}

type ManagerOptions struct {
	Driver         string
	HealthInterval time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	// OnConnect runs after the first successful ping (migrations).
	OnConnect func(ctx context.Context, gdb *gorm.DB) error
}

// Manager tracks whether the pool can reach the database.
type Manager struct {
	gdb   *gorm.DB
	sqlDB *sql.DB
	opts  ManagerOptions
	log   zerolog.Logger

	connected atomic.Bool
	ready     atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	lastError string

	reconnectMu sync.Mutex
}

func NewManager(gdb *gorm.DB, opts ManagerOptions, log zerolog.Logger) (*Manager, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Manager{gdb: gdb, sqlDB: sqlDB, opts: opts, log: log.With().Str("component", "db").Logger()}, nil
}

func (m *Manager) DB() *gorm.DB   { return m.gdb }
func (m *Manager) SQL() *sql.DB   { return m.sqlDB }
func (m *Manager) Driver() string { return m.opts.Driver }

func (m *Manager) Connected() bool { return m.connected.Load() }

// Check pings the database once and records the outcome.
func (m *Manager) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := m.sqlDB.PingContext(ctx)
	if err == nil && !m.ready.Load() && m.opts.OnConnect != nil {
		if err = m.opts.OnConnect(ctx, m.gdb); err == nil {
			m.ready.Store(true)
		}
	} else if err == nil {
		m.ready.Store(true)
	}

	m.mu.Lock()
	m.lastCheck = time.Now()
	if err != nil {
		m.lastError = err.Error()
	} else {
		m.lastError = ""
	}
	m.mu.Unlock()

	was := m.connected.Swap(err == nil)
	switch {
	case err != nil && was:
		m.log.Error().Err(err).Msg("database connection lost")
	case err == nil && !was:
		m.log.Info().Str("driver", m.opts.Driver).Msg("database connected")
	}
	return err
}

// Run checks health every HealthInterval until ctx is done. When a check
// fails it falls back to Reconnect.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Check(ctx); err != nil {
				if err := m.Reconnect(ctx); err != nil && !errors.Is(err, context.Canceled) {
					m.log.Warn().Err(err).Msg("database still unreachable")
				}
			}
		}
	}
}

// Reconnect retries Check with capped exponential backoff.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.reconnectMu.Lock()
	defer m.reconnectMu.Unlock()

	if m.Connected() {
		return nil
	}

	delay := m.opts.RetryDelay
	var err error
	for attempt := 1; attempt <= m.opts.MaxRetries; attempt++ {
		if err = m.Check(ctx); err == nil {
			return nil
		}
		m.log.Warn().Err(err).Int("attempt", attempt).Int("max", m.opts.MaxRetries).Dur("retry_in", delay).Msg("database reconnect failed")
		if attempt == m.opts.MaxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
	return fmt.Errorf("reconnect after %d attempts: %w", m.opts.MaxRetries, err)
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.sqlDB.Stats()
	return Status{
		Connected: m.Connected(),
		Driver:    m.opts.Driver,
		LastCheck: m.lastCheck,
		LastError: m.lastError,
		OpenConns: st.OpenConnections,
		InUse:     st.InUse,
		Idle:      st.Idle,
	}
}

func (m *Manager) Close() error { return m.sqlDB.Close() }
