package database

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskly/backend/internal/config"
	"taskly/backend/internal/models"
)

// OpenFunc opens a database handle. Swappable in tests.
type OpenFunc func() (*gorm.DB, error)

// Connector hands out a single shared *gorm.DB per process, opened lazily on
// first Acquire. Concurrent first callers coalesce onto one in-flight attempt
// instead of racing; once established, every later call returns the cached
// handle immediately. A failed attempt clears the guard so the next caller
// retries rather than being stuck with a poisoned result.
type Connector struct {
	open OpenFunc

	mu       sync.Mutex
	conn     *gorm.DB
	err      error
	inflight chan struct{}
}

func NewConnector(cfg *config.Config) *Connector {
	return &Connector{open: func() (*gorm.DB, error) {
		return openGorm(cfg)
	}}
}

// NewConnectorWithOpen is used by tests to stub the dial.
func NewConnectorWithOpen(open OpenFunc) *Connector {
	return &Connector{open: open}
}

func (c *Connector) Acquire(ctx context.Context) (*gorm.DB, error) {
	c.mu.Lock()
	if c.conn != nil {
		conn := c.conn
		c.mu.Unlock()
		return conn, nil
	}

	if c.inflight == nil {
		done := make(chan struct{})
		c.inflight = done
		go func() {
			conn, err := c.open()

			c.mu.Lock()
			c.conn, c.err = conn, err
			c.inflight = nil
			c.mu.Unlock()
			close(done)
		}()
	}
	done := c.inflight
	c.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	return nil, c.err
}

func openGorm(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if !cfg.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the task and user tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}
