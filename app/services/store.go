package services

import (
	"context"
	"errors"
	"fmt"

	"todo-web/app/config"
	"todo-web/app/models"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no item has the requested serial number.
var ErrNotFound = errors.New("todo not found")

// TodoChanges lists the fields to overwrite on update. Nil fields keep
// their stored value.
type TodoChanges struct {
	Title *string
	Desc  *string
}

// TodoStore is the persistence contract behind every request handler.
type TodoStore interface {
	// List returns all items, most recently created first.
	List(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, sno uint) (*models.Todo, error)
	Create(ctx context.Context, title, desc string) (*models.Todo, error)
	Update(ctx context.Context, sno uint, changes TodoChanges) (*models.Todo, error)
	Delete(ctx context.Context, sno uint) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (TodoStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		logger.Info("Connecting to SQLite database", zap.String("dsn", cfg.DSN))
		db, err := config.InitGorm(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormTodoService(db), nil

	case config.DriverNeo4j:
		logger.Info("Connecting to Neo4j", zap.String("uri", cfg.Neo4j.URI))
		driver, err := config.InitNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Neo4j connection: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(ctx)
			return nil, fmt.Errorf("failed to reach Neo4j: %w", err)
		}
		return NewNeo4jTodoService(driver, cfg.Neo4j.Database), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
