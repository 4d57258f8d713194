package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-web/app/models"

	"gorm.io/gorm"
)

// GormTodoService stores items in a relational database through GORM.
type GormTodoService struct {
	db  *gorm.DB
	now func() time.Time
}

var _ TodoStore = (*GormTodoService)(nil)

// NewGormTodoService creates a new instance of GormTodoService.
func NewGormTodoService(db *gorm.DB) *GormTodoService {
	return &GormTodoService{db: db, now: time.Now}
}

// Migrate creates the todo table if it does not exist.
func (s *GormTodoService) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Todo{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// List retrieves all items ordered by creation time, newest first.
func (s *GormTodoService) List(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.WithContext(ctx).
		Order("date_created DESC").
		Order("sno DESC").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get retrieves a single item by its serial number.
func (s *GormTodoService) Get(ctx context.Context, sno uint) (*models.Todo, error) {
	var todo models.Todo
	if err := s.db.WithContext(ctx).First(&todo, "sno = ?", sno).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return &todo, nil
}

// Create inserts a new item stamped with the current time.
func (s *GormTodoService) Create(ctx context.Context, title, desc string) (*models.Todo, error) {
	todo := &models.Todo{
		Title:       title,
		Desc:        desc,
		DateCreated: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(todo).Error; err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// Update overwrites the title and description fields named in changes.
func (s *GormTodoService) Update(ctx context.Context, sno uint, changes TodoChanges) (*models.Todo, error) {
	var todo models.Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&todo, "sno = ?", sno).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find todo: %w", err)
		}

		// a map so that empty strings are written too
		fields := map[string]any{}
		if changes.Title != nil {
			fields["title"] = *changes.Title
		}
		if changes.Desc != nil {
			fields["desc"] = *changes.Desc
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&models.Todo{}).Where("sno = ?", sno).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		if changes.Title != nil {
			todo.Title = *changes.Title
		}
		if changes.Desc != nil {
			todo.Desc = *changes.Desc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete removes an item by serial number.
func (s *GormTodoService) Delete(ctx context.Context, sno uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Todo{}, "sno = ?", sno)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *GormTodoService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *GormTodoService) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
