package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketpulse/internal/domain/models"
)

// TaskRepository stores the task list in a local SQLite file. The pipeline
// only reads open tasks; the HTTP layer owns create and complete.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository opens (and migrates) the task database at path.
func NewTaskRepository(path string) (*TaskRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open task db: %w", err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return nil, fmt.Errorf("migrate task db: %w", err)
	}
	return &TaskRepository{db: db}, nil
}

// Add inserts a new open task.
func (r *TaskRepository) Add(ctx context.Context, title string) (models.Task, error) {
	task := models.Task{Title: title, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Open lists tasks not yet marked done, oldest first.
func (r *TaskRepository) Open(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("done_at IS NULL").
		Order("created_at asc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

// MarkDone stamps a task as completed. Unknown ids report
// gorm.ErrRecordNotFound.
func (r *TaskRepository) MarkDone(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND done_at IS NULL", id).
		Update("done_at", time.Now())
	if res.Error != nil {
		return fmt.Errorf("mark task done: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
