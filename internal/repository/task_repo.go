package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// taskOrder sorts by priority (highest first, unscored last) then nearest deadline.
const taskOrder = "CASE WHEN priority IS NULL THEN 1 ELSE 0 END ASC, priority DESC, deadline ASC, id ASC"

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	ListForClass(ctx context.Context, classID, viewerID uint) ([]models.Task, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes the task and its progress rows in one transaction.
func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.ProgressRecord{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListForClass returns the class-wide tasks of a class plus the viewer's own
// individual tasks attached to it.
func (r *taskRepository) ListForClass(ctx context.Context, classID, viewerID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Where("type = ? OR (type = ? AND created_by = ?)", models.TaskTypeClass, models.TaskTypeIndividual, viewerID).
		Order(taskOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListForUser returns the user's individual tasks and the class-wide tasks of
// every class the user is enrolled in.
func (r *taskRepository) ListForUser(ctx context.Context, userID uint) ([]models.Task, error) {
	enrolled := r.db.Model(&models.Enrollment{}).Select("class_id").Where("user_id = ?", userID)

	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("(type = ? AND created_by = ?) OR (type = ? AND class_id IN (?))",
			models.TaskTypeIndividual, userID, models.TaskTypeClass, enrolled).
		Order(taskOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
