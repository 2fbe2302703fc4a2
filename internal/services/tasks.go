package services

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskly/backend/internal/models"
)

// TaskService is the persistence contract for tasks. Every operation is
// scoped to the owning user: a task belonging to someone else is
// indistinguishable from a task that does not exist.
type TaskService interface {
	ListTasks(db *gorm.DB, userID string) ([]models.Task, error)
	CreateTask(db *gorm.DB, task models.Task) error
	GetTask(db *gorm.DB, id uuid.UUID, userID string) (models.Task, error)
	UpdateTask(db *gorm.DB, id uuid.UUID, userID string, updated models.Task) (models.Task, error)
	DeleteTask(db *gorm.DB, id uuid.UUID, userID string) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := db.Where("user_id = ?", userID).Order("scheduled_at asc").Find(&tasks).Error
	return tasks, err
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) error {
	return db.Create(&task).Error
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, id uuid.UUID, userID string) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	return task, err
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uuid.UUID, userID string, updated models.Task) (models.Task, error) {
	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		return models.Task{}, err
	}

	task.Title = updated.Title
	task.Description = updated.Description
	task.ScheduledAt = updated.ScheduledAt
	if updated.Status != "" {
		task.Status = updated.Status
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uuid.UUID, userID string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
