package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskly/backend/internal/cache"
	"taskly/backend/internal/events"
	"taskly/backend/internal/models"
)

const userTasksTTL = 5 * time.Minute

// CachedTaskService wraps a TaskService with a per-user list cache. Its own
// mutations invalidate inline; it also subscribes to the task event bus so
// mutations made elsewhere (the background sweeper marking tasks missed)
// drop the owner's cached list too.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
	unsubscribe func()
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache, bus *events.Bus) *CachedTaskService {
	s := &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
	if bus != nil {
		s.unsubscribe = bus.Subscribe(func(evt events.TaskEvent) {
			if evt.Type == events.TaskMissed {
				s.invalidateUser(evt.UserID)
			}
		})
	}
	return s
}

// Close detaches the service from the event bus.
func (s *CachedTaskService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func userTasksKey(userID string) string {
	return fmt.Sprintf("user_tasks:%s", userID)
}

func (s *CachedTaskService) invalidateUser(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	s.cache.Delete(ctx, userTasksKey(userID))
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID string) ([]models.Task, error) {
	key := userTasksKey(userID)

	var cached []models.Task
	if err := s.cache.Get(context.Background(), key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.taskService.ListTasks(db, userID)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed cache write must not fail the read.
	s.cache.Set(context.Background(), key, tasks, userTasksTTL)

	return tasks, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) error {
	if err := s.taskService.CreateTask(db, task); err != nil {
		return err
	}
	s.invalidateUser(task.UserID)
	return nil
}

func (s *CachedTaskService) GetTask(db *gorm.DB, id uuid.UUID, userID string) (models.Task, error) {
	return s.taskService.GetTask(db, id, userID)
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id uuid.UUID, userID string, updated models.Task) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, id, userID, updated)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidateUser(userID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id uuid.UUID, userID string) error {
	if err := s.taskService.DeleteTask(db, id, userID); err != nil {
		return err
	}
	s.invalidateUser(userID)
	return nil
}
