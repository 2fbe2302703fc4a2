package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskly/backend/internal/database"
	"taskly/backend/internal/events"
	"taskly/backend/internal/middleware"
	"taskly/backend/internal/models"
	"taskly/backend/internal/services"
)

type TaskHandler struct {
	connector   *database.Connector
	taskService services.TaskService
	bus         *events.Bus
	logger      *zap.SugaredLogger
}

func NewTaskHandler(connector *database.Connector, taskService services.TaskService, bus *events.Bus, logger *zap.SugaredLogger) *TaskHandler {
	return &TaskHandler{connector: connector, taskService: taskService, bus: bus, logger: logger}
}

type taskInput struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	ScheduledAt time.Time         `json:"scheduledAt" binding:"required"`
	Status      models.TaskStatus `json:"status"`
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	tasks, err := h.taskService.ListTasks(db, userID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Scheduled Date/Time are required"})
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Scheduled Date/Time are required"})
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		ScheduledAt: input.ScheduledAt,
		Status:      models.TaskStatusScheduled,
	}

	if err := h.taskService.CreateTask(db, task); err != nil {
		h.serverError(c, err)
		return
	}

	h.publish(events.TaskCreated, task)
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := taskIDFromQuery(c)
	if !ok {
		return
	}

	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Scheduled Date/Time are required"})
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Scheduled Date/Time are required"})
		return
	}

	if input.Status != "" && !input.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(db, id, userID, models.Task{
		Title:       input.Title,
		Description: input.Description,
		ScheduledAt: input.ScheduledAt,
		Status:      input.Status,
	})
	if err != nil {
		h.taskError(c, err)
		return
	}

	h.publish(events.TaskUpdated, task)
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := taskIDFromQuery(c)
	if !ok {
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	if err := h.taskService.DeleteTask(db, id, userID); err != nil {
		h.taskError(c, err)
		return
	}

	h.publish(events.TaskDeleted, models.Task{ID: id, UserID: userID})
	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

func taskIDFromQuery(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id is required"})
		return uuid.Nil, false
	}
	id, err := uuid.FromString(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) publish(eventType events.EventType, task models.Task) {
	if h.bus != nil {
		h.bus.Publish(events.TaskEvent{Type: eventType, TaskID: task.ID, UserID: task.UserID})
	}
}

// taskError maps service failures onto the response taxonomy. A task owned by
// another user surfaces exactly like a nonexistent one.
func (h *TaskHandler) taskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	h.serverError(c, err)
}

func (h *TaskHandler) serverError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Errorw("task request failed",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
		)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
}
