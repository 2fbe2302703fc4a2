package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	TaskStatusScheduled TaskStatus = "Scheduled"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusMissed    TaskStatus = "Missed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusScheduled, TaskStatusCompleted, TaskStatusMissed:
		return true
	}
	return false
}

// Task is a scheduled to-do item owned by exactly one user. UserID is the
// principal identifier string: a local user's uuid or a federated subject
// claim, so it is not constrained to the uuid type.
type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string     `json:"userId" gorm:"not null;index:idx_tasks_user_scheduled,priority:1"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	ScheduledAt time.Time  `json:"scheduledAt" gorm:"not null;index:idx_tasks_user_scheduled,priority:2"`
	Status      TaskStatus `json:"status" gorm:"not null;default:'Scheduled'"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
