package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusOverdue   TaskStatus = "OVERDUE"
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusOverdue, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityNormal TaskPriority = "NORMAL"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// ValidTaskPriority reports whether p is one of the known priorities.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description" gorm:"not null"`
	DueTime     time.Time    `json:"dueTime" gorm:"not null"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(16);not null;default:'NORMAL'"`
	CreatorID   uuid.UUID    `json:"creatorId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
