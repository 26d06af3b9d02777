package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle state of an assignment
type TaskStatus string

const (
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ParseTaskStatus validates a status string from a request body.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusAssigned, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return TaskStatus(s), true
	default:
		return "", false
	}
}

// taskTransitions lists the allowed next statuses for each status. Completed
// and cancelled are terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusAssigned:   {TaskStatusInProgress, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to TaskStatus) bool {
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Task is the unit of work created when an admin assigns a service request
// to a field worker. Each request has at most one task; the unique index on
// ServiceRequestID enforces that at the storage layer.
type Task struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	ServiceRequestID uint            `json:"service_request_id" gorm:"not null;uniqueIndex"`
	ServiceRequest   *ServiceRequest `json:"service_request,omitempty" gorm:"foreignKey:ServiceRequestID"`
	FieldWorkerID    uint            `json:"field_worker_id" gorm:"not null;index"`
	FieldWorker      *User           `json:"field_worker,omitempty" gorm:"foreignKey:FieldWorkerID"`
	AssignedBy       uint            `json:"assigned_by" gorm:"not null"`
	Status           TaskStatus      `json:"status" gorm:"type:varchar(20);not null;default:'assigned';index"`
	AssignedAt       time.Time       `json:"assigned_at"`
	StartedAt        *time.Time      `json:"started_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
	CompletionNotes  string          `json:"completion_notes" gorm:"type:text"`
	CompletionPhotos []string        `json:"completion_photos,omitempty" gorm:"serializer:json"`
	CustomerRating   *int            `json:"customer_rating"`
	CustomerFeedback string          `json:"customer_feedback" gorm:"type:text"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// IsRated reports whether the customer has already rated this task.
func (t *Task) IsRated() bool {
	return t.CustomerRating != nil
}

// TaskAssign is the payload for assigning a request to a field worker
type TaskAssign struct {
	ServiceRequestID uint `json:"service_request_id" binding:"required"`
	FieldWorkerID    uint `json:"field_worker_id" binding:"required"`
}

// TaskStatusUpdate is the payload for advancing a task through its lifecycle
type TaskStatusUpdate struct {
	Status           string   `json:"status" binding:"required"`
	CompletionNotes  string   `json:"completion_notes"`
	CompletionPhotos []string `json:"completion_photos"`
}

// TaskRate is the payload for a customer rating a completed task
type TaskRate struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}
