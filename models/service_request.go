package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestStatus represents the current status of a service request
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in-progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// ValidRequestStatus reports whether s is a known request status. Used to
// validate list filters before they reach the database.
func ValidRequestStatus(s string) bool {
	switch RequestStatus(s) {
	case RequestStatusOpen, RequestStatusAssigned, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

type RequestUrgency string

const (
	UrgencyLow      RequestUrgency = "low"
	UrgencyMedium   RequestUrgency = "medium"
	UrgencyHigh     RequestUrgency = "high"
	UrgencyCritical RequestUrgency = "critical"
)

// ServiceRequest represents a customer's request for field service work.
// Status always mirrors the request's task once one exists; the assigned
// worker pointer is set exactly while the status is assigned, in-progress,
// or completed.
type ServiceRequest struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	CustomerID            uint           `json:"customer_id" gorm:"not null;index"`
	Customer              *User          `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Title                 string         `json:"title" gorm:"type:varchar(200);not null"`
	Description           string         `json:"description" gorm:"type:text"`
	Location              string         `json:"location" gorm:"type:text;not null"`
	Urgency               RequestUrgency `json:"urgency" gorm:"type:varchar(20);not null;default:'medium'"`
	Category              string         `json:"category" gorm:"type:varchar(100)"`
	Status                RequestStatus  `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	Budget                *float64       `json:"budget" gorm:"type:decimal(10,2)"`
	PreferredDate         *time.Time     `json:"preferred_date"`
	AssignedFieldWorkerID *uint          `json:"assigned_field_worker_id"`
	AssignedFieldWorker   *User          `json:"assigned_field_worker,omitempty" gorm:"foreignKey:AssignedFieldWorkerID"`
	CustomerRating        *int           `json:"customer_rating"`
	CustomerFeedback      string         `json:"customer_feedback" gorm:"type:text"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the ServiceRequest model
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// IsOpen reports whether the request can still be edited, cancelled, or
// assigned.
func (r *ServiceRequest) IsOpen() bool {
	return r.Status == RequestStatusOpen
}

// ServiceRequestCreate is the payload for creating a service request
type ServiceRequestCreate struct {
	Title         string     `json:"title" binding:"required,min=3,max=200"`
	Description   string     `json:"description"`
	Location      string     `json:"location" binding:"required"`
	Urgency       string     `json:"urgency" binding:"required,oneof=low medium high critical"`
	Category      string     `json:"category"`
	Budget        *float64   `json:"budget"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// ServiceRequestUpdate is the payload for editing a still-open request.
// Pointer fields distinguish absent from zero-valued.
type ServiceRequestUpdate struct {
	Title         *string    `json:"title" binding:"omitempty,min=3,max=200"`
	Description   *string    `json:"description"`
	Location      *string    `json:"location"`
	Urgency       *string    `json:"urgency" binding:"omitempty,oneof=low medium high critical"`
	Category      *string    `json:"category"`
	Budget        *float64   `json:"budget"`
	PreferredDate *time.Time `json:"preferred_date"`
}
