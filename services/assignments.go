package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"field-service-server/models"
)

// AssignmentService owns the task lifecycle: creating tasks from open
// requests, advancing their status, and keeping the paired request's status
// in lockstep. Every write that touches both records runs in one
// transaction.
type AssignmentService struct {
	db *gorm.DB
}

// NewAssignmentService creates an assignment service backed by db.
func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// Assign creates a task binding an open request to an approved, active
// field worker. The request moves to assigned and records the worker.
func (s *AssignmentService) Assign(requestID, workerID, adminID uint) (*models.Task, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if !request.IsOpen() {
		return nil, ErrRequestNotOpen
	}

	var existing models.Task
	err = s.db.Where("service_request_id = ?", requestID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyAssigned
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var worker models.User
	err = s.db.First(&worker, workerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !worker.CanBeAssigned() {
		return nil, ErrWorkerNotAssignable
	}

	task := models.Task{
		ServiceRequestID: requestID,
		FieldWorkerID:    workerID,
		AssignedBy:       adminID,
		Status:           models.TaskStatusAssigned,
		AssignedAt:       time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAssigned
			}
			return err
		}

		return tx.Model(&request).Updates(map[string]interface{}{
			"status":                   models.RequestStatusAssigned,
			"assigned_field_worker_id": workerID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// Get fetches one task, enforcing visibility: field workers see their own
// tasks, customers see tasks on their own requests, admins see everything.
func (s *AssignmentService) Get(id uint, caller *models.User) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("ServiceRequest").Preload("FieldWorker").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.authorize(&task, caller); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *AssignmentService) authorize(task *models.Task, caller *models.User) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleFieldWorker:
		if task.FieldWorkerID != caller.ID {
			return ErrForbidden
		}
		return nil
	case models.RoleCustomer:
		var request models.ServiceRequest
		if task.ServiceRequest != nil {
			request = *task.ServiceRequest
		} else if err := s.db.First(&request, task.ServiceRequestID).Error; err != nil {
			return err
		}
		if request.CustomerID != caller.ID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// List returns tasks visible to the caller, optionally filtered by status,
// newest first.
func (s *AssignmentService) List(caller *models.User, status string, page, limit int) ([]models.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.db.Model(&models.Task{})

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleFieldWorker:
		query = query.Where("field_worker_id = ?", caller.ID)
	case models.RoleCustomer:
		query = query.
			Joins("JOIN service_requests ON service_requests.id = tasks.service_request_id AND service_requests.deleted_at IS NULL").
			Where("service_requests.customer_id = ?", caller.ID)
	default:
		return nil, 0, ErrForbidden
	}

	if status != "" {
		parsed, ok := models.ParseTaskStatus(status)
		if !ok {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("tasks.status = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	offset := (page - 1) * limit
	err := query.Preload("ServiceRequest").Preload("FieldWorker").
		Offset(offset).Limit(limit).Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateStatus advances a task through its lifecycle and mirrors the new
// status onto the paired request. Only the assigned field worker or an
// admin may move a task. Re-submitting the current status is accepted
// without effect, except that a repeated completion may still revise the
// completion notes and photos; completedAt and startedAt are stamped once
// and never move.
func (s *AssignmentService) UpdateStatus(taskID uint, caller *models.User, input models.TaskStatusUpdate) (*models.Task, error) {
	next, ok := models.ParseTaskStatus(input.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var task models.Task
	err := s.db.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		if !caller.IsFieldWorker() || task.FieldWorkerID != caller.ID {
			return nil, ErrForbidden
		}
	}

	if task.Status == next {
		// Idempotent re-entry. A repeated completion may revise notes and
		// photos; nothing else changes.
		if next == models.TaskStatusCompleted {
			if input.CompletionNotes != "" {
				task.CompletionNotes = input.CompletionNotes
			}
			if len(input.CompletionPhotos) > 0 {
				task.CompletionPhotos = input.CompletionPhotos
			}
			if err := s.db.Save(&task).Error; err != nil {
				return nil, err
			}
		}
		return &task, nil
	}

	if !models.CanTransition(task.Status, next) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	switch next {
	case models.TaskStatusInProgress:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case models.TaskStatusCompleted:
		if task.CompletedAt == nil {
			task.CompletedAt = &now
		}
		if input.CompletionNotes != "" {
			task.CompletionNotes = input.CompletionNotes
		}
		if len(input.CompletionPhotos) > 0 {
			task.CompletionPhotos = input.CompletionPhotos
		}
	}
	task.Status = next

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		return MirrorTaskStatus(tx, &task)
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// AppendPhoto attaches an uploaded completion photo to a task. The worker
// assigned to the task or an admin may attach photos once work has started.
func (s *AssignmentService) AppendPhoto(taskID uint, caller *models.User, url string) (*models.Task, error) {
	var task models.Task
	err := s.db.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		if !caller.IsFieldWorker() || task.FieldWorkerID != caller.ID {
			return nil, ErrForbidden
		}
	}
	if task.Status != models.TaskStatusInProgress && task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotStarted
	}

	task.CompletionPhotos = append(task.CompletionPhotos, url)
	if err := s.db.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// MirrorTaskStatus copies a task's status onto its request. A cancelled
// task also releases the worker so the request's assignment pointer is only
// set while the status implies an assignment. The reconcile job reuses this
// to repair drifted pairs.
func MirrorTaskStatus(tx *gorm.DB, task *models.Task) error {
	updates := map[string]interface{}{
		"status": models.RequestStatus(task.Status),
	}
	if task.Status == models.TaskStatusCancelled {
		updates["assigned_field_worker_id"] = nil
	}
	return tx.Model(&models.ServiceRequest{}).
		Where("id = ?", task.ServiceRequestID).
		Updates(updates).Error
}
