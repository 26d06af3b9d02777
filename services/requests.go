package services

import (
	"errors"

	"gorm.io/gorm"

	"field-service-server/models"
)

// RequestService owns the service request ledger: creation, role-scoped
// reads, and owner edits while a request is still open. Assignment and
// status mirroring are the AssignmentService's job.
type RequestService struct {
	db *gorm.DB
}

// NewRequestService creates a request service backed by db.
func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

// Create opens a new service request owned by the given customer.
func (s *RequestService) Create(customerID uint, input models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	request := models.ServiceRequest{
		CustomerID:    customerID,
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		Urgency:       models.RequestUrgency(input.Urgency),
		Category:      input.Category,
		Status:        models.RequestStatusOpen,
		Budget:        input.Budget,
		PreferredDate: input.PreferredDate,
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// Get fetches one request, enforcing visibility: customers see their own,
// field workers see requests assigned to them, admins see everything.
func (s *RequestService) Get(id uint, caller *models.User) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.Preload("Customer").Preload("AssignedFieldWorker").First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		if request.CustomerID != caller.ID {
			return nil, ErrForbidden
		}
	case models.RoleFieldWorker:
		if request.AssignedFieldWorkerID == nil || *request.AssignedFieldWorkerID != caller.ID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	return &request, nil
}

// List returns requests visible to the caller, optionally filtered by
// status, newest first.
func (s *RequestService) List(caller *models.User, status string, page, limit int) ([]models.ServiceRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.db.Model(&models.ServiceRequest{})

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", caller.ID)
	case models.RoleFieldWorker:
		query = query.Where("assigned_field_worker_id = ?", caller.ID)
	default:
		return nil, 0, ErrForbidden
	}

	if status != "" {
		if !models.ValidRequestStatus(status) {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.ServiceRequest
	offset := (page - 1) * limit
	err := query.Preload("AssignedFieldWorker").
		Offset(offset).Limit(limit).Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update edits a request's details. Only the owner may edit, and only while
// the request has not yet been assigned.
func (s *RequestService) Update(id uint, caller *models.User, input models.ServiceRequestUpdate) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if request.CustomerID != caller.ID {
		return nil, ErrForbidden
	}
	if !request.IsOpen() {
		return nil, ErrRequestNotEditable
	}

	if input.Title != nil {
		request.Title = *input.Title
	}
	if input.Description != nil {
		request.Description = *input.Description
	}
	if input.Location != nil {
		request.Location = *input.Location
	}
	if input.Urgency != nil {
		request.Urgency = models.RequestUrgency(*input.Urgency)
	}
	if input.Category != nil {
		request.Category = *input.Category
	}
	if input.Budget != nil {
		request.Budget = input.Budget
	}
	if input.PreferredDate != nil {
		request.PreferredDate = input.PreferredDate
	}

	if err := s.db.Save(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// Cancel withdraws a still-open request. Once a task exists, cancellation
// goes through the task lifecycle instead so the two stay in sync.
func (s *RequestService) Cancel(id uint, caller *models.User) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if request.CustomerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if !request.IsOpen() {
		return nil, ErrRequestNotOpen
	}

	request.Status = models.RequestStatusCancelled
	if err := s.db.Save(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}
