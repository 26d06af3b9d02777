package services

import (
	"database/sql"
	"errors"
	"math"

	"gorm.io/gorm"

	"field-service-server/models"
)

// RatingService lets customers rate completed work and keeps field worker
// aggregates consistent. Aggregates are always recomputed from scratch over
// the worker's tasks rather than nudged incrementally.
type RatingService struct {
	db *gorm.DB
}

// NewRatingService creates a rating service backed by db.
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Rate records a customer's rating for a completed task. Each task can be
// rated once, only by the customer who owns the underlying request. The
// rating is mirrored onto the request and the worker's aggregates are
// refreshed in the same transaction.
func (s *RatingService) Rate(taskID uint, caller *models.User, input models.TaskRate) (*models.Task, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var task models.Task
	err := s.db.Preload("ServiceRequest").First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	if task.ServiceRequest == nil || task.ServiceRequest.CustomerID != caller.ID {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}
	if task.IsRated() {
		return nil, ErrAlreadyRated
	}

	rating := input.Rating
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&task).Updates(map[string]interface{}{
			"customer_rating":   rating,
			"customer_feedback": input.Feedback,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ServiceRequest{}).
			Where("id = ?", task.ServiceRequestID).
			Updates(map[string]interface{}{
				"customer_rating":   rating,
				"customer_feedback": input.Feedback,
			}).Error; err != nil {
			return err
		}

		return recalculateWorkerStats(tx, task.FieldWorkerID)
	})
	if err != nil {
		return nil, err
	}

	task.CustomerRating = &rating
	task.CustomerFeedback = input.Feedback
	return &task, nil
}

// recalculateWorkerStats rebuilds a worker's rating and completed-task
// count from their tasks. Rating is the mean of all received ratings,
// rounded to one decimal; workers with no ratings yet sit at zero.
func recalculateWorkerStats(tx *gorm.DB, workerID uint) error {
	var completed int64
	if err := tx.Model(&models.Task{}).
		Where("field_worker_id = ? AND status = ?", workerID, models.TaskStatusCompleted).
		Count(&completed).Error; err != nil {
		return err
	}

	var avg sql.NullFloat64
	row := tx.Model(&models.Task{}).
		Where("field_worker_id = ? AND customer_rating IS NOT NULL", workerID).
		Select("AVG(customer_rating)").Row()
	if err := row.Scan(&avg); err != nil {
		return err
	}

	rating := 0.0
	if avg.Valid {
		rating = math.Round(avg.Float64*10) / 10
	}

	return tx.Model(&models.User{}).
		Where("id = ?", workerID).
		Updates(map[string]interface{}{
			"rating":                rating,
			"total_tasks_completed": completed,
		}).Error
}

// ListRatable returns the caller's completed, not-yet-rated tasks.
func (s *RatingService) ListRatable(customerID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Model(&models.Task{}).
		Joins("JOIN service_requests ON service_requests.id = tasks.service_request_id AND service_requests.deleted_at IS NULL").
		Where("service_requests.customer_id = ?", customerID).
		Where("tasks.status = ? AND tasks.customer_rating IS NULL", models.TaskStatusCompleted).
		Preload("ServiceRequest").Preload("FieldWorker").
		Order("tasks.completed_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
