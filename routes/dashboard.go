package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"field-service-server/models"
	"field-service-server/services"
)

// DashboardHandler serves role-specific aggregate statistics.
type DashboardHandler struct {
	db  *gorm.DB
	dev bool
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(db *gorm.DB, dev bool) *DashboardHandler {
	return &DashboardHandler{db: db, dev: dev}
}

// Stats dispatches on the caller's role.
func (h *DashboardHandler) Stats(c *gin.Context) {
	caller := currentUser(c)

	switch caller.Role {
	case models.RoleAdmin:
		h.adminStats(c)
	case models.RoleFieldWorker:
		h.workerStats(c, caller)
	case models.RoleCustomer:
		h.customerStats(c, caller)
	default:
		respondError(c, services.ErrForbidden, h.dev)
	}
}

func (h *DashboardHandler) adminStats(c *gin.Context) {
	var stats struct {
		TotalUsers         int64 `json:"total_users"`
		TotalCustomers     int64 `json:"total_customers"`
		TotalFieldWorkers  int64 `json:"total_field_workers"`
		TotalAdmins        int64 `json:"total_admins"`
		ApprovedWorkers    int64 `json:"approved_workers"`
		PendingWorkers     int64 `json:"pending_workers"`
		TotalRequests      int64 `json:"total_requests"`
		OpenRequests       int64 `json:"open_requests"`
		AssignedRequests   int64 `json:"assigned_requests"`
		InProgressRequests int64 `json:"in_progress_requests"`
		CompletedRequests  int64 `json:"completed_requests"`
		CancelledRequests  int64 `json:"cancelled_requests"`
		TotalTasks         int64 `json:"total_tasks"`
		CompletedTasks     int64 `json:"completed_tasks"`
	}

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&stats.TotalCustomers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleFieldWorker).Count(&stats.TotalFieldWorkers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&stats.TotalAdmins)
	h.db.Model(&models.User{}).Where("role = ? AND is_approved = ?", models.RoleFieldWorker, true).Count(&stats.ApprovedWorkers)
	h.db.Model(&models.User{}).Where("role = ? AND is_approved = ? AND is_active = ?", models.RoleFieldWorker, false, true).Count(&stats.PendingWorkers)

	h.db.Model(&models.ServiceRequest{}).Count(&stats.TotalRequests)
	h.db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestStatusOpen).Count(&stats.OpenRequests)
	h.db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestStatusAssigned).Count(&stats.AssignedRequests)
	h.db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestStatusInProgress).Count(&stats.InProgressRequests)
	h.db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestStatusCompleted).Count(&stats.CompletedRequests)
	h.db.Model(&models.ServiceRequest{}).Where("status = ?", models.RequestStatusCancelled).Count(&stats.CancelledRequests)

	h.db.Model(&models.Task{}).Count(&stats.TotalTasks)
	h.db.Model(&models.Task{}).Where("status = ?", models.TaskStatusCompleted).Count(&stats.CompletedTasks)

	respondOK(c, "Dashboard statistics retrieved successfully", stats)
}

func (h *DashboardHandler) workerStats(c *gin.Context, caller *models.User) {
	var stats struct {
		AssignedTasks       int64   `json:"assigned_tasks"`
		InProgressTasks     int64   `json:"in_progress_tasks"`
		CompletedTasks      int64   `json:"completed_tasks"`
		CancelledTasks      int64   `json:"cancelled_tasks"`
		Rating              float64 `json:"rating"`
		TotalTasksCompleted int     `json:"total_tasks_completed"`
	}

	h.db.Model(&models.Task{}).Where("field_worker_id = ? AND status = ?", caller.ID, models.TaskStatusAssigned).Count(&stats.AssignedTasks)
	h.db.Model(&models.Task{}).Where("field_worker_id = ? AND status = ?", caller.ID, models.TaskStatusInProgress).Count(&stats.InProgressTasks)
	h.db.Model(&models.Task{}).Where("field_worker_id = ? AND status = ?", caller.ID, models.TaskStatusCompleted).Count(&stats.CompletedTasks)
	h.db.Model(&models.Task{}).Where("field_worker_id = ? AND status = ?", caller.ID, models.TaskStatusCancelled).Count(&stats.CancelledTasks)

	stats.Rating = caller.Rating
	stats.TotalTasksCompleted = caller.TotalTasksCompleted

	respondOK(c, "Dashboard statistics retrieved successfully", stats)
}

func (h *DashboardHandler) customerStats(c *gin.Context, caller *models.User) {
	var stats struct {
		TotalRequests      int64 `json:"total_requests"`
		OpenRequests       int64 `json:"open_requests"`
		AssignedRequests   int64 `json:"assigned_requests"`
		InProgressRequests int64 `json:"in_progress_requests"`
		CompletedRequests  int64 `json:"completed_requests"`
		CancelledRequests  int64 `json:"cancelled_requests"`
		RatableTasks       int64 `json:"ratable_tasks"`
	}

	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ?", caller.ID).Count(&stats.TotalRequests)
	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ? AND status = ?", caller.ID, models.RequestStatusOpen).Count(&stats.OpenRequests)
	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ? AND status = ?", caller.ID, models.RequestStatusAssigned).Count(&stats.AssignedRequests)
	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ? AND status = ?", caller.ID, models.RequestStatusInProgress).Count(&stats.InProgressRequests)
	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ? AND status = ?", caller.ID, models.RequestStatusCompleted).Count(&stats.CompletedRequests)
	h.db.Model(&models.ServiceRequest{}).Where("customer_id = ? AND status = ?", caller.ID, models.RequestStatusCancelled).Count(&stats.CancelledRequests)

	h.db.Model(&models.Task{}).
		Joins("JOIN service_requests ON service_requests.id = tasks.service_request_id AND service_requests.deleted_at IS NULL").
		Where("service_requests.customer_id = ?", caller.ID).
		Where("tasks.status = ? AND tasks.customer_rating IS NULL", models.TaskStatusCompleted).
		Count(&stats.RatableTasks)

	respondOK(c, "Dashboard statistics retrieved successfully", stats)
}
