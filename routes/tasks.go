package routes

import (
	"github.com/gin-gonic/gin"

	"field-service-server/models"
	"field-service-server/services"
)

// TaskHandler serves assignment, the task lifecycle, ratings, and
// completion photo uploads.
type TaskHandler struct {
	assignments *services.AssignmentService
	ratings     *services.RatingService
	uploads     *services.UploadService
	dev         bool
}

// NewTaskHandler creates the task handler.
func NewTaskHandler(assignments *services.AssignmentService, ratings *services.RatingService, uploads *services.UploadService, dev bool) *TaskHandler {
	return &TaskHandler{assignments: assignments, ratings: ratings, uploads: uploads, dev: dev}
}

// Assign creates a task binding an open request to a field worker. Admin
// only.
func (h *TaskHandler) Assign(c *gin.Context) {
	var req models.TaskAssign
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.assignments.Assign(req.ServiceRequestID, req.FieldWorkerID, currentUser(c).ID)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondCreated(c, "Task assigned successfully", gin.H{"task": task})
}

// List returns the tasks visible to the caller, optionally filtered by
// status.
func (h *TaskHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	status := c.Query("status")

	tasks, total, err := h.assignments.List(currentUser(c), status, page, limit)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Tasks retrieved successfully", gin.H{
		"tasks":      tasks,
		"pagination": pagination(page, limit, total),
	})
}

// ListRatable returns the caller's completed, not-yet-rated tasks.
// Customer only.
func (h *TaskHandler) ListRatable(c *gin.Context) {
	tasks, err := h.ratings.ListRatable(currentUser(c).ID)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Ratable tasks retrieved successfully", gin.H{"tasks": tasks})
}

// Get returns one task if the caller may see it.
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.assignments.Get(id, currentUser(c))
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Task retrieved successfully", gin.H{"task": task})
}

// UpdateStatus moves a task through its lifecycle.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.TaskStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.assignments.UpdateStatus(id, currentUser(c), req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Task status updated successfully", gin.H{"task": task})
}

// Rate records the customer's rating for a completed task.
func (h *TaskHandler) Rate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.TaskRate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.ratings.Rate(id, currentUser(c), req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Rating submitted successfully", gin.H{"task": task})
}

// UploadPhoto stores one completion photo for a task the caller works on.
func (h *TaskHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	caller := currentUser(c)

	// Photos only make sense once work has started, so check the task
	// before touching the file.
	task, err := h.assignments.Get(id, caller)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}
	if task.Status != models.TaskStatusInProgress && task.Status != models.TaskStatusCompleted {
		respondError(c, services.ErrTaskNotStarted, h.dev)
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		respondBindError(c, err)
		return
	}

	url, err := h.uploads.UploadTaskPhoto(c.Request.Context(), id, header)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	task, err = h.assignments.AppendPhoto(id, caller, url)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Photo uploaded successfully", gin.H{
		"task":      task,
		"photo_url": url,
	})
}
