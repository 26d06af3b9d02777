package routes

import (
	"github.com/gin-gonic/gin"

	"field-service-server/services"
)

// FieldWorkerHandler serves the worker directory and the admin approval
// lifecycle.
type FieldWorkerHandler struct {
	accounts *services.AccountService
	dev      bool
}

// NewFieldWorkerHandler creates the field worker handler.
func NewFieldWorkerHandler(accounts *services.AccountService, dev bool) *FieldWorkerHandler {
	return &FieldWorkerHandler{accounts: accounts, dev: dev}
}

// List returns field workers. The pending queue is admin-only; everyone
// else sees approved workers.
func (h *FieldWorkerHandler) List(c *gin.Context) {
	filter := c.Query("status")
	caller := currentUser(c)

	if !caller.IsAdmin() {
		switch filter {
		case "", "approved":
			filter = "approved"
		default:
			respondError(c, services.ErrForbidden, h.dev)
			return
		}
	}

	workers, err := h.accounts.ListFieldWorkers(filter)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Field workers retrieved successfully", gin.H{"field_workers": workers})
}

// Get returns one field worker's profile, including the rating aggregate
// and completed-task count.
func (h *FieldWorkerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	worker, err := h.accounts.FindFieldWorker(id)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Field worker retrieved successfully", gin.H{"field_worker": worker})
}

// Approve marks a field worker as approved so they can log in and take
// assignments. Admin only.
func (h *FieldWorkerHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	worker, err := h.accounts.SetApproval(id, true)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Field worker approved successfully", gin.H{"field_worker": worker})
}

// Reject declines a field worker's application and deactivates the account.
// Admin only.
func (h *FieldWorkerHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	worker, err := h.accounts.SetApproval(id, false)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Field worker rejected", gin.H{"field_worker": worker})
}
