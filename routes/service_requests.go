package routes

import (
	"github.com/gin-gonic/gin"

	"field-service-server/models"
	"field-service-server/services"
)

// RequestHandler serves the service request ledger.
type RequestHandler struct {
	requests *services.RequestService
	dev      bool
}

// NewRequestHandler creates the request handler.
func NewRequestHandler(requests *services.RequestService, dev bool) *RequestHandler {
	return &RequestHandler{requests: requests, dev: dev}
}

// Create opens a new request owned by the calling customer.
func (h *RequestHandler) Create(c *gin.Context) {
	var req models.ServiceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	request, err := h.requests.Create(currentUser(c).ID, req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondCreated(c, "Service request created successfully", gin.H{"service_request": request})
}

// List returns the requests visible to the caller, optionally filtered by
// status.
func (h *RequestHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	status := c.Query("status")

	requests, total, err := h.requests.List(currentUser(c), status, page, limit)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Service requests retrieved successfully", gin.H{
		"service_requests": requests,
		"pagination":       pagination(page, limit, total),
	})
}

// Get returns one request if the caller may see it.
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.Get(id, currentUser(c))
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Service request retrieved successfully", gin.H{"service_request": request})
}

// Update edits a still-open request owned by the caller.
func (h *RequestHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ServiceRequestUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	request, err := h.requests.Update(id, currentUser(c), req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Service request updated successfully", gin.H{"service_request": request})
}

// Cancel withdraws a still-open request.
func (h *RequestHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.Cancel(id, currentUser(c))
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Service request cancelled successfully", gin.H{"service_request": request})
}
