package routes

import (
	"github.com/gin-gonic/gin"

	"field-service-server/models"
	"field-service-server/services"
)

// UserHandler serves profile reads and edits plus admin user management.
type UserHandler struct {
	accounts *services.AccountService
	dev      bool
}

// NewUserHandler creates the user handler.
func NewUserHandler(accounts *services.AccountService, dev bool) *UserHandler {
	return &UserHandler{accounts: accounts, dev: dev}
}

// List returns all users, optionally filtered by role. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	role := c.Query("role")

	users, total, err := h.accounts.List(role, page, limit)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Users retrieved successfully", gin.H{
		"users":      users,
		"pagination": pagination(page, limit, total),
	})
}

// Get returns one user. Users may fetch themselves; admins may fetch anyone.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	caller := currentUser(c)
	if caller.ID != id && !caller.IsAdmin() {
		respondError(c, services.ErrForbidden, h.dev)
		return
	}

	user, err := h.accounts.FindByID(id)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "User retrieved successfully", gin.H{"user": user})
}

// UpdateMe edits the caller's own profile within the allowed field set.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req models.UserProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.accounts.UpdateProfile(currentUser(c).ID, req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Profile updated successfully", gin.H{"user": user})
}

// SetStatus activates or deactivates an account. Admin only.
func (h *UserHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.accounts.SetActive(id, *req.IsActive)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	message := "User activated successfully"
	if !user.IsActive {
		message = "User deactivated successfully"
	}
	respondOK(c, message, gin.H{"user": user})
}
