package routes

import (
	"github.com/gin-gonic/gin"

	"field-service-server/models"
	"field-service-server/services"
)

// AuthHandler serves registration, login, and session endpoints.
type AuthHandler struct {
	accounts *services.AccountService
	tokens   *services.TokenService
	dev      bool
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(accounts *services.AccountService, tokens *services.TokenService, dev bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, dev: dev}
}

// Register creates a new account. Field workers are told up front that an
// admin has to approve them before they can log in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.UserRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.accounts.Register(req)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	message := "Account created successfully"
	if user.IsFieldWorker() {
		message = "Account created. An administrator must approve it before you can log in"
	}

	respondCreated(c, message, gin.H{"user": user})
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	respondOK(c, "Profile retrieved successfully", gin.H{"user": currentUser(c)})
}

// Logout acknowledges a logout. Tokens are stateless, so the client simply
// discards its copy; nothing is kept server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondOK(c, "Logged out successfully", nil)
}

// ChangePassword rotates the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := currentUser(c)
	if err := h.accounts.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, h.dev)
		return
	}

	respondOK(c, "Password changed successfully", nil)
}
