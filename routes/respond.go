package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"field-service-server/models"
	"field-service-server/services"
)

// errorStatus maps every service sentinel to its HTTP status. This table
// and respondError are the only places status codes are decided; handlers
// pass errors through untranslated.
var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrInvalidRole, http.StatusBadRequest},
	{services.ErrInvalidStatus, http.StatusBadRequest},
	{services.ErrInvalidRating, http.StatusBadRequest},
	{services.ErrImmutableField, http.StatusBadRequest},
	{services.ErrFieldNotAllowed, http.StatusBadRequest},
	{services.ErrInvalidImage, http.StatusBadRequest},

	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrAccountDeactivated, http.StatusUnauthorized},

	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrApprovalPending, http.StatusForbidden},

	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrRequestNotFound, http.StatusNotFound},
	{services.ErrTaskNotFound, http.StatusNotFound},
	{gorm.ErrRecordNotFound, http.StatusNotFound},

	{services.ErrDuplicateEmail, http.StatusConflict},
	{services.ErrRequestNotOpen, http.StatusConflict},
	{services.ErrRequestNotEditable, http.StatusConflict},
	{services.ErrAlreadyAssigned, http.StatusConflict},
	{services.ErrWorkerNotAssignable, http.StatusConflict},
	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrTaskNotStarted, http.StatusConflict},
	{services.ErrTaskNotCompleted, http.StatusConflict},
	{services.ErrAlreadyRated, http.StatusConflict},
}

// respondError writes the failure envelope for err. Unrecognized errors are
// treated as internal: logged, and echoed to the client only in development.
func respondError(c *gin.Context, err error, dev bool) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{
				"success": false,
				"message": capitalize(m.err.Error()),
				"error":   m.err.Error(),
			})
			return
		}
	}

	log.Printf("❌ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

	detail := "internal server error"
	if dev {
		detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Something went wrong",
		"error":   detail,
	})
}

// respondBindError writes the 400 envelope for a request that failed
// binding or validation.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request data",
		"error":   err.Error(),
	})
}

func respondOK(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, message, data)
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// currentUser returns the authenticated account stored by RequireAuth.
func currentUser(c *gin.Context) *models.User {
	value := c.MustGet("user")
	user := value.(models.User)
	return &user
}

// parseIDParam reads a numeric path parameter, responding 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondBindError(c, fmt.Errorf("invalid %s parameter", name))
		return 0, false
	}
	return uint(id), true
}

// pageParams reads and clamps page/limit query parameters.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit
}

func pagination(page, limit int, total int64) gin.H {
	pages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	}
}
