package services

import "errors"

// Sentinel errors returned by the service layer. The HTTP layer maps these
// to status codes in exactly one place (routes/respond.go); services never
// deal in status codes themselves.
var (
	// Validation
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrImmutableField  = errors.New("field cannot be changed")
	ErrFieldNotAllowed = errors.New("field not allowed for this role")
	ErrInvalidImage    = errors.New("invalid image file")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")

	// Authorization
	ErrForbidden       = errors.New("not allowed")
	ErrApprovalPending = errors.New("account pending approval")

	// Not found
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("service request not found")
	ErrTaskNotFound    = errors.New("task not found")

	// State conflicts
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrRequestNotOpen      = errors.New("service request is not open")
	ErrRequestNotEditable  = errors.New("service request can no longer be edited")
	ErrAlreadyAssigned     = errors.New("service request already has a task")
	ErrWorkerNotAssignable = errors.New("field worker cannot take assignments")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrTaskNotStarted      = errors.New("task has not been started")
	ErrTaskNotCompleted    = errors.New("task is not completed")
	ErrAlreadyRated        = errors.New("task has already been rated")
)
