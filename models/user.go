package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer    UserRole = "customer"
	RoleFieldWorker UserRole = "field_worker"
	RoleAdmin       UserRole = "admin"
)

// ParseRole validates a role string at the request boundary. Unknown values
// are rejected rather than stored.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleFieldWorker:
		return RoleFieldWorker, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"size:255;not null"`
	Email        string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'customer';check:role IN ('customer','field_worker','admin')"`
	Phone        string   `json:"phone" gorm:"size:20"`
	Address      string   `json:"address" gorm:"type:text"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`
	IsApproved   bool     `json:"is_approved" gorm:"default:false"`

	// Field worker profile
	Skills              []string `json:"skills,omitempty" gorm:"serializer:json"`
	Experience          int      `json:"experience,omitempty"`
	LicenseNumber       string   `json:"license_number,omitempty" gorm:"size:100"`
	Rating              float64  `json:"rating" gorm:"default:0"`
	TotalTasksCompleted int      `json:"total_tasks_completed" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user. Emails are
// stored lowercased so uniqueness is case-insensitive.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// IsFieldWorker checks if the user is a field worker
func (u *User) IsFieldWorker() bool {
	return u.Role == RoleFieldWorker
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCustomer checks if the user is a customer
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// CanBeAssigned reports whether a field worker may receive new tasks.
func (u *User) CanBeAssigned() bool {
	return u.IsFieldWorker() && u.IsActive && u.IsApproved
}

// UserRegister is the payload for creating an account
type UserRegister struct {
	Name          string   `json:"name" binding:"required,min=2,max=100"`
	Email         string   `json:"email" binding:"required,email"`
	Password      string   `json:"password" binding:"required,min=8,max=128"`
	Role          string   `json:"role" binding:"omitempty,oneof=customer field_worker admin"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Skills        []string `json:"skills"`
	Experience    int      `json:"experience"`
	LicenseNumber string   `json:"license_number"`
}

// UserLogin is the payload for authenticating
type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PasswordChange is the payload for rotating a password
type PasswordChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UserProfileUpdate is the payload for editing a profile. Pointer fields
// distinguish absent from zero-valued; email and role are immutable and
// rejected if present at all.
type UserProfileUpdate struct {
	Name          *string   `json:"name" binding:"omitempty,min=2,max=100"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	Skills        *[]string `json:"skills"`
	Experience    *int      `json:"experience"`
	LicenseNumber *string   `json:"license_number"`
	Email         *string   `json:"email"`
	Role          *string   `json:"role"`
}
