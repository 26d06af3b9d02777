package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"field-service-server/models"
)

// AccountService owns user records: registration, credential checks, profile
// updates, and the field worker approval lifecycle.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates an account service backed by db.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a new account. Only the bcrypt hash of the password is
// stored. Field workers start unapproved and cannot log in until an admin
// approves them; every other role is usable immediately.
func (s *AccountService) Register(input models.UserRegister) (*models.User, error) {
	role := models.RoleCustomer
	if input.Role != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		IsActive:     true,
		IsApproved:   role != models.RoleFieldWorker,
	}
	if role == models.RoleFieldWorker {
		user.Skills = input.Skills
		user.Experience = input.Experience
		user.LicenseNumber = strings.TrimSpace(input.LicenseNumber)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies credentials and account standing. The caller issues
// the token; this method only decides whether login is allowed.
func (s *AccountService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if user.IsFieldWorker() && !user.IsApproved {
		return nil, ErrApprovalPending
	}

	return user, nil
}

// FindByEmail looks a user up by email, case-insensitively.
func (s *AccountService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID looks a user up by primary key.
func (s *AccountService) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile edit for the given user. Email and
// role can never be changed; field worker credentials (skills, experience,
// license number) are accepted only on field worker accounts.
func (s *AccountService) UpdateProfile(userID uint, input models.UserProfileUpdate) (*models.User, error) {
	if input.Email != nil || input.Role != nil {
		return nil, ErrImmutableField
	}

	user, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}

	workerOnly := input.Skills != nil || input.Experience != nil || input.LicenseNumber != nil
	if workerOnly && !user.IsFieldWorker() {
		return nil, ErrFieldNotAllowed
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		user.Address = strings.TrimSpace(*input.Address)
	}
	if input.Skills != nil {
		user.Skills = *input.Skills
	}
	if input.Experience != nil {
		user.Experience = *input.Experience
	}
	if input.LicenseNumber != nil {
		user.LicenseNumber = strings.TrimSpace(*input.LicenseNumber)
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword rotates a user's password after verifying the current one.
func (s *AccountService) ChangePassword(userID uint, current, next string) error {
	user, err := s.FindByID(userID)
	if err != nil {
		return err
	}

	if !CheckPasswordHash(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}

	return s.db.Model(user).Update("password_hash", hash).Error
}

// ListFieldWorkers returns field workers filtered by approval state.
// Filter values: "" (all), "pending" (awaiting approval), "approved".
func (s *AccountService) ListFieldWorkers(filter string) ([]models.User, error) {
	query := s.db.Where("role = ?", models.RoleFieldWorker)

	switch filter {
	case "":
	case "pending":
		query = query.Where("is_approved = ? AND is_active = ?", false, true)
	case "approved":
		query = query.Where("is_approved = ?", true)
	default:
		return nil, ErrInvalidStatus
	}

	var workers []models.User
	if err := query.Order("created_at DESC").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

// FindFieldWorker looks up a user and confirms they are a field worker.
func (s *AccountService) FindFieldWorker(id uint) (*models.User, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !user.IsFieldWorker() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetApproval approves or rejects a field worker. Rejection also deactivates
// the account so the worker can neither log in nor be assigned.
func (s *AccountService) SetApproval(workerID uint, approved bool) (*models.User, error) {
	worker, err := s.FindFieldWorker(workerID)
	if err != nil {
		return nil, err
	}

	worker.IsApproved = approved
	if !approved {
		worker.IsActive = false
	}

	if err := s.db.Save(worker).Error; err != nil {
		return nil, err
	}
	return worker, nil
}

// SetActive toggles whether an account may authenticate.
func (s *AccountService) SetActive(userID uint, active bool) (*models.User, error) {
	user, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	return user, nil
}

// List returns users with optional role filtering and pagination.
func (s *AccountService) List(role string, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.db.Model(&models.User{})
	if role != "" {
		parsed, ok := models.ParseRole(role)
		if !ok {
			return nil, 0, ErrInvalidRole
		}
		query = query.Where("role = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
