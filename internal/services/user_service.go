package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/pkg/crypto"
	apperrors "github.com/mchernyshov/tradepost/pkg/errors"
)

// RegisterUserInput defines attributes for account creation.
type RegisterUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserService manages marketplace accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("user service: check email: %w", err)
	}
	if existing > 0 {
		return nil, apperrors.ErrConflict
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies credentials and returns the matching active account.
// All failures collapse into ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// GetByID loads a single account.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}
