package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/auth"
	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// UserService handles registration, login and profile management
type UserService struct {
	repo       repositories.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	adminEmail string
	adminPass  string
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository, tokens *auth.TokenManager, cfg *config.AuthConfig) *UserService {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: cfg.BcryptCost,
		adminEmail: cfg.AdminEmail,
		adminPass:  cfg.AdminPassword,
	}
}

// RegisterInput carries the registration payload
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account and returns a signed token
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entities.User, string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" {
		return nil, "", apperrors.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, "", apperrors.NewValidationError("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, "", apperrors.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	user := &entities.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to issue token", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a signed token
func (s *UserService) Login(ctx context.Context, email, password string) (*entities.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperrors.NewValidationError("email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to issue token", err)
	}

	return user, token, nil
}

// AdminLogin authenticates the configured admin account
func (s *UserService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPass == "" {
		return "", apperrors.NewUnauthorizedError("admin login is not configured")
	}
	if email != s.adminEmail || password != s.adminPass {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.Issue("admin", auth.RoleAdmin)
	if err != nil {
		return "", apperrors.NewInternalError("failed to issue token", err)
	}

	return token, nil
}

// GetProfile returns the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfileInput carries updatable profile fields
type UpdateProfileInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	ImageURL     string `json:"image_url"`
}

// UpdateProfile updates the user's profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entities.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Phone = input.Phone
	user.AddressLine1 = input.AddressLine1
	user.AddressLine2 = input.AddressLine2
	user.Gender = input.Gender
	user.DateOfBirth = input.DateOfBirth
	user.ImageURL = input.ImageURL

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
