package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/auth"
	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

func userTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@prescripto.test",
		AdminPassword: "admin-pass",
	}
}

func newUserService(repo *MockUserRepository) (*services.UserService, *auth.TokenManager) {
	cfg := userTestConfig()
	tokens := auth.NewTokenManager(cfg)
	return services.NewUserService(repo, tokens, cfg), tokens
}

func TestUserService_Register(t *testing.T) {
	t.Run("creates the account and returns a user token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, tokens := newUserService(repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Email == "jane@example.test" && u.Name == "Jane Smith" &&
				u.PasswordHash != "" && u.PasswordHash != "secret-password"
		})).Return(nil)

		user, token, err := service.Register(context.Background(), services.RegisterInput{
			Name:     "  Jane Smith ",
			Email:    "Jane@Example.Test",
			Password: "secret-password",
		})

		assert.NoError(t, err)
		assert.Equal(t, "jane@example.test", user.Email)

		claims, err := tokens.Parse(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, auth.RoleUser, claims.Role)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newUserService(repo)

		tests := []struct {
			name  string
			input services.RegisterInput
		}{
			{"missing name", services.RegisterInput{Email: "jane@example.test", Password: "secret-password"}},
			{"bad email", services.RegisterInput{Name: "Jane", Email: "not-an-email", Password: "secret-password"}},
			{"short password", services.RegisterInput{Name: "Jane", Email: "jane@example.test", Password: "short"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := service.Register(context.Background(), tt.input)
				assert.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			})
		}
		repo.AssertNotCalled(t, "Create")
	})
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	storedUser := &entities.User{
		ID:           "user-1",
		Name:         "Jane Smith",
		Email:        "jane@example.test",
		PasswordHash: string(hash),
	}

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, tokens := newUserService(repo)

		repo.On("GetByEmail", mock.Anything, "jane@example.test").Return(storedUser, nil)

		user, token, err := service.Login(context.Background(), "Jane@Example.Test", "secret-password")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		claims, err := tokens.Parse(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newUserService(repo)

		repo.On("GetByEmail", mock.Anything, "jane@example.test").Return(storedUser, nil)

		_, _, err := service.Login(context.Background(), "jane@example.test", "wrong-password")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("does not reveal whether the account exists", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newUserService(repo)

		repo.On("GetByEmail", mock.Anything, "unknown@example.test").
			Return(nil, apperrors.NewNotFoundError("user not found"))

		_, _, err := service.Login(context.Background(), "unknown@example.test", "secret-password")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
		assert.Contains(t, err.Error(), "invalid credentials")
	})
}

func TestUserService_AdminLogin(t *testing.T) {
	t.Run("issues an admin token for the configured account", func(t *testing.T) {
		service, tokens := newUserService(new(MockUserRepository))

		token, err := service.AdminLogin(context.Background(), "admin@prescripto.test", "admin-pass")

		assert.NoError(t, err)
		claims, err := tokens.Parse(token)
		assert.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
	})

	t.Run("rejects wrong admin credentials", func(t *testing.T) {
		service, _ := newUserService(new(MockUserRepository))

		_, err := service.AdminLogin(context.Background(), "admin@prescripto.test", "wrong")

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("updates profile fields", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newUserService(repo)

		repo.On("GetByID", mock.Anything, "user-1").Return(&entities.User{
			ID:    "user-1",
			Name:  "Jane Smith",
			Email: "jane@example.test",
		}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Name == "Jane Doe" && u.Phone == "+1 555 0100"
		})).Return(nil)

		user, err := service.UpdateProfile(context.Background(), "user-1", services.UpdateProfileInput{
			Name:  "Jane Doe",
			Phone: "+1 555 0100",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Jane Doe", user.Name)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newUserService(repo)

		_, err := service.UpdateProfile(context.Background(), "user-1", services.UpdateProfileInput{})

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
