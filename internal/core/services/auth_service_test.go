package services

import (
	"context"
	"errors"
	"testing"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{
			Email:    "test_success@kanso.app",
			Password: "StrongPassword123!",
		}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, input)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, input.Email, user.Email)
		assert.Equal(t, "test_success", user.DisplayName)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should return error for invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "not-an-email", Password: "pass"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "valid@email.com", Password: "short"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should propagate repository error (Duplicate Email)", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "duplicate@email.com", Password: "StrongPassword123!"}

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.Nil(t, user)

		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	registered, err := domain.NewUser("user-1", "login@kanso.app")
	require.NoError(t, err)
	require.NoError(t, registered.SetPassword("CorrectHorse42"))

	t.Run("Success: Should return token for valid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		service := NewAuthService(mockRepo, tokens)
		ctx := context.Background()

		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(registered, nil)
		tokens.On("GenerateToken", "user-1").Return("signed.jwt.token", nil)

		result, err := service.Login(ctx, LoginInput{Email: "  Login@Kanso.app ", Password: "CorrectHorse42"})

		require.NoError(t, err)
		assert.Equal(t, "signed.jwt.token", result.Token)
		assert.Equal(t, registered, result.User)
		tokens.AssertExpectations(t)
	})

	t.Run("Fail: Should hide unknown email behind invalid credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		service := NewAuthService(mockRepo, tokens)
		ctx := context.Background()

		mockRepo.On("GetByEmail", ctx, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		result, err := service.Login(ctx, LoginInput{Email: "ghost@kanso.app", Password: "whatever123"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, result)
		tokens.AssertNotCalled(t, "GenerateToken", mock.Anything)
	})

	t.Run("Fail: Should reject wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		service := NewAuthService(mockRepo, tokens)
		ctx := context.Background()

		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(registered, nil)

		result, err := service.Login(ctx, LoginInput{Email: "login@kanso.app", Password: "WrongHorse42"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, result)
	})

	t.Run("Error: Should wrap repository failures", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, new(MockTokenIssuer))
		ctx := context.Background()

		dbErr := errors.New("connection refused")
		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(nil, dbErr)

		_, err := service.Login(ctx, LoginInput{Email: "login@kanso.app", Password: "CorrectHorse42"})

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
