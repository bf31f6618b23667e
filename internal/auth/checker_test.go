package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taxiads-backend/internal/database"
	"taxiads-backend/internal/database/models"
)

// MockUserRepository is a mock implementation of database.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	args := m.Called(ctx, id, banned)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit int, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func TestAdminChecker_IsAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("AdminUser", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "42").Return(&models.User{ID: "42", Role: models.RoleAdmin}, nil).Once()
		checker, err := NewAdminChecker(users)
		require.NoError(t, err)

		isAdmin, err := checker.IsAdmin(ctx, "42")

		assert.NoError(t, err)
		assert.True(t, isAdmin)
	})

	t.Run("RegularUser", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "7").Return(&models.User{ID: "7", Role: models.RoleUser}, nil).Once()
		checker, _ := NewAdminChecker(users)

		isAdmin, err := checker.IsAdmin(ctx, "7")

		assert.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("BannedAdminLosesPrivileges", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "42").Return(&models.User{ID: "42", Role: models.RoleAdmin, Banned: true}, nil).Once()
		checker, _ := NewAdminChecker(users)

		isAdmin, err := checker.IsAdmin(ctx, "42")

		assert.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("UnknownUserIsNotAnError", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "missing").Return(nil, database.ErrUserNotFound).Once()
		checker, _ := NewAdminChecker(users)

		isAdmin, err := checker.IsAdmin(ctx, "missing")

		assert.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("StoreErrorsPropagate", func(t *testing.T) {
		users := new(MockUserRepository)
		storeErr := errors.New("connection reset")
		users.On("GetByID", mock.Anything, "42").Return(nil, storeErr).Once()
		checker, _ := NewAdminChecker(users)

		isAdmin, err := checker.IsAdmin(ctx, "42")

		assert.ErrorIs(t, err, storeErr)
		assert.False(t, isAdmin)
	})

	t.Run("NilRepositoryRejected", func(t *testing.T) {
		_, err := NewAdminChecker(nil)
		assert.Error(t, err)
	})
}
