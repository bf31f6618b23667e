package auth

import (
	"context"
	"errors"
	"fmt"

	"taxiads-backend/internal/database"
	"taxiads-backend/internal/database/models"
)

// AdminCheckerInterface is implemented by AdminChecker and by test mocks.
type AdminCheckerInterface interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AdminChecker checks a user's admin role against the users collection.
type AdminChecker struct {
	users database.UserRepository
}

// NewAdminChecker creates a new AdminChecker. It requires a non-nil user repository.
func NewAdminChecker(users database.UserRepository) (*AdminChecker, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	return &AdminChecker{users: users}, nil
}

// IsAdmin reports whether the user holds the admin role. An unknown user is
// simply not an admin; store errors are returned. Banned admins lose their
// privileges until unbanned.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := ac.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user for admin check: %w", err)
	}
	if user.Banned {
		return false, nil
	}
	return user.Role == models.RoleAdmin, nil
}
