package users

import (
	"context"

	"github.com/user/tasklist-go/auth"
)

// UserService provides read access to user profiles.
type UserService struct {
	repo auth.UserRepository
}

// NewUserService creates a new UserService on the shared credential store.
func NewUserService(repo auth.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUserProfile returns the public profile for the given user id. The
// password hash stays inside the auth.User model and is not copied into the
// response.
func (s *UserService) GetUserProfile(ctx context.Context, userID string) (*UserProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}, nil
}
