package user

import (
	"context"

	"github.com/campus-market-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName    = "name"
	fieldCollege = "college"
	fieldAvatar  = "avatar"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.College != nil {
		updates[fieldCollege] = *req.College
	}
	if req.Avatar != nil {
		updates[fieldAvatar] = *req.Avatar
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
