package service

import (
	"context"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID int32) (*domain.User, []domain.UserRole, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	roles, err := s.userRepo.ListRoles(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}

// UpdateProfile edits the live profile only. Submitted applications keep the
// snapshot taken at submission time.
func (s *userService) UpdateProfile(ctx context.Context, userID int32, name, phone, entity, orcid string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if name != "" {
		user.Name = name
	}
	user.Phone = phone
	user.Entity = entity
	user.ORCID = orcid
	return s.userRepo.Update(ctx, user)
}
