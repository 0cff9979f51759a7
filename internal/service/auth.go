package service

import (
	"context"
	"errors"
	"fmt"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
	"redib-coa-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

// Signup self-registers an applicant. Reviewer and coordinator roles are
// granted by an admin afterwards.
func (s *authService) Signup(ctx context.Context, name, email, phone, entity, orcid, password string) (*domain.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Entity:       entity,
		ORCID:        orcid,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, []string{string(domain.RoleApplicant)})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	roles, err := s.userRepo.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.IsActive {
			names = append(names, string(r.Role))
		}
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, names)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// roleAuthorizer backs Authorizer with the user_roles table. Admins pass
// every check.
type roleAuthorizer struct {
	userRepo repository.UserRepository
}

func NewAuthorizer(userRepo repository.UserRepository) Authorizer {
	return &roleAuthorizer{userRepo: userRepo}
}

func (a *roleAuthorizer) RequireRole(ctx context.Context, userID int32, role domain.Role, nodeID *int32) error {
	ok, err := a.userRepo.HasActiveRole(ctx, userID, role, nodeID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	isAdmin, err := a.userRepo.HasActiveRole(ctx, userID, domain.RoleAdmin, nil)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}
	return fmt.Errorf("%w: requires %s role", domain.ErrPermission, role)
}
