package service

import (
	"context"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type callService struct {
	callRepo repository.CallRepository
	authz    Authorizer
}

func NewCallService(callRepo repository.CallRepository, authz Authorizer) CallService {
	return &callService{callRepo: callRepo, authz: authz}
}

func (s *callService) List(ctx context.Context) ([]domain.Call, error) {
	return s.callRepo.List(ctx)
}

func (s *callService) Get(ctx context.Context, callID int32) (*domain.Call, error) {
	return s.callRepo.GetByID(ctx, callID)
}

func (s *callService) Publish(ctx context.Context, adminID, callID int32) (*domain.Call, error) {
	if err := s.authz.RequireRole(ctx, adminID, domain.RoleAdmin, nil); err != nil {
		return nil, err
	}
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.Status != domain.CallStatusDraft {
		return nil, fmt.Errorf("%w: call %s is not a draft", domain.ErrValidation, call.Code)
	}
	now := time.Now()
	call.Status = domain.CallStatusPublished
	call.PublishedAt = &now
	if err := s.callRepo.Update(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}

func (s *callService) Close(ctx context.Context, adminID, callID int32) (*domain.Call, error) {
	if err := s.authz.RequireRole(ctx, adminID, domain.RoleAdmin, nil); err != nil {
		return nil, err
	}
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.Status != domain.CallStatusPublished {
		return nil, fmt.Errorf("%w: call %s is not published", domain.ErrValidation, call.Code)
	}
	call.Status = domain.CallStatusClosed
	if err := s.callRepo.Update(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}
