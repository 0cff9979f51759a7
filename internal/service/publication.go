package service

import (
	"context"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type publicationService struct {
	repos *repository.Repos
	authz Authorizer
}

func NewPublicationService(repos *repository.Repos, authz Authorizer) PublicationService {
	return &publicationService{repos: repos, authz: authz}
}

// Report attaches a publication to a completed application.
func (s *publicationService) Report(ctx context.Context, reporterID, applicationID int32, pub *domain.Publication) (*domain.Publication, error) {
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != reporterID {
		return nil, domain.ErrPermission
	}
	if app.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("%w: publications can only be reported against completed applications", domain.ErrValidation)
	}
	if pub.Title == "" {
		return nil, fmt.Errorf("%w: publication title is required", domain.ErrValidation)
	}

	pub.ApplicationID = applicationID
	pub.ReportedBy = reporterID
	pub.Verified = false
	pub.VerifiedAt = nil
	if err := s.repos.Publications.Create(ctx, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

func (s *publicationService) Update(ctx context.Context, reporterID, publicationID int32, input *domain.Publication) (*domain.Publication, error) {
	pub, err := s.repos.Publications.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub.ReportedBy != reporterID {
		return nil, domain.ErrPermission
	}
	if pub.Verified {
		return nil, fmt.Errorf("%w: verified publications cannot be edited", domain.ErrValidation)
	}

	pub.Title = input.Title
	pub.Authors = input.Authors
	pub.DOI = input.DOI
	pub.Journal = input.Journal
	pub.PublicationYear = input.PublicationYear
	pub.RedibAcknowledged = input.RedibAcknowledged
	if err := s.repos.Publications.Update(ctx, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

func (s *publicationService) Verify(ctx context.Context, coordinatorID, publicationID int32) (*domain.Publication, error) {
	if err := s.authz.RequireRole(ctx, coordinatorID, domain.RoleCoordinator, nil); err != nil {
		return nil, err
	}
	pub, err := s.repos.Publications.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub.Verified {
		return pub, nil
	}
	now := time.Now()
	pub.Verified = true
	pub.VerifiedAt = &now
	if err := s.repos.Publications.Update(ctx, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

func (s *publicationService) ListByApplication(ctx context.Context, userID, applicationID int32) ([]domain.Publication, error) {
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != userID {
		if err := s.authz.RequireRole(ctx, userID, domain.RoleCoordinator, nil); err != nil {
			return nil, err
		}
	}
	return s.repos.Publications.ListByApplication(ctx, applicationID)
}

func (s *publicationService) ListMine(ctx context.Context, reporterID int32) ([]domain.Publication, error) {
	return s.repos.Publications.ListByReporter(ctx, reporterID)
}
