package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

const applicationColumns = `id, call_id, applicant_id, code, status, brief_description,
	applicant_name, applicant_email, applicant_entity,
	project_title, project_code, funding_agency, has_competitive_funding,
	specialization_area, scientific_relevance, methodology_description, data_consent,
	final_score, resolution, resolution_date, resolution_comments,
	accepted_by_applicant, accepted_at, acceptance_deadline, handoff_sent_at,
	submitted_at, created_on, updated_on`

type applicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `INSERT INTO applications (call_id, applicant_id, code, status, brief_description,
	            project_title, project_code, funding_agency, has_competitive_funding,
	            specialization_area, scientific_relevance, methodology_description, data_consent,
	            created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		app.CallID, app.ApplicantID, app.Code, app.Status, app.BriefDescription,
		app.ProjectTitle, app.ProjectCode, app.FundingAgency, app.HasCompetitiveFunding,
		app.SpecializationArea, app.ScientificRelevance, app.MethodologyDesc, app.DataConsent,
		now, now).Scan(&app.ID)
}

func scanApplication(row interface{ Scan(...interface{}) error }) (*domain.Application, error) {
	app := &domain.Application{}
	err := row.Scan(
		&app.ID, &app.CallID, &app.ApplicantID, &app.Code, &app.Status, &app.BriefDescription,
		&app.ApplicantName, &app.ApplicantEmail, &app.ApplicantEntity,
		&app.ProjectTitle, &app.ProjectCode, &app.FundingAgency, &app.HasCompetitiveFunding,
		&app.SpecializationArea, &app.ScientificRelevance, &app.MethodologyDesc, &app.DataConsent,
		&app.FinalScore, &app.Resolution, &app.ResolutionDate, &app.ResolutionComments,
		&app.AcceptedByApplicant, &app.AcceptedAt, &app.AcceptanceDeadline, &app.HandoffSentAt,
		&app.SubmittedAt, &app.CreatedOn, &app.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *applicationRepository) GetByCode(ctx context.Context, code string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE code = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, code))
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	query := `UPDATE applications SET code=$1, status=$2, brief_description=$3,
	            applicant_name=$4, applicant_email=$5, applicant_entity=$6,
	            project_title=$7, project_code=$8, funding_agency=$9, has_competitive_funding=$10,
	            specialization_area=$11, scientific_relevance=$12, methodology_description=$13, data_consent=$14,
	            final_score=$15, resolution=$16, resolution_date=$17, resolution_comments=$18,
	            accepted_by_applicant=$19, accepted_at=$20, acceptance_deadline=$21, handoff_sent_at=$22,
	            submitted_at=$23, updated_on=$24
	          WHERE id=$25`
	_, err := r.db.ExecContext(ctx, query,
		app.Code, app.Status, app.BriefDescription,
		app.ApplicantName, app.ApplicantEmail, app.ApplicantEntity,
		app.ProjectTitle, app.ProjectCode, app.FundingAgency, app.HasCompetitiveFunding,
		app.SpecializationArea, app.ScientificRelevance, app.MethodologyDesc, app.DataConsent,
		app.FinalScore, app.Resolution, app.ResolutionDate, app.ResolutionComments,
		app.AcceptedByApplicant, app.AcceptedAt, app.AcceptanceDeadline, app.HandoffSentAt,
		app.SubmittedAt, time.Now(), app.ID)
	return err
}

func (r *applicationRepository) queryApplications(ctx context.Context, query string, args ...interface{}) ([]domain.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID int32) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE applicant_id = $1 ORDER BY created_on DESC`
	return r.queryApplications(ctx, query, applicantID)
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE status = $1 ORDER BY final_score DESC NULLS LAST, code`
	return r.queryApplications(ctx, query, status)
}

func (r *applicationRepository) ListByCallAndStatus(ctx context.Context, callID int32, status domain.ApplicationStatus) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE call_id = $1 AND status = $2 ORDER BY final_score DESC NULLS LAST, code`
	return r.queryApplications(ctx, query, callID, status)
}

func (r *applicationRepository) CountSubmittedForCall(ctx context.Context, callID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM applications WHERE call_id = $1 AND status <> 'draft'`
	err := r.db.QueryRowContext(ctx, query, callID).Scan(&count)
	return count, err
}

func (r *applicationRepository) ListExpirable(ctx context.Context, now time.Time) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE status = 'accepted'
	            AND accepted_by_applicant IS NULL
	            AND acceptance_deadline < $1
	          ORDER BY acceptance_deadline`
	return r.queryApplications(ctx, query, now)
}

func (r *applicationRepository) ListForAcceptanceReminder(ctx context.Context, from, to time.Time) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE status = 'accepted'
	            AND accepted_by_applicant IS NULL
	            AND acceptance_deadline > $1
	            AND acceptance_deadline <= $2
	          ORDER BY acceptance_deadline`
	return r.queryApplications(ctx, query, from, to)
}
