package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type publicationRepository struct {
	db DBTX
}

func NewPublicationRepository(db DBTX) repository.PublicationRepository {
	return &publicationRepository{db: db}
}

const publicationColumns = `id, application_id, title, authors, doi, journal, publication_year,
	redib_acknowledged, reported_by, reported_at, verified, verified_at, updated_on`

func scanPublication(row interface{ Scan(...interface{}) error }) (*domain.Publication, error) {
	p := &domain.Publication{}
	err := row.Scan(&p.ID, &p.ApplicationID, &p.Title, &p.Authors, &p.DOI, &p.Journal,
		&p.PublicationYear, &p.RedibAcknowledged, &p.ReportedBy, &p.ReportedAt,
		&p.Verified, &p.VerifiedAt, &p.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *publicationRepository) Create(ctx context.Context, pub *domain.Publication) error {
	query := `INSERT INTO publications (application_id, title, authors, doi, journal, publication_year,
	            redib_acknowledged, reported_by, reported_at, verified, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		pub.ApplicationID, pub.Title, pub.Authors, pub.DOI, pub.Journal, pub.PublicationYear,
		pub.RedibAcknowledged, pub.ReportedBy, now, now).Scan(&pub.ID)
	if err != nil {
		return err
	}
	pub.ReportedAt = now
	pub.UpdatedOn = now
	return nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int32) (*domain.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`
	return scanPublication(r.db.QueryRowContext(ctx, query, id))
}

func (r *publicationRepository) Update(ctx context.Context, pub *domain.Publication) error {
	query := `UPDATE publications SET title=$1, authors=$2, doi=$3, journal=$4, publication_year=$5,
	            redib_acknowledged=$6, verified=$7, verified_at=$8, updated_on=$9
	          WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query,
		pub.Title, pub.Authors, pub.DOI, pub.Journal, pub.PublicationYear,
		pub.RedibAcknowledged, pub.Verified, pub.VerifiedAt, time.Now(), pub.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *publicationRepository) queryPublications(ctx context.Context, query string, args ...interface{}) ([]domain.Publication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []domain.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, *p)
	}
	return pubs, rows.Err()
}

func (r *publicationRepository) ListByApplication(ctx context.Context, applicationID int32) ([]domain.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE application_id = $1 ORDER BY reported_at DESC`
	return r.queryPublications(ctx, query, applicationID)
}

func (r *publicationRepository) ListByReporter(ctx context.Context, reporterID int32) ([]domain.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE reported_by = $1 ORDER BY reported_at DESC`
	return r.queryPublications(ctx, query, reporterID)
}
