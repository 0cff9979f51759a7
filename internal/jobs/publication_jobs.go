package jobs

import (
	"context"
	"fmt"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/logger"
)

// SendPublicationFollowups chases applicants whose completed applications
// still have no reported publications.
func (jr *JobRunner) SendPublicationFollowups() {
	jr.runWithRecovery("SendPublicationFollowups", func() {
		ctx := context.Background()

		query := `
			SELECT a.id, a.code, a.applicant_id, a.applicant_name, a.applicant_email
			FROM applications a
			WHERE a.status = 'completed'
			  AND a.updated_on < NOW() - make_interval(months => $1)
			  AND NOT EXISTS (
			      SELECT 1 FROM publications p WHERE p.application_id = a.id
			  )
			ORDER BY a.id
		`

		rows, err := jr.db.QueryContext(ctx, query, jr.config.Workflow.PublicationFollowupMonths)
		if err != nil {
			logger.Error("Failed to list applications without publications", "error", err)
			return
		}
		defer rows.Close()

		type followup struct {
			ID             int32
			Code           string
			ApplicantID    int32
			ApplicantName  string
			ApplicantEmail string
		}
		var due []followup
		for rows.Next() {
			var f followup
			if err := rows.Scan(&f.ID, &f.Code, &f.ApplicantID, &f.ApplicantName, &f.ApplicantEmail); err != nil {
				logger.Error("Failed to scan publication followup row", "error", err)
				continue
			}
			due = append(due, f)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating publication followups", "error", err)
			return
		}

		for _, f := range due {
			_ = jr.services.Email.SendAccessCompleted(ctx, f.ApplicantEmail, f.ApplicantName, f.Code, "")
			appID := f.ID
			_ = jr.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        f.ApplicantID,
				ApplicationID: &appID,
				Event:         domain.EventPublicationFollowup,
				Title:         "Publication report pending",
				Message:       fmt.Sprintf("Application %s has no reported publications yet; please report any resulting outputs", f.Code),
				DedupKey:      fmt.Sprintf("publication_chase:%d", f.ID),
			})
		}
		logger.Info("Sent publication followups", "count", len(due))
	})
}
