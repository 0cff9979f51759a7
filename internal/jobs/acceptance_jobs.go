package jobs

import (
	"context"

	"redib-coa-backend/internal/logger"
)

// ExpireAcceptances lapses accepted applications whose confirmation window
// passed without an applicant response and releases their approved hours.
func (jr *JobRunner) ExpireAcceptances() {
	jr.runWithRecovery("ExpireAcceptances", func() {
		ctx := context.Background()

		expired, err := jr.services.Acceptance.SweepExpirations(ctx)
		if err != nil {
			logger.Error("Failed to expire acceptances", "error", err, "expired_before_failure", expired)
			return
		}
		logger.Info("Expired unanswered acceptances", "count", expired)
	})
}

// SendAcceptanceReminders nudges applicants whose confirmation deadline is
// approaching.
func (jr *JobRunner) SendAcceptanceReminders() {
	jr.runWithRecovery("SendAcceptanceReminders", func() {
		ctx := context.Background()

		sent, err := jr.services.Acceptance.SendReminders(ctx)
		if err != nil {
			logger.Error("Failed to send acceptance reminders", "error", err)
			return
		}
		logger.Info("Sent acceptance reminders", "count", sent)
	})
}
