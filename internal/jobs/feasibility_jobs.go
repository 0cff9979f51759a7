package jobs

import (
	"context"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/logger"
)

// SendFeasibilityReminders nudges node coordinators about feasibility
// reviews that have sat undecided since submission.
func (jr *JobRunner) SendFeasibilityReminders() {
	jr.runWithRecovery("SendFeasibilityReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, 0, -jr.config.Workflow.FeasibilityReminderDays)

		pending, err := jr.repos.Feasibility.ListPendingOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale feasibility reviews", "error", err)
			return
		}

		sent := 0
		for _, fr := range pending {
			app, err := jr.repos.Applications.GetByID(ctx, fr.ApplicationID)
			if err != nil {
				logger.Error("Failed to load application for reminder", "application_id", fr.ApplicationID, "error", err)
				continue
			}
			node, err := jr.repos.Nodes.GetByID(ctx, fr.NodeID)
			if err != nil {
				logger.Error("Failed to load node for reminder", "node_id", fr.NodeID, "error", err)
				continue
			}
			coordinators, err := jr.repos.Nodes.ListCoordinators(ctx, fr.NodeID)
			if err != nil {
				logger.Error("Failed to list node coordinators", "node_id", fr.NodeID, "error", err)
				continue
			}

			for _, c := range coordinators {
				_ = jr.services.Email.SendFeasibilityReminder(ctx, c.Email, c.Name, app.Code, node.Name)
				_ = jr.repos.Notifications.Create(ctx, &domain.Notification{
					UserID:        c.ID,
					ApplicationID: &app.ID,
					Event:         domain.EventFeasibilityReminder,
					Title:         "Feasibility review overdue",
					Message:       fmt.Sprintf("The feasibility review of application %s at %s is still pending", app.Code, node.Name),
					DedupKey:      fmt.Sprintf("feasibility_reminder:%d:%d", fr.ID, c.ID),
				})
			}
			sent++
		}
		logger.Info("Sent feasibility reminders", "reviews", sent)
	})
}
