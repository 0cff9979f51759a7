package domain

import "time"

// EventKind identifies a workflow event carried by a notification.
type EventKind string

const (
	EventApplicationReceived  EventKind = "application_received"
	EventFeasibilityRequest   EventKind = "feasibility_request"
	EventFeasibilityReminder  EventKind = "feasibility_reminder"
	EventFeasibilityRejected  EventKind = "feasibility_rejected"
	EventFeasibilityApproved  EventKind = "feasibility_approved"
	EventEvaluationAssigned   EventKind = "evaluation_assigned"
	EventEvaluationComplete   EventKind = "evaluation_complete"
	EventResolutionAccepted   EventKind = "resolution_accepted"
	EventResolutionPending    EventKind = "resolution_pending"
	EventResolutionRejected   EventKind = "resolution_rejected"
	EventAcceptanceReminder   EventKind = "acceptance_reminder"
	EventAcceptanceExpired    EventKind = "acceptance_expired"
	EventHandoffConfirmed     EventKind = "handoff_confirmed"
	EventApplicantDeclined    EventKind = "applicant_declined"
	EventPublicationFollowup  EventKind = "publication_followup"
)

// Notification is the persisted in-app counterpart of every email the
// workflow sends.
type Notification struct {
	ID            int32     `json:"id"`
	UserID        int32     `json:"user_id"`
	ApplicationID *int32    `json:"application_id,omitempty"`
	Event         EventKind `json:"event"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	DedupKey      string    `json:"dedup_key"`
	IsRead        bool      `json:"is_read"`
	CreatedOn     time.Time `json:"created_on"`
}
