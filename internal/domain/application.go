package domain

import "time"

type ApplicationStatus string

const (
	StatusDraft                  ApplicationStatus = "draft"
	StatusSubmitted              ApplicationStatus = "submitted"
	StatusUnderFeasibilityReview ApplicationStatus = "under_feasibility_review"
	StatusRejectedFeasibility    ApplicationStatus = "rejected_feasibility"
	StatusPendingEvaluation      ApplicationStatus = "pending_evaluation"
	StatusUnderEvaluation        ApplicationStatus = "under_evaluation"
	StatusEvaluated              ApplicationStatus = "evaluated"
	StatusAccepted               ApplicationStatus = "accepted"
	StatusPending                ApplicationStatus = "pending"
	StatusRejected               ApplicationStatus = "rejected"
	StatusDeclinedByApplicant    ApplicationStatus = "declined_by_applicant"
	StatusExpired                ApplicationStatus = "expired"
	StatusCompleted              ApplicationStatus = "completed"
)

type Resolution string

const (
	ResolutionUnset    Resolution = ""
	ResolutionAccepted Resolution = "accepted"
	ResolutionPending  Resolution = "pending"
	ResolutionRejected Resolution = "rejected"
)

// validTransitions is the single source of truth for the application
// lifecycle. Statuses with no outgoing edges are terminal.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:                  {StatusSubmitted},
	StatusSubmitted:              {StatusUnderFeasibilityReview, StatusRejectedFeasibility},
	StatusUnderFeasibilityReview: {StatusRejectedFeasibility, StatusPendingEvaluation},
	StatusRejectedFeasibility:    {},
	StatusPendingEvaluation:      {StatusUnderEvaluation},
	StatusUnderEvaluation:        {StatusEvaluated},
	StatusEvaluated:              {StatusAccepted, StatusPending, StatusRejected},
	StatusAccepted:               {StatusDeclinedByApplicant, StatusExpired, StatusCompleted},
	StatusPending:                {StatusAccepted, StatusRejected},
	StatusRejected:               {},
	StatusDeclinedByApplicant:    {},
	StatusExpired:                {},
	StatusCompleted:              {},
}

// NextStatuses returns the legal targets from a given status.
func NextStatuses(s ApplicationStatus) []ApplicationStatus {
	return validTransitions[s]
}

func (s ApplicationStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

type Application struct {
	ID               int32             `json:"id"`
	CallID           int32             `json:"call_id"`
	ApplicantID      int32             `json:"applicant_id"`
	Code             string            `json:"code"`
	Status           ApplicationStatus `json:"status"`
	BriefDescription string            `json:"brief_description"`

	// Applicant snapshot fields, captured from the user profile at submission
	// time. Reviewers and reports read these, never the live profile.
	ApplicantName   string `json:"applicant_name"`
	ApplicantEmail  string `json:"applicant_email"`
	ApplicantEntity string `json:"applicant_entity"`

	ProjectTitle          string `json:"project_title"`
	ProjectCode           string `json:"project_code"`
	FundingAgency         string `json:"funding_agency"`
	HasCompetitiveFunding bool   `json:"has_competitive_funding"`
	SpecializationArea    string `json:"specialization_area"`
	ScientificRelevance   string `json:"scientific_relevance"`
	MethodologyDesc       string `json:"methodology_description"`
	DataConsent           bool   `json:"data_consent"`

	FinalScore         *float64   `json:"final_score,omitempty"`
	Resolution         Resolution `json:"resolution"`
	ResolutionDate     *time.Time `json:"resolution_date,omitempty"`
	ResolutionComments string     `json:"resolution_comments"`

	AcceptedByApplicant *bool      `json:"accepted_by_applicant,omitempty"`
	AcceptedAt          *time.Time `json:"accepted_at,omitempty"`
	AcceptanceDeadline  *time.Time `json:"acceptance_deadline,omitempty"`
	HandoffSentAt       *time.Time `json:"handoff_sent_at,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
}

// CanTransitionTo reports whether moving to next is legal from the
// application's current status.
func (a *Application) CanTransitionTo(next ApplicationStatus) bool {
	for _, s := range validTransitions[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo mutates Status after validating the edge. All status changes
// must go through here; callers persist the application in the same
// transaction as any aggregate fields set alongside the transition.
func (a *Application) TransitionTo(next ApplicationStatus) error {
	if !a.CanTransitionTo(next) {
		return &InvalidTransitionError{From: a.Status, To: next}
	}
	a.Status = next
	return nil
}
