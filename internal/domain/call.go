package domain

import "time"

type CallStatus string

const (
	CallStatusDraft     CallStatus = "draft"
	CallStatusPublished CallStatus = "published"
	CallStatusClosed    CallStatus = "closed"
	CallStatusArchived  CallStatus = "archived"
)

// Call is one open-access call cycle. Applications belong to exactly one
// call and are coded CALLCODE-APP-NNN at submission.
type Call struct {
	ID                 int32      `json:"id"`
	Code               string     `json:"code"`
	Title              string     `json:"title"`
	Status             CallStatus `json:"status"`
	SubmissionStart    time.Time  `json:"submission_start"`
	SubmissionEnd      time.Time  `json:"submission_end"`
	EvaluationDeadline time.Time  `json:"evaluation_deadline"`
	ExecutionStart     time.Time  `json:"execution_start"`
	ExecutionEnd       time.Time  `json:"execution_end"`
	Description        string     `json:"description"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
}

// IsOpenForSubmission reports whether the call accepts submissions at t.
func (c *Call) IsOpenForSubmission(t time.Time) bool {
	return c.Status == CallStatusPublished &&
		!t.Before(c.SubmissionStart) && !t.After(c.SubmissionEnd)
}
