package domain

import "time"

// FeasibilityReview is one node's binary technical judgment on an
// application. One row per (application, node), created pending at
// submission and written exactly once.
type FeasibilityReview struct {
	ID            int32      `json:"id"`
	ApplicationID int32      `json:"application_id"`
	NodeID        int32      `json:"node_id"`
	ReviewerID    *int32     `json:"reviewer_id,omitempty"`
	IsFeasible    *bool      `json:"is_feasible,omitempty"`
	Comments      string     `json:"comments"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedOn     time.Time  `json:"created_on"`
	UpdatedOn     time.Time  `json:"updated_on"`
}

func (fr *FeasibilityReview) IsDecided() bool {
	return fr.IsFeasible != nil
}
