package domain

import "time"

type NodeDecision string

const (
	NodeDecisionUnset    NodeDecision = ""
	NodeDecisionAccept   NodeDecision = "accept"
	NodeDecisionWaitlist NodeDecision = "waitlist"
	NodeDecisionReject   NodeDecision = "reject"
)

// NodeResolution is one node coordinator's accept/waitlist/reject decision
// for an application. One row per (application, node), created pending when
// the application reaches evaluated and written exactly once.
type NodeResolution struct {
	ID            int32        `json:"id"`
	ApplicationID int32        `json:"application_id"`
	NodeID        int32        `json:"node_id"`
	ReviewerID    *int32       `json:"reviewer_id,omitempty"`
	Decision      NodeDecision `json:"decision"`
	Comments      string       `json:"comments"`
	DecidedAt     *time.Time   `json:"decided_at,omitempty"`
	CreatedOn     time.Time    `json:"created_on"`
	UpdatedOn     time.Time    `json:"updated_on"`
}

func (nr *NodeResolution) IsDecided() bool {
	return nr.Decision != NodeDecisionUnset
}

// AggregateDecisions combines per-node decisions into a final resolution
// using the reject > waitlist > accept precedence. It returns false until
// every involved node has a non-unset decision.
func AggregateDecisions(resolutions []NodeResolution, involvedNodes int) (Resolution, bool) {
	decided := 0
	anyReject := false
	anyWaitlist := false
	for _, nr := range resolutions {
		if !nr.IsDecided() {
			continue
		}
		decided++
		switch nr.Decision {
		case NodeDecisionReject:
			anyReject = true
		case NodeDecisionWaitlist:
			anyWaitlist = true
		}
	}
	if decided < involvedNodes {
		return ResolutionUnset, false
	}
	switch {
	case anyReject:
		return ResolutionRejected, true
	case anyWaitlist:
		return ResolutionPending, true
	default:
		return ResolutionAccepted, true
	}
}
