package domain

import "time"

// AccessRequest is one equipment line item of an application. NodeID is
// resolved from the equipment on read; the distinct set of node IDs over an
// application's requests drives the feasibility and resolution fan-out.
type AccessRequest struct {
	ID             int32      `json:"id"`
	ApplicationID  int32      `json:"application_id"`
	EquipmentID    int32      `json:"equipment_id"`
	NodeID         int32      `json:"node_id"`
	EquipmentName  string     `json:"equipment_name,omitempty"`
	HoursRequested float64    `json:"hours_requested"`
	HoursApproved  *float64   `json:"hours_approved,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CompletedBy    *int32     `json:"completed_by,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	CreatedOn      time.Time  `json:"created_on"`
}

func (ar *AccessRequest) IsCompleted() bool {
	return ar.CompletedAt != nil
}
