package domain

import "time"

type Role string

const (
	RoleApplicant       Role = "applicant"
	RoleNodeCoordinator Role = "node_coordinator"
	RoleEvaluator       Role = "evaluator"
	RoleCoordinator     Role = "coordinator"
	RoleAdmin           Role = "admin"
)

type User struct {
	ID           int32     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Entity       string    `json:"entity"`
	ORCID        string    `json:"orcid"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// UserRole grants a role, optionally scoped to a node (node_coordinator) or
// tagged with a specialization area (evaluator).
type UserRole struct {
	ID        int32     `json:"id"`
	UserID    int32     `json:"user_id"`
	Role      Role      `json:"role"`
	NodeID    *int32    `json:"node_id,omitempty"`
	Area      string    `json:"area,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedOn time.Time `json:"created_on"`
}
