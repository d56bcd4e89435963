package events

import "time"

const (
	EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"
	EmployeeCreatedType    = "employee_created"
)

// EmployeeCreatedEvent is published by the identity provider when a new
// account joins the roster.
type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Role       string    `json:"role,omitempty"`
	Department string    `json:"department,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
