package events

import "time"

const (
	ReimbursementReviewedTopic = "hr.reimbursement.reviewed.v1"
	ReimbursementReviewedType  = "reimbursement_reviewed"
)

type ReimbursementReviewedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	ReimbursementID string    `json:"reimbursement_id"`
	EmployeeID      string    `json:"employee_id"`
	ReviewerID      string    `json:"reviewer_id"`
	ReviewerRole    string    `json:"reviewer_role"`
	Category        string    `json:"category"`
	Amount          string    `json:"amount"`
	FromStatus      string    `json:"from_status"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}
