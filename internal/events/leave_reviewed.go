package events

import "time"

const (
	LeaveReviewedTopic = "hr.leave.reviewed.v1"
	LeaveReviewedType  = "leave_reviewed"
)

type LeaveReviewedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	ReviewerID string    `json:"reviewer_id"`
	Category   string    `json:"category"`
	Days       int       `json:"days"`
	Status     string    `json:"status"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
