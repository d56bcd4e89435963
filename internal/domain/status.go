package domain

import "strings"

// Status is the lifecycle state shared by leave and reimbursement requests.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseReviewStatus accepts only the two review outcomes, in any case.
func ParseReviewStatus(v string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	switch s {
	case StatusApproved, StatusRejected:
		return s, true
	default:
		return "", false
	}
}

func (s Status) String() string { return string(s) }
