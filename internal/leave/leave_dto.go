package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type ReviewLeaveRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	Department    string  `json:"department,omitempty"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewComment *string `json:"review_comment,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type LeaveStatsResponse struct {
	Pending      int            `json:"pending"`
	Approved     int            `json:"approved"`
	Rejected     int            `json:"rejected"`
	Total        int            `json:"total"`
	Remaining    *int           `json:"remaining,omitempty"`
	InitialTotal *int           `json:"initial_total,omitempty"`
	Balances     map[string]int `json:"balances,omitempty"`
}
