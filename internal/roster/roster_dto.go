package roster

import "encoding/json"

// UpdateUserRequest is a partial update. ManagerID set to "" clears the
// assignment.
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	ManagerID  *string `json:"managerId"`
}

type CreditSalaryRequest struct {
	Amount json.Number `json:"amount" binding:"required"`
}

type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Department    string  `json:"department"`
	ManagerID     *string `json:"manager_id,omitempty"`
	ManagerName   *string `json:"manager_name,omitempty"`
	SalaryBalance string  `json:"salary_balance"`
	CreatedAt     string  `json:"created_at"`
}

type CreditSalaryResponse struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
}

type UserCounts struct {
	Total     int `json:"total"`
	Employees int `json:"employees"`
	Managers  int `json:"managers"`
	Admins    int `json:"admins"`
}

type LeaveCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type DepartmentStatResponse struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Employees int    `json:"employees"`
	Managers  int    `json:"managers"`
	OnLeave   int    `json:"on_leave"`
}

type SystemStatsResponse struct {
	Users       UserCounts               `json:"users"`
	Leaves      LeaveCounts              `json:"leaves"`
	Departments []DepartmentStatResponse `json:"departments"`
}
