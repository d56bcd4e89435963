package reimbursement

import "encoding/json"

// CreateReimbursementRequest binds from JSON or from the text fields of a
// multipart form. Amount accepts both 120.5 and "120.50".
type CreateReimbursementRequest struct {
	Category    string      `json:"category" form:"category" binding:"required"`
	Amount      json.Number `json:"amount" form:"amount" binding:"required"`
	Description string      `json:"description" form:"description" binding:"required"`
	FromDate    string      `json:"from_date" form:"from_date"`
	ToDate      string      `json:"to_date" form:"to_date"`
}

type ReviewReimbursementRequest struct {
	Status string `json:"status" binding:"required"`
	Remark string `json:"remark"`
}

type ReimbursementResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	EmployeeRole  string  `json:"employee_role,omitempty"`
	Department    string  `json:"department,omitempty"`
	Category      string  `json:"category"`
	Amount        string  `json:"amount"`
	Description   string  `json:"description"`
	FromDate      *string `json:"from_date,omitempty"`
	ToDate        *string `json:"to_date,omitempty"`
	ReceiptRef    *string `json:"receipt_ref,omitempty"`
	Status        string  `json:"status"`
	ManagerRemark *string `json:"manager_remark,omitempty"`
	AdminRemark   *string `json:"admin_remark,omitempty"`
	ExceedsLimit  bool    `json:"exceeds_limit"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type OverviewResponse struct {
	TotalAmount    string `json:"total_amount"`
	ApprovedAmount string `json:"approved_amount"`
	PendingAmount  string `json:"pending_amount"`
}

type CategoryStatResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

type AdminStatsResponse struct {
	Overview   OverviewResponse       `json:"overview"`
	Categories []CategoryStatResponse `json:"categories"`
}

type CreateCategoryRequest struct {
	Name            string       `json:"name" binding:"required"`
	MaxLimit        *json.Number `json:"max_limit"`
	RequiresReceipt *bool        `json:"requires_receipt"`
	IsActive        *bool        `json:"is_active"`
}

// UpdateCategoryRequest is a partial update. ClearMaxLimit removes the limit.
type UpdateCategoryRequest struct {
	Name            *string      `json:"name"`
	MaxLimit        *json.Number `json:"max_limit"`
	ClearMaxLimit   bool         `json:"clear_max_limit"`
	RequiresReceipt *bool        `json:"requires_receipt"`
	IsActive        *bool        `json:"is_active"`
}

type CategoryResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	MaxLimit        *string `json:"max_limit"`
	RequiresReceipt bool    `json:"requires_receipt"`
	IsActive        bool    `json:"is_active"`
}
