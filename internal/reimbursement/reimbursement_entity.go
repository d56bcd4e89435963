package reimbursement

import (
	"time"

	"hr-portal/internal/domain"
	"hr-portal/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Reimbursement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_reimbursements_employee"`
	Category      string          `gorm:"type:varchar(100);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description   string          `gorm:"type:text;not null"`
	FromDate      *time.Time      `gorm:"type:date"`
	ToDate        *time.Time      `gorm:"type:date"`
	ReceiptRef    *string         `gorm:"type:text"`
	Status        domain.Status   `gorm:"type:varchar(20);not null;index:idx_reimbursements_status"`
	ManagerRemark *string         `gorm:"type:text"`
	AdminRemark   *string         `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined from users and reimbursement_categories when read.
	OwnerName        string              `gorm:"->;-:migration"`
	OwnerRole        string              `gorm:"->;-:migration"`
	OwnerDepartment  string              `gorm:"->;-:migration"`
	CategoryMaxLimit decimal.NullDecimal `gorm:"->;-:migration"`
}

func (Reimbursement) TableName() string { return "reimbursements" }

func (r Reimbursement) Owner() scope.Owner {
	return scope.Owner{
		ID:         r.EmployeeID.String(),
		Role:       r.OwnerRole,
		Department: r.OwnerDepartment,
	}
}

// ExceedsLimit reports whether the amount is above the advisory category
// limit. Categories without a limit never exceed.
func (r Reimbursement) ExceedsLimit() bool {
	return r.CategoryMaxLimit.Valid && r.Amount.GreaterThan(r.CategoryMaxLimit.Decimal)
}

// Decision is what one review writes. Only one remark column is set,
// chosen by the reviewer's role.
type Decision struct {
	Status       domain.Status
	RemarkColumn string
	Remark       *string
}

const (
	RemarkColumnManager = "manager_remark"
	RemarkColumnAdmin   = "admin_remark"
)

type Category struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name            string              `gorm:"type:varchar(100);not null;uniqueIndex:uq_reimbursement_category_name"`
	MaxLimit        decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	RequiresReceipt bool                `gorm:"not null"`
	IsActive        bool                `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Category) TableName() string { return "reimbursement_categories" }

// AmountOverview sums request amounts by status.
type AmountOverview struct {
	TotalAmount    decimal.Decimal
	ApprovedAmount decimal.Decimal
	PendingAmount  decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}
