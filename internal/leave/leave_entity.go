package leave

import (
	"time"

	"hr-portal/internal/domain"
	"hr-portal/internal/scope"

	"github.com/google/uuid"
)

type Leave struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_leaves_employee"`
	LeaveType     string        `gorm:"type:varchar(20);not null"`
	StartDate     time.Time     `gorm:"type:date;not null"`
	EndDate       time.Time     `gorm:"type:date;not null"`
	TotalDays     int           `gorm:"not null"`
	Reason        string        `gorm:"type:text;not null"`
	Status        domain.Status `gorm:"type:varchar(20);not null;index:idx_leaves_status"`
	ReviewedBy    *uuid.UUID    `gorm:"type:uuid"`
	ReviewComment *string       `gorm:"type:text"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined from users when read.
	OwnerName       string `gorm:"->;-:migration"`
	OwnerRole       string `gorm:"->;-:migration"`
	OwnerDepartment string `gorm:"->;-:migration"`
}

func (Leave) TableName() string { return "leaves" }

func (l Leave) Owner() scope.Owner {
	return scope.Owner{
		ID:         l.EmployeeID.String(),
		Role:       l.OwnerRole,
		Department: l.OwnerDepartment,
	}
}

// Review is the set of columns written by a review decision.
type Review struct {
	Status     domain.Status
	ReviewedBy uuid.UUID
	Comment    *string
	ReviewedAt time.Time
}

type StatusTotal struct {
	Status domain.Status
	Days   int
	Count  int
}
