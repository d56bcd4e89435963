package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name          string          `gorm:"column:name;type:varchar(255);not null"`
	Email         string          `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
	PasswordHash  string          `gorm:"column:password_hash;type:text;not null"`
	Role          string          `gorm:"column:role;type:varchar(20);not null"`
	Department    string          `gorm:"column:department;type:varchar(100);not null;index"`
	ManagerID     *uuid.UUID      `gorm:"column:manager_id;type:uuid"`
	SalaryBalance decimal.Decimal `gorm:"column:salary_balance;type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	// Joined from the manager row when listing.
	ManagerName *string `gorm:"->;-:migration"`
}

func (User) TableName() string { return "users" }

// Profile is the cached identity view of a user.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ManagerID  string `json:"manager_id,omitempty"`
}

func (u User) Profile() Profile {
	p := Profile{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}
	if u.ManagerID != nil {
		p.ManagerID = u.ManagerID.String()
	}
	return p
}

type RoleCount struct {
	Role  string
	Count int
}

type StatusCount struct {
	Status string
	Count  int
}

type DepartmentStat struct {
	Department string
	Total      int
	Employees  int
	Managers   int
	OnLeave    int
}
