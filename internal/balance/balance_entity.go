package balance

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategorySick      Category = "SICK"
	CategoryCasual    Category = "CASUAL"
	CategoryAnnual    Category = "ANNUAL"
	CategoryMaternity Category = "MATERNITY"
	CategoryPaternity Category = "PATERNITY"
)

// Categories is the closed set in display order.
var Categories = []Category{
	CategorySick,
	CategoryCasual,
	CategoryAnnual,
	CategoryMaternity,
	CategoryPaternity,
}

var categoryColumns = map[Category]string{
	CategorySick:      "sick_leave",
	CategoryCasual:    "casual_leave",
	CategoryAnnual:    "annual_leave",
	CategoryMaternity: "maternity_leave",
	CategoryPaternity: "paternity_leave",
}

// ParseCategory accepts "SICK" as well as labels like "Sick Leave".
func ParseCategory(v string) (Category, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	v = strings.TrimSuffix(v, " LEAVE")
	c := Category(v)
	_, ok := categoryColumns[c]
	return c, ok
}

func (c Category) Column() string {
	return categoryColumns[c]
}

type LeaveBalance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_employee"`
	SickLeave      int       `gorm:"not null;default:12"`
	CasualLeave    int       `gorm:"not null;default:10"`
	AnnualLeave    int       `gorm:"not null;default:15"`
	MaternityLeave int       `gorm:"not null;default:90"`
	PaternityLeave int       `gorm:"not null;default:15"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LeaveBalance) TableName() string { return "leave_balances" }

// Remaining returns the counter for c.
func (b LeaveBalance) Remaining(c Category) int {
	switch c {
	case CategorySick:
		return b.SickLeave
	case CategoryCasual:
		return b.CasualLeave
	case CategoryAnnual:
		return b.AnnualLeave
	case CategoryMaternity:
		return b.MaternityLeave
	case CategoryPaternity:
		return b.PaternityLeave
	default:
		return 0
	}
}

// Total is the sum of all counters.
func (b LeaveBalance) Total() int {
	total := 0
	for _, c := range Categories {
		total += b.Remaining(c)
	}
	return total
}
