package balance

import "github.com/google/uuid"

// Policy holds the initial quota per category.
type Policy map[Category]int

// DefaultPolicy is the yearly allotment given to every new employee.
var DefaultPolicy = Policy{
	CategorySick:      12,
	CategoryCasual:    10,
	CategoryAnnual:    15,
	CategoryMaternity: 90,
	CategoryPaternity: 15,
}

func (p Policy) InitialTotal() int {
	total := 0
	for _, c := range Categories {
		total += p[c]
	}
	return total
}

// NewBalance builds an unsaved balance seeded from the policy.
func (p Policy) NewBalance(employeeID uuid.UUID) LeaveBalance {
	return LeaveBalance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		SickLeave:      p[CategorySick],
		CasualLeave:    p[CategoryCasual],
		AnnualLeave:    p[CategoryAnnual],
		MaternityLeave: p[CategoryMaternity],
		PaternityLeave: p[CategoryPaternity],
	}
}
