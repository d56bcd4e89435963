package scope

import "gorm.io/gorm"

// Owner is the roster view of a request's creator, read at request time.
type Owner struct {
	ID         string
	Role       string
	Department string
}

// Filter describes a set of requests by their owner. The zero value matches
// nothing.
type Filter struct {
	All            bool
	OwnerID        string
	Department     string
	ExcludeOwnerID string
}

func (f Filter) matchesNothing() bool {
	return !f.All && f.OwnerID == "" && f.Department == ""
}

// Allows is the predicate form of the filter.
func (f Filter) Allows(owner Owner) bool {
	if f.All {
		return true
	}
	if f.matchesNothing() {
		return false
	}
	if f.OwnerID != "" && owner.ID != f.OwnerID {
		return false
	}
	if f.Department != "" && owner.Department != f.Department {
		return false
	}
	if f.ExcludeOwnerID != "" && owner.ID == f.ExcludeOwnerID {
		return false
	}
	return true
}

// Apply is the query form of the filter. ownerColumn is the request's owner
// id column and departmentColumn the joined owner department column.
func (f Filter) Apply(ownerColumn, departmentColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.All {
			return db
		}
		if f.matchesNothing() {
			return db.Where("1 = 0")
		}
		if f.OwnerID != "" {
			db = db.Where(ownerColumn+" = ?", f.OwnerID)
		}
		if f.Department != "" {
			db = db.Where(departmentColumn+" = ?", f.Department)
		}
		if f.ExcludeOwnerID != "" {
			db = db.Where(ownerColumn+" <> ?", f.ExcludeOwnerID)
		}
		return db
	}
}
