package tenant

import (
	"gorm.io/gorm"
)

// Scope returns a gorm scope that narrows every query built on it to the
// principal's effective tenant. The predicate is AND-combined with any
// other conditions and applies to reads, updates and deletes issued
// through the same chain. When resolution yields nil (exempt principal,
// or the documented unrestricted fallback) no predicate is added.
//
// The scope is computed fresh per query construction; it never caches
// the resolved tenant across requests.
func Scope(p Principal, hint *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		resolved := Resolve(p, hint)
		if resolved == nil {
			return db
		}
		return db.Where("tenant_id = ?", *resolved)
	}
}
