// Package store is the data-access boundary for tenant-owned entities.
// Every repository hands out queries with the tenant scope already
// attached; detaching the scope is an explicit, logged operation so that
// administrative lookups stay auditable.
package store

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms-service/internal/tenant"
	"lms-service/prometheus"
)

var (
	db  *gorm.DB
	log = zap.NewNop()
)

// Init wires the store against the database connection. Must be called
// once at startup before any repository is used.
func Init(gdb *gorm.DB, logger *zap.Logger) {
	db = gdb
	if logger != nil {
		log = logger
	}
}

// DB returns the raw database handle for non-tenant-owned tables
// (the tenants table itself) and for transactions
func DB() *gorm.DB {
	return db
}

// Repo is the scoped repository for one tenant-owned entity type
type Repo struct {
	resource string
}

// Scoped returns a query builder with the tenant scope attached for the
// given principal. All finders, updates and deletes chained on it carry
// the tenant predicate.
func (r *Repo) Scoped(p tenant.Principal, hint *uint) *gorm.DB {
	return db.Scopes(tenant.Scope(p, hint))
}

// Unrestricted returns a query builder without the tenant scope. The
// opt-out is deliberate and auditable: it logs the resource and reason
// and bumps a counter. Callers must run the resource policy against
// anything fetched this way before acting on it.
func (r *Repo) Unrestricted(reason string) *gorm.DB {
	log.Warn("tenant scope detached",
		zap.String("resource", r.resource),
		zap.String("reason", reason))
	prometheus.RecordUnscopedQuery(r.resource)
	return db
}

var (
	users       = &Repo{resource: "user"}
	categories  = &Repo{resource: "category"}
	courses     = &Repo{resource: "course"}
	enrollments = &Repo{resource: "enrollment"}
	sessions    = &Repo{resource: "class_session"}
	invoices    = &Repo{resource: "invoice"}
)

// Users returns the repository for tenant users
func Users() *Repo { return users }

// Categories returns the repository for course categories
func Categories() *Repo { return categories }

// Courses returns the repository for courses
func Courses() *Repo { return courses }

// Enrollments returns the repository for enrollments
func Enrollments() *Repo { return enrollments }

// Sessions returns the repository for class sessions
func Sessions() *Repo { return sessions }

// Invoices returns the repository for invoices
func Invoices() *Repo { return invoices }
