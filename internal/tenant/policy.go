package tenant

// Owned is implemented by every persisted record scoped to one tenant.
// The Tenant model implements it by returning its own ID, so acting on a
// tenant requires belonging to it.
type Owned interface {
	OwnerTenantID() uint
}

// Policy is the per-resource authorization check. It is the last line of
// defense: it must be evaluated before every mutating operation on an
// already-fetched entity, even when the entity was loaded through a
// scoped query, because administrative paths may fetch by primary key
// with the scope detached.
type Policy struct {
	Resource string
}

func (pl Policy) allows(p Principal, e Owned) bool {
	if p.Exempt() {
		return true
	}
	return p.TenantID != nil && *p.TenantID == e.OwnerTenantID()
}

// CanView reports whether the principal may read the entity
func (pl Policy) CanView(p Principal, e Owned) bool {
	return pl.allows(p, e)
}

// CanUpdate reports whether the principal may modify the entity
func (pl Policy) CanUpdate(p Principal, e Owned) bool {
	return pl.allows(p, e)
}

// CanDelete reports whether the principal may delete the entity
func (pl Policy) CanDelete(p Principal, e Owned) bool {
	return pl.allows(p, e)
}

// One policy per tenant-owned entity type
var (
	TenantPolicy     = Policy{Resource: "tenant"}
	UserPolicy       = Policy{Resource: "user"}
	CategoryPolicy   = Policy{Resource: "category"}
	CoursePolicy     = Policy{Resource: "course"}
	EnrollmentPolicy = Policy{Resource: "enrollment"}
	SessionPolicy    = Policy{Resource: "class_session"}
	InvoicePolicy    = Policy{Resource: "invoice"}
)
