package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lms-service/internal/model"
)

func TestPolicyChecks(t *testing.T) {
	course := &model.Course{ID: 1, TenantID: 2, Title: "Algebra"}

	tests := []struct {
		name string
		p    Principal
		want bool
	}{
		{
			name: "same tenant is allowed",
			p:    Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(2)},
			want: true,
		},
		{
			// Cross-tenant access on an entity fetched by primary key,
			// bypassing the scoping filter, must still be denied.
			name: "foreign tenant is denied",
			p:    Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)},
			want: false,
		},
		{
			name: "super admin is allowed across tenants",
			p:    Principal{ID: 1, Role: model.RoleSuperAdmin},
			want: true,
		},
		{
			name: "unbound non-exempt principal is denied",
			p:    Principal{ID: 10, Role: model.RoleStudent},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// All three checks share one rule
			assert.Equal(t, tt.want, CoursePolicy.CanView(tt.p, course))
			assert.Equal(t, tt.want, CoursePolicy.CanUpdate(tt.p, course))
			assert.Equal(t, tt.want, CoursePolicy.CanDelete(tt.p, course))
		})
	}
}

func TestTenantPolicySelfOwnership(t *testing.T) {
	tnt := &model.Tenant{ID: 5, Name: "acme"}

	member := Principal{ID: 3, Role: model.RoleAdmin, TenantID: uintPtr(5)}
	outsider := Principal{ID: 4, Role: model.RoleAdmin, TenantID: uintPtr(6)}
	super := Principal{ID: 1, Role: model.RoleSuperAdmin}

	assert.True(t, TenantPolicy.CanUpdate(member, tnt))
	assert.False(t, TenantPolicy.CanUpdate(outsider, tnt))
	assert.True(t, TenantPolicy.CanDelete(super, tnt))
}

func TestPolicyAcrossEntityTypes(t *testing.T) {
	p := Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	assert.True(t, EnrollmentPolicy.CanUpdate(p, &model.Enrollment{TenantID: 1}))
	assert.False(t, EnrollmentPolicy.CanUpdate(p, &model.Enrollment{TenantID: 2}))
	assert.True(t, SessionPolicy.CanDelete(p, &model.ClassSession{TenantID: 1}))
	assert.False(t, InvoicePolicy.CanView(p, &model.Invoice{TenantID: 2}))
	assert.False(t, UserPolicy.CanUpdate(p, &model.User{TenantID: uintPtr(2)}))
	assert.True(t, CategoryPolicy.CanDelete(p, &model.Category{TenantID: 1}))
}
