package tenant

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms-service/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Course{}))
	return db
}

func seedCourses(t *testing.T, db *gorm.DB) {
	t.Helper()
	courses := []model.Course{
		{TenantID: 1, Title: "Algebra"},
		{TenantID: 1, Title: "Geometry"},
		{TenantID: 2, Title: "Biology"},
	}
	require.NoError(t, db.Create(&courses).Error)
}

func TestScopeFiltersReadsByTenant(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	instructor := Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	var courses []model.Course
	require.NoError(t, db.Scopes(Scope(instructor, nil)).Find(&courses).Error)

	require.Len(t, courses, 2)
	for _, c := range courses {
		assert.Equal(t, uint(1), c.TenantID)
	}
}

func TestScopeExemptPrincipalSeesAllTenants(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	super := Principal{ID: 1, Role: model.RoleSuperAdmin}

	var courses []model.Course
	require.NoError(t, db.Scopes(Scope(super, nil)).Find(&courses).Error)
	assert.Len(t, courses, 3)
}

func TestScopeUsesHintForUnboundPrincipal(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	unbound := Principal{ID: 10, Role: model.RoleStudent}

	var courses []model.Course
	require.NoError(t, db.Scopes(Scope(unbound, uintPtr(2))).Find(&courses).Error)

	require.Len(t, courses, 1)
	assert.Equal(t, "Biology", courses[0].Title)
}

func TestScopeUnresolvedFallsOpen(t *testing.T) {
	// Pins the documented behavior: no binding and no hint means no
	// tenant predicate, not an empty result set.
	db := newTestDB(t)
	seedCourses(t, db)

	unbound := Principal{ID: 10, Role: model.RoleStudent}

	var courses []model.Course
	require.NoError(t, db.Scopes(Scope(unbound, nil)).Find(&courses).Error)
	assert.Len(t, courses, 3)
}

func TestScopeCombinesWithOtherPredicates(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	instructor := Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	var courses []model.Course
	err := db.Scopes(Scope(instructor, nil)).Where("title = ?", "Algebra").Find(&courses).Error
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra", courses[0].Title)

	// The same AND-combination must not leak a foreign tenant's row
	err = db.Scopes(Scope(instructor, nil)).Where("title = ?", "Biology").Find(&courses).Error
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestScopeNarrowsUpdates(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	instructor := Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	// A blanket update through the scoped chain may only touch tenant 1
	result := db.Scopes(Scope(instructor, nil)).Model(&model.Course{}).Update("published", true)
	require.NoError(t, result.Error)
	assert.Equal(t, int64(2), result.RowsAffected)

	var foreign model.Course
	require.NoError(t, db.Where("tenant_id = ?", 2).First(&foreign).Error)
	assert.False(t, foreign.Published)
}

func TestScopeNarrowsDeletes(t *testing.T) {
	db := newTestDB(t)
	seedCourses(t, db)

	instructor := Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	// Deleting a foreign tenant's row by primary key through the scoped
	// chain must affect nothing
	var foreign model.Course
	require.NoError(t, db.Where("tenant_id = ?", 2).First(&foreign).Error)

	result := db.Scopes(Scope(instructor, nil)).Delete(&model.Course{}, foreign.ID)
	require.NoError(t, result.Error)
	assert.Equal(t, int64(0), result.RowsAffected)

	var count int64
	require.NoError(t, db.Model(&model.Course{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
