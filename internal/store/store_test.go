package store

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms-service/internal/model"
	"lms-service/internal/tenant"
)

func uintPtr(v uint) *uint {
	return &v
}

func setupStore(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&model.Course{}))

	Init(gdb, zap.NewNop())

	courses := []model.Course{
		{TenantID: 1, Title: "Algebra"},
		{TenantID: 2, Title: "Biology"},
	}
	require.NoError(t, gdb.Create(&courses).Error)
}

func TestRepoScopedAppliesTenantPredicate(t *testing.T) {
	setupStore(t)

	instructor := tenant.Principal{ID: 10, Role: model.RoleInstructor, TenantID: uintPtr(1)}

	var courses []model.Course
	require.NoError(t, Courses().Scoped(instructor, nil).Find(&courses).Error)

	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra", courses[0].Title)
}

func TestRepoUnrestrictedSeesAllTenants(t *testing.T) {
	setupStore(t)

	var courses []model.Course
	require.NoError(t, Courses().Unrestricted("test lookup").Find(&courses).Error)
	assert.Len(t, courses, 2)
}

func TestRepoScopedIsExemptForSuperAdmin(t *testing.T) {
	setupStore(t)

	super := tenant.Principal{ID: 1, Role: model.RoleSuperAdmin}

	var courses []model.Course
	require.NoError(t, Courses().Scoped(super, nil).Find(&courses).Error)
	assert.Len(t, courses, 2)
}
