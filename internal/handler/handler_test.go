package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mid "lms-service/internal/middleware"
	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/pkg/config"
	"lms-service/pkg/database"
	"lms-service/pkg/jwtutil"
)

type testEnv struct {
	e  *echo.Echo
	db *gorm.DB

	tenant1 model.Tenant
	tenant2 model.Tenant

	instructor model.User // bound to tenant 1
	outsider   model.User // bound to tenant 2
	super      model.User // cross-tenant super admin

	course1 model.Course // tenant 1
	course2 model.Course // tenant 2
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store.Init(db, zap.NewNop())

	env := &testEnv{db: db}

	env.tenant1 = model.Tenant{Name: "tenant-one", OwnerID: 1, Active: true}
	env.tenant2 = model.Tenant{Name: "tenant-two", OwnerID: 2, Active: true}
	require.NoError(t, db.Create(&env.tenant1).Error)
	require.NoError(t, db.Create(&env.tenant2).Error)

	env.instructor = model.User{
		Name: "Ida", Email: "ida@one.test", Role: model.RoleInstructor,
		TenantID: &env.tenant1.ID, Active: true,
	}
	env.outsider = model.User{
		Name: "Omar", Email: "omar@two.test", Role: model.RoleInstructor,
		TenantID: &env.tenant2.ID, Active: true,
	}
	env.super = model.User{
		Name: "Root", Email: "root@test", Role: model.RoleSuperAdmin, Active: true,
	}
	require.NoError(t, db.Create(&env.instructor).Error)
	require.NoError(t, db.Create(&env.outsider).Error)
	require.NoError(t, db.Create(&env.super).Error)

	env.course1 = model.Course{TenantID: env.tenant1.ID, Title: "Algebra", Price: 50, Published: true}
	env.course2 = model.Course{TenantID: env.tenant2.ID, Title: "Biology", Price: 80, Published: true}
	require.NoError(t, db.Create(&env.course1).Error)
	require.NoError(t, db.Create(&env.course2).Error)

	env.e = newTestRouter()
	return env
}

func newTestRouter() *echo.Echo {
	e := echo.New()

	e.POST("/auth/register", Register)
	e.POST("/auth/login", Login)

	tenantAPI := e.Group("/api/tenants", mid.AuthMiddleware)
	tenantAPI.POST("", CreateTenant)
	tenantAPI.GET("/:id", GetTenant)
	tenantAPI.GET("/:id/settings", GetTenantSettings)
	tenantAPI.PUT("/:id/settings", UpdateTenantSettings)

	courseAPI := e.Group("/api/courses", mid.AuthMiddleware)
	courseAPI.GET("", ListCourses)
	courseAPI.GET("/:id", GetCourse)
	courseAPI.POST("", CreateCourse)
	courseAPI.PUT("/:id", UpdateCourse)
	courseAPI.DELETE("/:id", DeleteCourse)

	enrollmentAPI := e.Group("/api/enrollments", mid.AuthMiddleware)
	enrollmentAPI.GET("", ListEnrollments)
	enrollmentAPI.POST("", CreateEnrollment)
	enrollmentAPI.DELETE("/:id", CancelEnrollment)

	return e
}

func token(t *testing.T, user model.User) string {
	t.Helper()
	tok, err := jwtutil.GenerateTokenWithTenant(user.Email, user.ID, user.Role, user.TenantID, "")
	require.NoError(t, err)
	return tok
}

func (env *testEnv) request(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
