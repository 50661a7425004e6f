package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lms-service/internal/handler"
	mid "lms-service/internal/middleware"
	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/pkg/config"
	"lms-service/pkg/database"
	"lms-service/pkg/jwtutil"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting lms-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize database
	if err := database.Initialize(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the scoped repositories
	store.Init(database.GetDB(), log)

	// Seed the super admin account when configured
	if err := bootstrapSuperAdmin(appConfig, log); err != nil {
		log.Fatal("Failed to bootstrap super admin", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Public auth routes
	e.POST("/auth/register", handler.Register)
	e.POST("/auth/login", handler.Login)

	// Tenant API routes
	tenantAPI := e.Group("/api/tenants", mid.AuthMiddleware)
	tenantAPI.POST("", handler.CreateTenant)
	tenantAPI.GET("/:id", handler.GetTenant)
	tenantAPI.GET("/:id/settings", handler.GetTenantSettings)
	tenantAPI.PUT("/:id/settings", handler.UpdateTenantSettings)

	// User API routes
	userAPI := e.Group("/api/users", mid.AuthMiddleware)
	userAPI.GET("", handler.ListUsers)
	userAPI.GET("/:id", handler.GetUser)
	userAPI.PUT("/:id", handler.UpdateUser)
	userAPI.DELETE("/:id", handler.DeleteUser)

	// Category API routes
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", handler.ListCategories)
	categoryAPI.GET("/:id", handler.GetCategory)
	categoryAPI.POST("", handler.CreateCategory)
	categoryAPI.PUT("/:id", handler.UpdateCategory)
	categoryAPI.DELETE("/:id", handler.DeleteCategory)

	// Course API routes
	courseAPI := e.Group("/api/courses", mid.AuthMiddleware)
	courseAPI.GET("", handler.ListCourses)
	courseAPI.GET("/:id", handler.GetCourse)
	courseAPI.POST("", handler.CreateCourse)
	courseAPI.PUT("/:id", handler.UpdateCourse)
	courseAPI.DELETE("/:id", handler.DeleteCourse)

	// Enrollment API routes
	enrollmentAPI := e.Group("/api/enrollments", mid.AuthMiddleware)
	enrollmentAPI.GET("", handler.ListEnrollments)
	enrollmentAPI.POST("", handler.CreateEnrollment)
	enrollmentAPI.DELETE("/:id", handler.CancelEnrollment)

	// Class schedule API routes
	sessionAPI := e.Group("/api/sessions", mid.AuthMiddleware)
	sessionAPI.GET("", handler.ListSessions)
	sessionAPI.GET("/:id", handler.GetSession)
	sessionAPI.POST("", handler.CreateSession)
	sessionAPI.PUT("/:id", handler.UpdateSession)
	sessionAPI.DELETE("/:id", handler.DeleteSession)

	// Invoice API routes
	invoiceAPI := e.Group("/api/invoices", mid.AuthMiddleware)
	invoiceAPI.GET("", handler.ListInvoices)
	invoiceAPI.GET("/:id", handler.GetInvoice)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}

// bootstrapSuperAdmin creates the cross-tenant super admin account from
// the environment if it does not exist yet
func bootstrapSuperAdmin(cfg *config.Config, log *zap.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	var existing model.User
	if result := store.DB().Where("email = ?", cfg.Admin.Email).First(&existing); result.Error == nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Name:     "Super Admin",
		Email:    cfg.Admin.Email,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
		Active:   true,
	}
	if result := store.DB().Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Info("Super admin account created", zap.String("email", cfg.Admin.Email))
	return nil
}
