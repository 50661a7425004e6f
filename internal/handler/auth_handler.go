package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lms-service/internal/model"
	"lms-service/internal/store"
	"lms-service/pkg/jwtutil"
	"lms-service/pkg/logger"
	"lms-service/prometheus"
)

// Register creates a new user account
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		TenantID *uint  `json:"tenant_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := store.DB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// The tenant binding, when supplied, must reference an existing tenant
	if req.TenantID != nil {
		var tnt model.Tenant
		if result := store.DB().First(&tnt, *req.TenantID); result.Error != nil {
			log.Error("Tenant not found for registration", zap.Uint("tenant_id", *req.TenantID))
			prometheus.RecordAuthError("tenant_not_found")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not found"})
		}
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.RoleStudent,
		TenantID: req.TenantID,
		Active:   true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := store.DB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login authenticates a user and issues a JWT with tenant claims
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Credential lookup happens before any tenant context exists
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := store.DB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.Active {
		log.Error("User is inactive", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve the tenant name for the token claims
	var tenantName string
	if user.TenantID != nil {
		var tnt model.Tenant
		if result := store.DB().Select("name").First(&tnt, *user.TenantID); result.Error == nil {
			tenantName = tnt.Name
		}
	}

	token, err := jwtutil.GenerateTokenWithTenant(user.Email, user.ID, user.Role, user.TenantID, tenantName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	if user.TenantID != nil {
		log.Info("User logged in with tenant context",
			zap.String("email", user.Email),
			zap.Uint("tenant_id", *user.TenantID),
			zap.String("tenant_name", tenantName),
			zap.String("role", user.Role))
	} else {
		log.Info("User logged in", zap.String("email", user.Email), zap.String("role", user.Role))
	}

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	}
	if user.TenantID != nil {
		response["tenant"] = map[string]interface{}{
			"id":   *user.TenantID,
			"name": tenantName,
		}
	}

	return c.JSON(http.StatusOK, response)
}
