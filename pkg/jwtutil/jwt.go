package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"lms-service/pkg/config"
)

var (
	signingKey = []byte("lmsservicesecretkey")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		signingKey = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`        // User's role within the tenant
	TenantID   *uint  `json:"tenant_id,omitempty"`   // Tenant the user is bound to
	TenantName string `json:"tenant_name,omitempty"` // Tenant name for convenience
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token for a user without tenant context
func GenerateToken(email string, userID uint, role string) (string, error) {
	return GenerateTokenWithTenant(email, userID, role, nil, "")
}

// GenerateTokenWithTenant creates a JWT token with user and tenant information
func GenerateTokenWithTenant(email string, userID uint, role string, tenantID *uint, tenantName string) (string, error) {
	claims := UserClaims{
		UserID:     userID,
		Email:      email,
		Role:       role,
		TenantID:   tenantID,
		TenantName: tenantName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
