package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TenantIDKey is the gin context key holding the resolved tenant ID
	TenantIDKey = "tenant_id"
	// TenantHeaderKey is the request header carrying the tenant ID
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths that don't require tenant context
	SkipPaths []string
	// Required determines whether requests without a tenant are rejected
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:  true,
		Logger:    nil,
	}
}

// Tenant extracts the tenant ID from the X-Tenant-ID header and stores it
// in the gin context for handlers
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_BAD_REQUEST",
						"message": "Missing " + TenantHeaderKey + " header",
					},
				})
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Rejected malformed tenant ID",
					zap.String("raw", raw),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_BAD_REQUEST",
					"message": "Malformed " + TenantHeaderKey + " header",
				},
			})
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant ID stored by the middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}
