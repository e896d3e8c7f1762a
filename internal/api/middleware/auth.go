package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"hireloop/internal/config"
	"hireloop/pkg/models"

	"github.com/labstack/echo/v4"
)

// organizationIDKey is where OperatorAuth stores the caller's organization
const organizationIDKey = "organization_id"

// OperatorAuth authenticates operator endpoints with a bearer key and scopes
// the request to the organization named in the X-Organization-ID header.
func OperatorAuth(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Auth.OperatorKey == "" {
				return unauthorized(c, "operator authentication not configured")
			}

			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Auth.OperatorKey)) != 1 {
				return unauthorized(c, "invalid operator credentials")
			}

			orgID := c.Request().Header.Get("X-Organization-ID")
			if orgID == "" {
				return unauthorized(c, "X-Organization-ID header is required")
			}
			c.Set(organizationIDKey, orgID)

			return next(c)
		}
	}
}

// AgentAuth authenticates the machine callback with the shared agent key
func AgentAuth(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Auth.AgentKey == "" {
				return unauthorized(c, "agent authentication not configured")
			}

			key := c.Request().Header.Get("X-Agent-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Auth.AgentKey)) != 1 {
				return unauthorized(c, "invalid agent credentials")
			}

			return next(c)
		}
	}
}

// OrganizationID returns the organization set by OperatorAuth
func OrganizationID(c echo.Context) string {
	if orgID, ok := c.Get(organizationIDKey).(string); ok {
		return orgID
	}
	return ""
}

func unauthorized(c echo.Context, message string) error {
	requestID, _ := c.Get("request_id").(string)
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:     "unauthorized",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
