package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// aiPathSuffixes marks endpoints that call the AI backend and need a longer
// timeout than plain store reads and writes.
var aiPathSuffixes = []string{"/review", "/questions"}

// SelectiveTimeoutConfig applies defaultTimeout to most endpoints and
// aiTimeout to AI-backed ones.
func SelectiveTimeoutConfig(defaultTimeout, aiTimeout time.Duration) echo.MiddlewareFunc {
	standard := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: defaultTimeout})
	extended := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: aiTimeout})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		standardNext := standard(next)
		extendedNext := extended(next)
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, suffix := range aiPathSuffixes {
				if strings.HasSuffix(path, suffix) {
					return extendedNext(c)
				}
			}
			return standardNext(c)
		}
	}
}
