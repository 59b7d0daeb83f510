package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coop-transport-seating/internal/seating"
	"github.com/iliyamo/coop-transport-seating/internal/utils"
)

// OperatorKey is the echo context key holding the operator name.
const OperatorKey = "operator"

// Operator reads an optional Bearer operator token and attaches the
// operator name to the request context, where the engine picks it up for
// log and event attribution.  Requests without a token pass through
// anonymously; a token that fails verification is rejected with 401.
// An empty secret disables the middleware.
func Operator(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_token", "message": "expected a Bearer operator token"})
			}
			claims, err := utils.ParseOperatorToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_token", "message": err.Error()})
			}
			c.Set(OperatorKey, claims.Subject)
			req := c.Request()
			c.SetRequest(req.WithContext(seating.WithOperator(req.Context(), claims.Subject)))
			return next(c)
		}
	}
}

func operatorName(c echo.Context) string {
	if s, ok := c.Get(OperatorKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
