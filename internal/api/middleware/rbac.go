package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC enforces a coarse role gate at the route level. Fine-grained
// ownership checks live in the policy package; this middleware only guards
// routes that whole role tiers must never reach (e.g. user management for
// bde accounts).
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
