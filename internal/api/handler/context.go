package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// ctxPrincipal extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both user_id and role
// must be present, and the role must be one of the defined tiers.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	userID, _ := c.Get("user_id").(string)
	roleStr, _ := c.Get("role").(string)
	if userID == "" || roleStr == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	role := domain.Role(roleStr)
	if !role.Valid() {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "unrecognized role claim")
	}

	return domain.Principal{UserID: userID, Role: role}, nil
}

// bindStrict decodes a JSON body rejecting unknown fields. Used by the
// partial-update endpoints so passthrough payload keys fail loudly instead
// of being silently ignored.
func bindStrict(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
	}
	return nil
}
