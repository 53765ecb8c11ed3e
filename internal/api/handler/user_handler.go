package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// UserHandler exposes the account management endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /api/users.
//
// @Summary      Create a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      createUserRequest  true  "Account data"
// @Success      201      {object}  domain.User
// @Failure      403      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), p, ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// List handles GET /api/users.
//
// @Summary      List all user accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	users, err := h.service.List(c.Request().Context(), p)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// ListBDEs handles GET /api/users/bdes. Any authenticated caller may use it;
// the result only includes active BDE accounts.
//
// @Summary      List active BDE accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /api/users/bdes [get]
func (h *UserHandler) ListBDEs(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	users, err := h.service.ListBDEs(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "User id"
// @Param        request  body      updateUserRequest  true  "Fields to change"
// @Success      200      {object}  domain.User
// @Failure      403      {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	patch := ports.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		patch.Role = &role
	}

	user, err := h.service.Update(c.Request().Context(), p, c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}
