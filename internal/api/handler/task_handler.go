package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// TaskHandler exposes the task endpoints.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      createTaskRequest  true  "Task data"
// @Success      201      {object}  domain.Task
// @Failure      400      {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), p, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    req.ClientID,
		AssignedTo:  req.AssignedTo,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

// List handles GET /api/tasks.
//
// @Summary      List tasks visible to the caller
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  query     string  false  "Filter by client"
// @Param        status     query     string  false  "Filter by status"  Enums(pending, done)
// @Success      200        {array}   domain.Task
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	input := ports.ListTasksInput{
		Principal: p,
		ClientID:  c.QueryParam("client_id"),
	}
	if status := c.QueryParam("status"); status != "" {
		ts := domain.TaskStatus(status)
		if !ts.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "status must be pending or done")
		}
		input.Status = ts
	}

	tasks, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

// UpdateStatus handles PATCH /api/tasks/:id/status.
//
// @Summary      Update a task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Task id"
// @Param        request  body      updateTaskStatusRequest  true  "New status"
// @Success      200      {object}  domain.Task
// @Failure      403      {object}  errorResponse
// @Router       /api/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), p, c.Param("id"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}
