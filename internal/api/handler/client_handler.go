package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/api/metrics"
	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  domain.Client
// @Failure      400   {object}  errorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), p, ports.CreateClientInput{
		CompanyName:    req.CompanyName,
		ContactName:    req.ContactName,
		Email:          req.Email,
		Phone:          req.Phone,
		Budget:         req.Budget,
		BudgetCurrency: req.BudgetCurrency,
		Source:         req.Source,
		Referrer:       req.Referrer,
		Requirements:   req.Requirements,
		Timeline:       req.Timeline,
		DecisionMaker:  req.DecisionMaker,
		Stage:          domain.Stage(req.Stage),
		AssignedBDE:    req.AssignedBDE,
	})
	if err != nil {
		return err
	}

	metrics.ClientsCreatedTotal.WithLabelValues(client.Stage.Name()).Inc()
	return c.JSON(http.StatusCreated, client)
}

// List handles GET /api/clients with optional stage, search, and dropped
// filters. Restricted principals receive an owner-filtered result.
//
// @Summary      List visible clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        stage    query     int     false  "Pipeline stage (1-5)"
// @Param        search   query     string  false  "Company name substring"
// @Param        dropped  query     bool    false  "Filter by dropped state"
// @Success      200      {array}   domain.Client
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	input := ports.ListClientsInput{
		Principal: p,
		Search:    c.QueryParam("search"),
	}
	if raw := c.QueryParam("stage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "stage must be an integer")
		}
		input.Stage = domain.Stage(n)
	}
	if raw := c.QueryParam("dropped"); raw != "" {
		dropped, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dropped must be a boolean")
		}
		input.Dropped = &dropped
	}

	clients, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, clients)
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client by id
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  domain.Client
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	client, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// Update handles PUT /api/clients/:id with an explicit partial payload.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      updateClientRequest  true  "Fields to update"
// @Success      200   {object}  domain.Client
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateClientRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	patch := ports.ClientPatch{
		CompanyName:    req.CompanyName,
		ContactName:    req.ContactName,
		Email:          req.Email,
		Phone:          req.Phone,
		Budget:         req.Budget,
		BudgetCurrency: req.BudgetCurrency,
		Source:         req.Source,
		Referrer:       req.Referrer,
		Requirements:   req.Requirements,
		Timeline:       req.Timeline,
		DecisionMaker:  req.DecisionMaker,
		AssignedBDE:    req.AssignedBDE,
		IsDropped:      req.IsDropped,
		DropReason:     req.DropReason,
	}
	if req.Stage != nil {
		stage := domain.Stage(*req.Stage)
		patch.Stage = &stage
	}

	before, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), p, c.Param("id"), patch)
	if err != nil {
		return err
	}

	if patch.IsDropped != nil && *patch.IsDropped && !before.IsDropped {
		metrics.ClientsDroppedTotal.Inc()
	} else if patch.Stage != nil && client.Stage != before.Stage {
		metrics.StageTransitionsTotal.WithLabelValues(client.Stage.Name()).Inc()
	}
	return c.JSON(http.StatusOK, client)
}

// Delete handles DELETE /api/clients/:id (super_admin only, cascades tasks).
//
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "client deleted"})
}

// AddNote handles POST /api/clients/:id/notes.
//
// @Summary      Add a note to a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Client id"
// @Param        body  body      addNoteRequest  true  "Note text"
// @Success      200   {object}  domain.Client
// @Failure      403   {object}  errorResponse
// @Router       /api/clients/{id}/notes [post]
func (h *ClientHandler) AddNote(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.AddNote(c.Request().Context(), p, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}
