package registry

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/domain/identity"
	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/auth"
	"github.com/cytolab/lims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(
		identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician, identity.RolePathologist)

	samples := api.Group("/samples")
	samples.GET("", h.List, auth.RequireRole(
		identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician,
		identity.RolePathologist, identity.RoleCustomer))
	samples.POST("", h.Register, auth.RequireRole(identity.RoleAccession))
	samples.GET("/:id", h.Get, auth.RequireRole(
		identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician,
		identity.RolePathologist, identity.RoleCustomer))
	samples.GET("/:id/status-history", h.StatusHistory, staff)
	samples.GET("/:id/result", h.GetResult, staff)
	samples.PUT("/:id/assign-technician", h.AssignTechnician, auth.RequireRole(identity.RoleTechnician))
	samples.PUT("/:id/send-to-imaging", h.SendToImaging, auth.RequireRole(identity.RoleTechnician))
	samples.PUT("/:id/send-to-review", h.SendToReview, auth.RequireRole(identity.RoleTechnician))
	samples.PUT("/:id/finalize", h.Finalize, auth.RequireRole(identity.RolePathologist))

	results := api.Group("/test-results")
	results.GET("", h.ListResults, auth.RequireRole(
		identity.RoleAdmin, identity.RoleTechnician, identity.RolePathologist))
	results.PUT("/:id", h.AmendResult, auth.RequireRole(identity.RolePathologist))
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apierr.Validation("invalid request body")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	sample, err := h.svc.Register(c.Request().Context(), in, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sample)
}

// List returns samples scoped by role: customers only ever see their own,
// technicians and pathologists can narrow to their assignments with
// ?mine=true, and ?status=review orders the queue urgent-first.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	role := auth.RoleFromContext(ctx)
	actor := auth.UserIDFromContext(ctx)

	f := ListFilter{Status: c.QueryParam("status")}
	switch {
	case role == identity.RoleCustomer:
		f.CustomerID = actor
	case c.QueryParam("mine") == "true" && role == identity.RoleTechnician:
		f.TechnicianID = actor
	case c.QueryParam("mine") == "true" && role == identity.RolePathologist:
		f.PathologistID = actor
	}
	if f.Status == StatusReview {
		f.UrgentFirst = true
	}

	pg := pagination.FromContext(c)
	samples, total, err := h.svc.List(ctx, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(samples, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	sample, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if auth.RoleFromContext(ctx) == identity.RoleCustomer && sample.CustomerID != auth.UserIDFromContext(ctx) {
		return apierr.NotFound("Sample not found")
	}
	return c.JSON(http.StatusOK, sample)
}

func (h *Handler) StatusHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	history, err := h.svc.StatusHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) AssignTechnician(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	sample, err := h.svc.AssignTechnician(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sample)
}

func (h *Handler) SendToImaging(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	sample, err := h.svc.SendToImaging(ctx, id, auth.UserIDFromContext(ctx), body.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sample)
}

func (h *Handler) SendToReview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var body struct {
		Findings string `json:"findings"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	sample, err := h.svc.SendToReview(ctx, id, auth.UserIDFromContext(ctx), body.Findings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sample)
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var body struct {
		Diagnosis       string `json:"diagnosis"`
		Recommendations string `json:"recommendations"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	sample, err := h.svc.Finalize(ctx, id, auth.UserIDFromContext(ctx), body.Diagnosis, body.Recommendations)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sample)
}

func (h *Handler) GetResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	tr, err := h.svc.GetResultBySample(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) ListResults(c echo.Context) error {
	pg := pagination.FromContext(c)
	results, total, err := h.svc.ListResults(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, pg.Limit, pg.Offset))
}

func (h *Handler) AmendResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var body struct {
		Recommendations string `json:"recommendations"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	tr, err := h.svc.AmendRecommendations(c.Request().Context(), id, body.Recommendations)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tr)
}
