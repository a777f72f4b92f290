package patient

import (
	"net/http"

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
	patients := api.Group("/patients")
	patients.GET("", h.List, auth.RequireRole(
		identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician, identity.RolePathologist))
	patients.POST("", h.Create, auth.RequireRole(identity.RoleAdmin, identity.RoleAccession))
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apierr.Validation("invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}
