package lab

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
	labs := api.Group("/labs")
	labs.GET("", h.List, auth.RequireRole(
		identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician, identity.RolePathologist))
	labs.POST("", h.Create, auth.RequireRole(identity.RoleAdmin))
	labs.PUT("/:id", h.Update, auth.RequireRole(identity.RoleAdmin))
	labs.DELETE("/:id", h.Delete, auth.RequireRole(identity.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	var body struct {
		Name        string            `json:"name"`
		Address     string            `json:"address"`
		ContactInfo map[string]string `json:"contact_info"`
		Active      *bool             `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	l := Lab{
		Name:        body.Name,
		Address:     body.Address,
		ContactInfo: body.ContactInfo,
		Active:      body.Active == nil || *body.Active,
	}
	if err := h.svc.Create(c.Request().Context(), &l); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	labs, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(labs, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return apierr.Validation("invalid request body")
	}
	l, err := h.svc.Update(c.Request().Context(), id, body.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Lab deleted successfully"})
}
