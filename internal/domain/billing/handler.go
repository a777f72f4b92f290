package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/domain/identity"
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
	api.GET("/billing-records", h.ListRecords,
		auth.RequireRole(identity.RoleAdmin, identity.RoleCustomer))
	api.GET("/pricing-tiers", h.ListPricingTiers,
		auth.RequireRole(identity.RoleAdmin, identity.RoleAccession, identity.RoleCustomer))
}

// ListRecords returns all billing records for admins and only the caller's
// own records for customers.
func (h *Handler) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	customerID := uuid.Nil
	if auth.RoleFromContext(ctx) == identity.RoleCustomer {
		customerID = auth.UserIDFromContext(ctx)
	}

	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListRecords(ctx, customerID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPricingTiers(c echo.Context) error {
	tiers, err := h.svc.ListPricingTiers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tiers)
}
