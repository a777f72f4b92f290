package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/domain/identity"
	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/:role", h.Stats)
}

// Stats serves the aggregate view for one role. Non-admins may only request
// their own role's dashboard.
func (h *Handler) Stats(c echo.Context) error {
	role := c.Param("role")
	switch role {
	case identity.RoleAdmin, identity.RoleAccession, identity.RoleTechnician,
		identity.RolePathologist, identity.RoleCustomer:
	default:
		return apierr.Validation("unknown role")
	}

	ctx := c.Request().Context()
	actorRole := auth.RoleFromContext(ctx)
	if actorRole != identity.RoleAdmin && actorRole != role {
		return apierr.New(apierr.KindTokenInvalid, "insufficient role")
	}

	stats, err := h.svc.StatsFor(ctx, role, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
