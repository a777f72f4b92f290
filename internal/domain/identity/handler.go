package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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

// RegisterRoutes wires the public login route, the admin-only user routes,
// and the customer routes. authMW is the bearer-token middleware; api is the
// /api group that already carries it.
func (h *Handler) RegisterRoutes(e *echo.Echo, api *echo.Group, authMW echo.MiddlewareFunc) {
	e.POST("/login", h.Login)

	users := e.Group("/users", authMW, auth.RequireRole(RoleAdmin))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)

	customers := api.Group("/customers")
	customers.GET("", h.ListCustomers, auth.RequireRole(RoleAdmin, RoleAccession))
	customers.POST("", h.CreateCustomer, auth.RequireRole(RoleAdmin))
	customers.PUT("/:id", h.UpdateCustomer, auth.RequireRole(RoleAdmin))
	customers.DELETE("/:id", h.DeleteCustomer, auth.RequireRole(RoleAdmin))
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierr.Validation("invalid request body")
	}
	resp, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apierr.Validation("invalid request body")
	}
	u, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListCustomers(c echo.Context) error {
	pg := pagination.FromContext(c)
	customers, total, err := h.svc.ListCustomers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(customers, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateCustomer(c echo.Context) error {
	var in CustomerInput
	if err := c.Bind(&in); err != nil {
		return apierr.Validation("invalid request body")
	}
	customer, err := h.svc.CreateCustomer(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	var customer Customer
	if err := c.Bind(&customer); err != nil {
		return apierr.Validation("invalid request body")
	}
	customer.ID = id
	updated, err := h.svc.UpdateCustomer(c.Request().Context(), &customer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.Validation("invalid id")
	}
	if err := h.svc.DeleteCustomer(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}
