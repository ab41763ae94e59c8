package history

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/carelog/internal/platform/auth"
	"github.com/ehr/carelog/pkg/pagination"
	"github.com/ehr/carelog/pkg/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/history", auth.RequireRole(auth.RoleProfessional))
	g.POST("", h.Record)
	g.GET("", h.List)
	g.GET("/:professional_id", h.ListByProfessional)
}

func (h *Handler) Record(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if e.ProfessionalID == "" {
		e.ProfessionalID = auth.UserIDFromContext(c.Request().Context())
	}
	if err := h.svc.Record(c.Request().Context(), &e); err != nil {
		if validation.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByProfessional(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.svc.ListByProfessional(c.Request().Context(), c.Param("professional_id"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}
