package forms

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/ehr/carelog/internal/match"
	"github.com/ehr/carelog/internal/platform/auth"
	"github.com/ehr/carelog/internal/platform/report"
	"github.com/ehr/carelog/pkg/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleProfessional))
	g.POST("/forms", h.SubmitPatient)
	g.GET("/forms/:national_id", h.GetRecord)
	g.GET("/forms/:national_id/pdf", h.DownloadReport)
	g.POST("/forms/:national_id/family", h.SubmitFamilyForm)
	g.POST("/forms/:national_id/professional", h.SubmitProfessionalForm)
	g.POST("/patients/search", h.SearchPatient)
}

// MatchResponse is returned by SearchPatient when a patient was accepted.
type MatchResponse struct {
	Patient *Patient              `json:"patient"`
	Scores  match.FormattedScores `json:"scores"`
}

// NoMatchResponse is returned by SearchPatient when no patient reached the
// cutoff.
type NoMatchResponse struct {
	Patient   *Patient `json:"patient"`
	BestScore string   `json:"best_score"`
	Message   string   `json:"message"`
}

func (h *Handler) SubmitPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SubmitPatient(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetRecord(c echo.Context) error {
	rec, err := h.svc.GetRecord(c.Request().Context(), c.Param("national_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DownloadReport(c echo.Context) error {
	nationalID := c.Param("national_id")
	path, err := h.svc.GenerateReport(c.Request().Context(), nationalID)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
	return c.Attachment(path, fmt.Sprintf("record-%s%s", nationalID, filepath.Ext(path)))
}

func (h *Handler) SubmitFamilyForm(c echo.Context) error {
	var f FamilyForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.NationalID = c.Param("national_id")
	if err := h.svc.SubmitFamilyForm(c.Request().Context(), &f); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) SubmitProfessionalForm(c echo.Context) error {
	var f ProfessionalForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.NationalID = c.Param("national_id")
	if f.ProfessionalID == "" {
		f.ProfessionalID = auth.UserIDFromContext(c.Request().Context())
	}
	if err := h.svc.SubmitProfessionalForm(c.Request().Context(), &f); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) SearchPatient(c echo.Context) error {
	var q match.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.FindPatient(c.Request().Context(), q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !res.Matched {
		best := match.Percent(res.Scores.Total)
		return c.JSON(http.StatusOK, NoMatchResponse{
			BestScore: best,
			Message:   "closest match was only " + best,
		})
	}
	return c.JSON(http.StatusOK, MatchResponse{Patient: res.Record, Scores: res.Scores.Formatted()})
}

func httpError(err error) error {
	switch {
	case validation.IsValidationError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, report.ErrGenerationFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
