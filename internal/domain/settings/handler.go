package settings

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/physiocare/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminGroup := api.Group("/admin", auth.RequireRole("admin"))
	adminGroup.GET("/settings", h.GetSettings)
	adminGroup.POST("/settings", h.UpdateSettings)
}

func (h *Handler) GetSettings(c echo.Context) error {
	s, err := h.svc.GetOrCreate(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load settings")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var in ClinicSettings
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.Update(c.Request().Context(), &in)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save settings")
	}
	return c.JSON(http.StatusOK, updated)
}
