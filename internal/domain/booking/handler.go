package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/physiocare/clinic/internal/platform/auth"
	"github.com/physiocare/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the public booking surface and the admin management
// surface. The public group carries no auth; the admin group requires the
// admin role.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.GET("/available-slots", h.PublicAvailableSlots)
	public.POST("/bookings", h.CreateBooking)

	adminGroup := api.Group("/admin", auth.RequireRole("admin"))
	adminGroup.GET("/available-slots", h.AdminAvailableSlots)
	adminGroup.GET("/bookings", h.ListBookings)
	adminGroup.GET("/bookings/:id", h.GetBooking)
	adminGroup.PATCH("/bookings/:id", h.UpdateBookingStatus)
	adminGroup.GET("/blocked-slots", h.ListBlockedSlots)
	adminGroup.POST("/blocked-slots", h.CreateBlockedSlot)
	adminGroup.DELETE("/blocked-slots/:id", h.DeleteBlockedSlot)
	adminGroup.DELETE("/blocked-slots", h.DeleteBlockedSlotAt)
}

// httpError maps domain errors to transport errors without leaking internals.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotBlocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrClinicClosed):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

type availabilityResponse struct {
	AvailableSlots []string    `json:"availableSlots"`
	Message        string      `json:"message,omitempty"`
	ClinicInfo     *ClinicInfo `json:"clinicInfo,omitempty"`
}

func (h *Handler) availableSlots(c echo.Context, admin bool) error {
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	slots, message, info, err := h.svc.Availability(c.Request().Context(), dateStr, admin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, availabilityResponse{
		AvailableSlots: slots,
		Message:        message,
		ClinicInfo:     info,
	})
}

func (h *Handler) PublicAvailableSlots(c echo.Context) error {
	return h.availableSlots(c, false)
}

func (h *Handler) AdminAvailableSlots(c echo.Context) error {
	return h.availableSlots(c, true)
}

type bookingResponse struct {
	*Booking
	ConfirmationNumber string `json:"confirmationNumber"`
}

func annotate(b *Booking) bookingResponse {
	return bookingResponse{Booking: b, ConfirmationNumber: b.ConfirmationNumber()}
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.SubmitBooking(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"booking": annotate(b),
	})
}

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, annotate(b))
}

func (h *Handler) ListBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	if st := c.QueryParam("status"); st != "" {
		params["status"] = st
	}
	if d := c.QueryParam("date"); d != "" {
		params["date"] = d
	}
	items, total, err := h.svc.ListBookings(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	annotated := make([]bookingResponse, 0, len(items))
	for _, b := range items {
		annotated = append(annotated, annotate(b))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(annotated, total, pg.Limit, pg.Offset))
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *Handler) UpdateBookingStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateBookingStatus(c.Request().Context(), id, req.Status, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, annotate(b))
}

type createBlockedSlotRequest struct {
	Date   string  `json:"date"`
	Time   string  `json:"time"`
	Reason *string `json:"reason,omitempty"`
}

func (h *Handler) CreateBlockedSlot(c echo.Context) error {
	var req createBlockedSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot := &BlockedSlot{
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		CreatedBy: auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.CreateBlockedSlot(c.Request().Context(), slot); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ListBlockedSlots(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBlockedSlots(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteBlockedSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBlockedSlot(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteBlockedSlotAt removes a blocked slot by its (date, time) pair.
func (h *Handler) DeleteBlockedSlotAt(c echo.Context) error {
	date := c.QueryParam("date")
	timeOfDay := c.QueryParam("time")
	if date == "" || timeOfDay == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and time query parameters are required")
	}
	if err := h.svc.DeleteBlockedSlotAt(c.Request().Context(), date, timeOfDay); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
