package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestPublicAvailableSlots_MissingDate(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/available-slots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.PublicAvailableSlots(c)
	if err == nil {
		t.Fatal("expected error for missing date")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestPublicAvailableSlots_ReturnsSlots(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/available-slots?date=2026-03-04", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.PublicAvailableSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp availabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.AvailableSlots) != 14 {
		t.Errorf("expected 14 slots, got %d", len(resp.AvailableSlots))
	}
	if resp.ClinicInfo == nil || resp.ClinicInfo.OpeningTime != "09:00" {
		t.Errorf("expected clinic info, got %+v", resp.ClinicInfo)
	}
}

func TestPublicAvailableSlots_ClosedDay(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/available-slots?date=2026-03-07", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.PublicAvailableSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp availabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.AvailableSlots) != 0 {
		t.Errorf("expected no slots, got %v", resp.AvailableSlots)
	}
	if resp.Message != "Clinic is closed on Saturdays" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestCreateBooking_Success(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"555-0100",
		"service":"Sports Massage","date":"2026-03-04","time":"10:00",
		"sessionType":"new","message":"Knee pain"}`

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/bookings", body), rec)

	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Booking struct {
			ID                 string `json:"id"`
			Status             string `json:"status"`
			ConfirmationNumber string `json:"confirmationNumber"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Booking.Status != StatusPending {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Booking.ConfirmationNumber) != 8 {
		t.Errorf("confirmation number %q must be 8 characters", resp.Booking.ConfirmationNumber)
	}
	if !strings.HasSuffix(strings.ToUpper(resp.Booking.ID), resp.Booking.ConfirmationNumber) {
		t.Error("confirmation number must derive from the booking id")
	}
}

func TestCreateBooking_Conflict(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"555-0100",
		"service":"Sports Massage","date":"2026-03-04","time":"10:00","message":"Knee pain"}`

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.CreateBooking(e.NewContext(jsonRequest(http.MethodPost, "/bookings", body), rec)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	rec = httptest.NewRecorder()
	err := h.CreateBooking(e.NewContext(jsonRequest(http.MethodPost, "/bookings", body), rec))
	if err == nil {
		t.Fatal("expected conflict error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	rec := httptest.NewRecorder()
	err := h.CreateBooking(e.NewContext(jsonRequest(http.MethodPost, "/bookings", `{"name":"Jane"}`), rec))
	if err == nil {
		t.Fatal("expected validation error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestCreateBooking_ClinicInactive(t *testing.T) {
	f := newTestService(t)
	f.cfg.cfg.IsActive = false
	h := NewHandler(f.svc)

	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"555-0100",
		"service":"Sports Massage","date":"2026-03-04","time":"10:00","message":"Knee pain"}`

	e := echo.New()
	rec := httptest.NewRecorder()
	err := h.CreateBooking(e.NewContext(jsonRequest(http.MethodPost, "/bookings", body), rec))
	if err == nil {
		t.Fatal("expected service unavailable")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}

func TestUpdateBookingStatus_InvalidID(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/admin/bookings/not-a-uuid", `{"status":"confirmed"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.UpdateBookingStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestDeleteBlockedSlotAt_RequiresParams(t *testing.T) {
	f := newTestService(t)
	h := NewHandler(f.svc)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/admin/blocked-slots?date=2026-03-04", nil), rec)

	err := h.DeleteBlockedSlotAt(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
