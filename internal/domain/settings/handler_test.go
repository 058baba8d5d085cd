package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postSettings(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.UpdateSettings(e.NewContext(req, rec))
}

func TestUpdateSettings_ValidationFailure(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}))

	body := `{"opening_time":"18:00","closing_time":"09:00","working_days":[1,2,3],"time_slot_duration":30,"is_active":true}`
	_, err := postSettings(t, h, body)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUpdateSettings_StorageFailureIsGeneric(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused at 10.0.0.5:5432")}
	h := NewHandler(NewService(repo))

	body := `{"opening_time":"09:00","closing_time":"17:00","working_days":[1,2,3,4,5],"time_slot_duration":30,"is_active":true}`
	_, err := postSettings(t, h, body)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	msg, _ := httpErr.Message.(string)
	if strings.Contains(msg, "10.0.0.5") || strings.Contains(msg, "connection refused") {
		t.Errorf("storage details leaked to the caller: %q", msg)
	}
}

func TestUpdateSettings_Success(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}))

	body := `{"opening_time":"08:00","closing_time":"16:00","working_days":[1,2,3,4,5],"time_slot_duration":30,"is_active":true}`
	rec, err := postSettings(t, h, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got ClinicSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.OpeningTime != "08:00" {
		t.Errorf("expected opening 08:00, got %s", got.OpeningTime)
	}
}

func TestGetSettings_StorageFailureIsGeneric(t *testing.T) {
	repo := &mockRepo{err: errors.New("pool exhausted")}
	h := NewHandler(NewService(repo))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	err := h.GetSettings(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	msg, _ := httpErr.Message.(string)
	if strings.Contains(msg, "pool exhausted") {
		t.Errorf("storage details leaked to the caller: %q", msg)
	}
}
