package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestGetUser_NotFound(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestGetUser_InvalidID(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetUser_Found(t *testing.T) {
	repo := newMockRepo()
	u := &User{ID: uuid.New(), Email: "jane@example.com", Name: "Jane", Role: RoleClient}
	repo.byEmail[u.Email] = u

	h := NewHandler(NewService(repo))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(u.ID.String())

	if err := h.GetUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("expected %s, got %s", u.Email, got.Email)
	}
}

func TestListUsers(t *testing.T) {
	repo := newMockRepo()
	repo.byEmail["a@example.com"] = &User{ID: uuid.New(), Email: "a@example.com", Name: "A", Role: RoleClient}
	repo.byEmail["b@example.com"] = &User{ID: uuid.New(), Email: "b@example.com", Name: "B", Role: RoleStaff}

	h := NewHandler(NewService(repo))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
}
