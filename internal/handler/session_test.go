package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wwbing/wxorder/internal/config"
	"github.com/wwbing/wxorder/internal/repository"
)

func newSessionHandler() *SessionHandler {
	return NewSessionHandler(config.Config{},
		repository.NewSessionRepo(nil),
		repository.NewSelectionRepo(nil),
		repository.NewOrderRepo(nil))
}

// newJSONContext builds an echo context for a JSON request, optionally
// authenticated as member 42 of group 7.
func newJSONContext(method, target, body string, authed bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		c.Set("member_id", uint64(42))
		c.Set("group_id", uint64(7))
	}
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	kind, _ := body["error"].(string)
	return kind
}

func TestCreateSessionUnauthenticated(t *testing.T) {
	h := newSessionHandler()
	c, rec := newJSONContext(http.MethodPost, "/v1/sessions", `{"deadline_minutes":30}`, false)
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if kind := decodeError(t, rec); kind != "unauthenticated" {
		t.Errorf("error kind = %q, want %q", kind, "unauthenticated")
	}
}

func TestCreateSessionRejectsBadBody(t *testing.T) {
	h := newSessionHandler()
	c, rec := newJSONContext(http.MethodPost, "/v1/sessions", `{"deadline_minutes":`, true)
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateSessionRejectsDeadlineOutsideOptions(t *testing.T) {
	h := newSessionHandler()
	for _, minutes := range []int{0, -15, 10, 61, 150} {
		body := `{"title":"lunch","deadline_minutes":` + strconv.Itoa(minutes) + `}`
		c, rec := newJSONContext(http.MethodPost, "/v1/sessions", body, true)
		if err := h.CreateSession(c); err != nil {
			t.Fatalf("deadline %d: handler returned error: %v", minutes, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("deadline %d: status = %d, want %d", minutes, rec.Code, http.StatusBadRequest)
		}
		if kind := decodeError(t, rec); kind != "invalid_argument" {
			t.Errorf("deadline %d: error kind = %q, want %q", minutes, kind, "invalid_argument")
		}
	}
}

func TestCloseSessionRejectsBadID(t *testing.T) {
	h := newSessionHandler()
	for _, raw := range []string{"abc", "0", "-3", ""} {
		c, rec := newJSONContext(http.MethodPost, "/v1/sessions/x/close", "", true)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if err := h.CloseSession(c); err != nil {
			t.Fatalf("id %q: handler returned error: %v", raw, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want %d", raw, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestCancelSessionRejectsBadID(t *testing.T) {
	h := newSessionHandler()
	c, rec := newJSONContext(http.MethodDelete, "/v1/sessions/x", "", true)
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")
	if err := h.CancelSession(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
