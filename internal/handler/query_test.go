package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/wwbing/wxorder/internal/repository"
)

func newQueryHandler() *QueryHandler {
	return NewQueryHandler(repository.NewSessionRepo(nil), repository.NewSelectionRepo(nil))
}

func TestGetDeadlineOptions(t *testing.T) {
	h := newQueryHandler()
	c, rec := newJSONContext(http.MethodGet, "/v1/ordering/deadline-options", "", true)
	if err := h.GetDeadlineOptions(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Options []struct {
			Minutes int    `json:"minutes"`
			Label   string `json:"label"`
		} `json:"options"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Options) != 6 {
		t.Fatalf("expected 6 options, got %d", len(body.Options))
	}
	if body.Options[0].Minutes != 15 || body.Options[0].Label != "in 15 min" {
		t.Errorf("first option = %+v, want minutes=15 label=%q", body.Options[0], "in 15 min")
	}
	if last := body.Options[len(body.Options)-1]; last.Minutes != 120 || last.Label != "in 2 h" {
		t.Errorf("last option = %+v, want minutes=120 label=%q", last, "in 2 h")
	}
}

func TestListSessionsRejectsUnknownStatus(t *testing.T) {
	h := newQueryHandler()
	c, rec := newJSONContext(http.MethodGet, "/v1/sessions?status=PENDING", "", true)
	if err := h.ListSessions(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if kind := decodeError(t, rec); kind != "invalid_argument" {
		t.Errorf("error kind = %q, want %q", kind, "invalid_argument")
	}
}

func TestGetSessionRejectsBadID(t *testing.T) {
	h := newQueryHandler()
	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/x", "", true)
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := h.GetSession(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestQueriesRequireAuthentication(t *testing.T) {
	h := newQueryHandler()
	c, rec := newJSONContext(http.MethodGet, "/v1/sessions/active", "", false)
	if err := h.GetActiveSession(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
