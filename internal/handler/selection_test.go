package handler

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/wwbing/wxorder/internal/repository"
)

func newSelectionHandler() *SelectionHandler {
	return NewSelectionHandler(
		repository.NewSessionRepo(nil),
		repository.NewSelectionRepo(nil),
		repository.NewMenuItemRepo(nil))
}

func TestMergeItemRequests(t *testing.T) {
	tests := []struct {
		name string
		in   []itemReq
		want []itemReq
	}{
		{"empty", nil, []itemReq{}},
		{
			"no duplicates",
			[]itemReq{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}},
			[]itemReq{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}},
		},
		{
			"duplicate summed in place",
			[]itemReq{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}, {ItemID: 1, Quantity: 3}},
			[]itemReq{{ItemID: 1, Quantity: 5}, {ItemID: 2, Quantity: 1}},
		},
		{
			"all the same item",
			[]itemReq{{ItemID: 9, Quantity: 1}, {ItemID: 9, Quantity: 1}, {ItemID: 9, Quantity: 1}},
			[]itemReq{{ItemID: 9, Quantity: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeItemRequests(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("mergeItemRequests = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSubmitSelectionRejectsEmptyItems(t *testing.T) {
	h := newSelectionHandler()
	c, rec := newJSONContext(http.MethodPut, "/v1/sessions/1/selection", `{"items":[]}`, true)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.SubmitSelection(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if kind := decodeError(t, rec); kind != "invalid_argument" {
		t.Errorf("error kind = %q, want %q", kind, "invalid_argument")
	}
}

func TestSubmitSelectionRejectsBadLines(t *testing.T) {
	bodies := []string{
		`{"items":[{"item_id":0,"quantity":1}]}`,
		`{"items":[{"item_id":3,"quantity":0}]}`,
		`{"items":[{"item_id":3,"quantity":-2}]}`,
		`{"items":[{"item_id":3,"quantity":2},{"item_id":4,"quantity":0}]}`,
	}
	h := newSelectionHandler()
	for _, body := range bodies {
		c, rec := newJSONContext(http.MethodPut, "/v1/sessions/1/selection", body, true)
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.SubmitSelection(c); err != nil {
			t.Fatalf("body %s: handler returned error: %v", body, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestSubmitSelectionRejectsBadSessionID(t *testing.T) {
	h := newSelectionHandler()
	c, rec := newJSONContext(http.MethodPut, "/v1/sessions/x/selection", `{"items":[{"item_id":1,"quantity":1}]}`, true)
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := h.SubmitSelection(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSubmitSelectionUnauthenticated(t *testing.T) {
	h := newSelectionHandler()
	c, rec := newJSONContext(http.MethodPut, "/v1/sessions/1/selection", `{"items":[{"item_id":1,"quantity":1}]}`, false)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.SubmitSelection(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
