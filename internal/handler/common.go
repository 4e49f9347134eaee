package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wwbing/wxorder/internal/model"
    "github.com/wwbing/wxorder/internal/repository"
)

// getMemberID extracts the caller's member id from echo.Context. The JWT
// middleware stores the raw claim value, so numeric claims arrive as
// float64 after JSON decoding and are normalized here.
func getMemberID(c echo.Context) (uint64, error) {
    return contextID(c, "member_id")
}

// getGroupID extracts the caller's group membership from echo.Context.
func getGroupID(c echo.Context) (uint64, error) {
    return contextID(c, "group_id")
}

func contextID(c echo.Context, key string) (uint64, error) {
    v := c.Get(key)
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid " + key + " in context")
}

// paramSessionID parses the :id path parameter.
func paramSessionID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// fail writes a JSON error body carrying a stable kind plus a
// human-readable message. Callers must not infer meaning from the message
// text; the kind is the contract.
func fail(c echo.Context, status int, kind, message string) error {
    return c.JSON(status, echo.Map{"error": kind, "message": message})
}

// failFor maps repository sentinel errors onto the stable error kinds of
// the API. Unrecognized errors become an opaque 500 so raw store errors
// never reach callers.
func failFor(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrSessionNotFound):
        return fail(c, http.StatusNotFound, "not_found", "session not found")
    case errors.Is(err, repository.ErrSessionNotActive):
        return fail(c, http.StatusConflict, "invalid_state", "session is not active")
    case errors.Is(err, repository.ErrForbidden):
        return fail(c, http.StatusForbidden, "permission_denied", "not allowed for this caller")
    case errors.Is(err, repository.ErrActiveSessionExists):
        return fail(c, http.StatusConflict, "conflict", "group already has an active session")
    case errors.Is(err, repository.ErrDeadlinePassed):
        return fail(c, http.StatusGone, "expired", "session deadline has passed")
    case errors.Is(err, repository.ErrItemNotFound):
        return fail(c, http.StatusBadRequest, "invalid_argument", "unknown menu item")
    default:
        return fail(c, http.StatusInternalServerError, "internal", "database error")
    }
}

// ----- shared response DTOs -----

type sessionResp struct {
    ID               uint64  `json:"id"`
    GroupID          uint64  `json:"group_id"`
    Title            string  `json:"title"`
    CreatedBy        uint64  `json:"created_by"`
    Status           string  `json:"status"`
    Deadline         string  `json:"deadline"`
    TotalAmountCents int64   `json:"total_amount_cents"`
    MemberCount      int     `json:"member_count"`
    OrderID          *uint64 `json:"order_id,omitempty"`
    CreatedAt        string  `json:"created_at"`
    ClosedAt         *string `json:"closed_at,omitempty"`
}

func toSessionResp(s model.Session) sessionResp {
    resp := sessionResp{
        ID:               s.ID,
        GroupID:          s.GroupID,
        Title:            s.Title,
        CreatedBy:        s.CreatedBy,
        Status:           s.Status,
        Deadline:         s.Deadline.UTC().Format(time.RFC3339),
        TotalAmountCents: s.TotalAmountCents,
        MemberCount:      s.MemberCount,
        OrderID:          s.OrderID,
        CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
    }
    if s.ClosedAt != nil {
        closed := s.ClosedAt.UTC().Format(time.RFC3339)
        resp.ClosedAt = &closed
    }
    return resp
}

type selectionResp struct {
    ID            uint64                `json:"id"`
    SessionID     uint64                `json:"session_id"`
    MemberID      uint64                `json:"member_id"`
    Items         []model.SelectionItem `json:"items"`
    SubtotalCents int64                 `json:"subtotal_cents"`
    Note          string                `json:"note"`
    CreatedAt     string                `json:"created_at"`
    UpdatedAt     string                `json:"updated_at"`
}

func toSelectionResp(s model.Selection) selectionResp {
    return selectionResp{
        ID:            s.ID,
        SessionID:     s.SessionID,
        MemberID:      s.MemberID,
        Items:         s.Items,
        SubtotalCents: s.SubtotalCents,
        Note:          s.Note,
        CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
        UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
    }
}
