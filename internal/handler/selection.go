package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wwbing/wxorder/internal/model"
    "github.com/wwbing/wxorder/internal/repository"
)

// SelectionHandler implements a member's own selection for a session:
// submit (upsert), read back, withdraw. Submissions snapshot catalog
// prices at call time and recompute the subtotal on every upsert.
type SelectionHandler struct {
    Sessions   *repository.SessionRepo   // session status and deadline checks
    Selections *repository.SelectionRepo // one-row-per-member persistence
    Menu       *repository.MenuItemRepo  // price snapshot resolver
}

// NewSelectionHandler constructs a SelectionHandler with the provided
// repositories. All dependencies must be non-nil.
func NewSelectionHandler(sessions *repository.SessionRepo, selections *repository.SelectionRepo, menu *repository.MenuItemRepo) *SelectionHandler {
    if sessions == nil || selections == nil || menu == nil {
        panic("nil repository passed to NewSelectionHandler")
    }
    return &SelectionHandler{Sessions: sessions, Selections: selections, Menu: menu}
}

type itemReq struct {
    ItemID   uint64 `json:"item_id"`
    Quantity int    `json:"quantity"`
}

type submitSelectionReq struct {
    Items []itemReq `json:"items"`
    Note  string    `json:"note"`
}

// mergeItemRequests collapses duplicate item ids by summing quantities,
// preserving first-appearance order. A payload listing soup twice is one
// soup line with the combined quantity, so the per-item summary never
// double-counts a row.
func mergeItemRequests(items []itemReq) []itemReq {
    merged := make([]itemReq, 0, len(items))
    index := make(map[uint64]int, len(items))
    for _, it := range items {
        if pos, ok := index[it.ItemID]; ok {
            merged[pos].Quantity += it.Quantity
            continue
        }
        index[it.ItemID] = len(merged)
        merged = append(merged, it)
    }
    return merged
}

// SubmitSelection handles PUT /v1/sessions/:id/selection. The first
// submission creates the member's selection; later ones replace it
// entirely (items, note, subtotal) while the session is ACTIVE and the
// deadline has not passed. The returned subtotal is the operation's
// primary observable effect.
func (h *SelectionHandler) SubmitSelection(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    sessionID, ok := paramSessionID(c)
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid_argument", "invalid session id")
    }

    var req submitSelectionReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid_argument", "invalid request body")
    }
    if len(req.Items) == 0 {
        return fail(c, http.StatusBadRequest, "invalid_argument", "items is required")
    }
    for _, it := range req.Items {
        if it.ItemID == 0 || it.Quantity < 1 {
            return fail(c, http.StatusBadRequest, "invalid_argument", "every item needs a valid id and a positive quantity")
        }
    }
    items := mergeItemRequests(req.Items)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    session, err := h.Sessions.GetByID(ctx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    if session.GroupID != groupID {
        return fail(c, http.StatusForbidden, "permission_denied", "session belongs to another group")
    }
    if session.Status != model.SessionActive {
        return fail(c, http.StatusConflict, "invalid_state", "session is closed")
    }
    if session.Expired(time.Now()) {
        return fail(c, http.StatusGone, "expired", "session deadline has passed")
    }

    // Snapshot name and unit price for every requested item in one batch.
    ids := make([]uint64, 0, len(items))
    for _, it := range items {
        ids = append(ids, it.ItemID)
    }
    catalog, err := h.Menu.GetByIDs(ctx, ids)
    if err != nil {
        return failFor(c, err)
    }
    if len(catalog) != len(ids) {
        missing := make([]string, 0)
        for _, id := range ids {
            if _, ok := catalog[id]; !ok {
                missing = append(missing, fmt.Sprintf("%d", id))
            }
        }
        return fail(c, http.StatusBadRequest, "invalid_argument",
            "unknown menu items: "+strings.Join(missing, ", "))
    }

    lines := make([]model.SelectionItem, 0, len(items))
    for _, it := range items {
        entry := catalog[it.ItemID]
        lines = append(lines, model.SelectionItem{
            ItemID:         entry.ID,
            Name:           entry.Name,
            UnitPriceCents: entry.PriceCents,
            Quantity:       it.Quantity,
            LineTotalCents: entry.PriceCents * int64(it.Quantity),
        })
    }
    subtotal := model.Subtotal(lines)

    stored, err := h.Selections.Upsert(ctx, sessionID, memberID, lines, subtotal, strings.TrimSpace(req.Note))
    if err != nil {
        return failFor(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "subtotal_cents": stored.SubtotalCents,
        "items":          stored.Items,
    })
}

// GetMySelection handles GET /v1/sessions/:id/selection. It returns the
// caller's selection for the session, or a null body when the member has
// not submitted yet.
func (h *SelectionHandler) GetMySelection(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    sessionID, ok := paramSessionID(c)
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid_argument", "invalid session id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    session, err := h.Sessions.GetByID(ctx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    if session.GroupID != groupID {
        return fail(c, http.StatusForbidden, "permission_denied", "session belongs to another group")
    }

    sel, err := h.Selections.GetBySessionAndMember(ctx, sessionID, memberID)
    if err != nil {
        if errors.Is(err, repository.ErrSelectionNotFound) {
            return c.JSON(http.StatusOK, nil)
        }
        return failFor(c, err)
    }
    return c.JSON(http.StatusOK, toSelectionResp(sel))
}

// DeleteMySelection handles DELETE /v1/sessions/:id/selection. A member
// may always withdraw their own selection while the session is ACTIVE;
// once the session is closed the selections are frozen for audit and the
// withdrawal is refused. Withdrawing when nothing was submitted is a
// no-op success.
func (h *SelectionHandler) DeleteMySelection(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    sessionID, ok := paramSessionID(c)
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid_argument", "invalid session id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    session, err := h.Sessions.GetByID(ctx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    if session.GroupID != groupID {
        return fail(c, http.StatusForbidden, "permission_denied", "session belongs to another group")
    }
    if session.Status != model.SessionActive {
        return fail(c, http.StatusConflict, "invalid_state", "selections of a closed session are frozen")
    }

    if err := h.Selections.DeleteBySessionAndMember(ctx, sessionID, memberID); err != nil {
        return failFor(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
