package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wwbing/wxorder/internal/aggregate"
    "github.com/wwbing/wxorder/internal/config"
    "github.com/wwbing/wxorder/internal/model"
    "github.com/wwbing/wxorder/internal/queue"
    "github.com/wwbing/wxorder/internal/repository"
    queue_publisher "github.com/wwbing/wxorder/internal/service"
)

// SessionHandler implements the creator-controlled lifecycle of an
// ordering session: open, close, cancel. All methods assume JWT
// authentication has already been performed by middleware. Close follows
// a local-transition-first discipline: the fold and the status flip
// commit together under a row lock, then the ledger is called, so no
// lock is ever held across the external call.
type SessionHandler struct {
    Cfg        config.Config               // retry budget for the ledger call
    Sessions   *repository.SessionRepo     // session persistence and state transitions
    Selections *repository.SelectionRepo   // selections folded at close, purged at cancel
    Orders     *repository.OrderRepo       // order ledger boundary
}

// NewSessionHandler constructs a SessionHandler with the provided
// repositories. All dependencies must be non-nil.
func NewSessionHandler(cfg config.Config, sessions *repository.SessionRepo, selections *repository.SelectionRepo, orders *repository.OrderRepo) *SessionHandler {
    if sessions == nil || selections == nil || orders == nil {
        panic("nil repository passed to NewSessionHandler")
    }
    return &SessionHandler{Cfg: cfg, Sessions: sessions, Selections: selections, Orders: orders}
}

type createSessionReq struct {
    Title           string `json:"title"`
    DeadlineMinutes int    `json:"deadline_minutes"`
}

// CreateSession handles POST /v1/sessions. It opens a new ACTIVE session
// for the caller's group with a deadline drawn from the fixed offset set.
// A group can have at most one ACTIVE session; a duplicate create returns
// 409 even when two creators race, because the uniqueness lives in the
// store's index, not in a check-then-act read.
func (h *SessionHandler) CreateSession(c echo.Context) error {
    memberID, err := getMemberID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }

    var req createSessionReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid_argument", "invalid request body")
    }
    if !model.AllowedDeadline(req.DeadlineMinutes) {
        return fail(c, http.StatusBadRequest, "invalid_argument", "deadline_minutes must be one of the offered options")
    }
    title := strings.TrimSpace(req.Title)
    if title == "" {
        title = model.DefaultSessionTitle
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    now := time.Now().UTC()
    session, err := h.Sessions.Create(ctx, groupID, memberID, title, model.DeadlineFor(now, req.DeadlineMinutes))
    if err != nil {
        return failFor(c, err)
    }
    return c.JSON(http.StatusCreated, toSessionResp(session))
}

type closeSessionResp struct {
    TotalAmountCents int64   `json:"total_amount_cents"`
    MemberCount      int     `json:"member_count"`
    OrderID          *uint64 `json:"order_id"`
    Warning          string  `json:"warning,omitempty"`
}

// CloseSession handles POST /v1/sessions/:id/close. Only the creator may
// close, and only an ACTIVE session. The selections are read and folded
// inside the close transaction, and the status flip and the frozen totals
// commit as one statement, so a CLOSED row is never observable with
// totals that disagree with its retained selections. Only the ledger call
// and the order-id link happen after the commit; either failing does not
// fail the close — the response carries a warning instead. Closing an
// already-closed session returns 409 and leaves the frozen totals
// untouched.
func (h *SessionHandler) CloseSession(c echo.Context) error {
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

    ctx := c.Request().Context()
    tx, err := h.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "internal", "failed to start transaction")
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    session, err := h.Sessions.GetForUpdateTx(ctx, tx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    if session.GroupID != groupID {
        return fail(c, http.StatusForbidden, "permission_denied", "session belongs to another group")
    }
    if session.Status != model.SessionActive {
        return fail(c, http.StatusConflict, "invalid_state", "session is already closed")
    }
    if session.CreatedBy != memberID {
        return fail(c, http.StatusForbidden, "permission_denied", "only the session creator can close it")
    }

    // Fold under the row lock: the guarded upsert blocks on it, so no
    // submission can slip in between this read and the commit.
    selections, err := h.Selections.ListBySessionTx(ctx, tx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    agg := aggregate.Fold(selections)

    closedAt := time.Now().UTC()
    if err := h.Sessions.MarkClosedTx(ctx, tx, sessionID, closedAt, agg.TotalAmountCents, agg.MemberCount); err != nil {
        return failFor(c, err)
    }
    if err := tx.Commit(); err != nil {
        return fail(c, http.StatusInternalServerError, "internal", "failed to commit transaction")
    }
    committed = true

    var orderID *uint64
    warning := ""
    if len(selections) > 0 {
        id, ledgerErr := h.createLedgerOrder(ctx, session, agg)
        if ledgerErr != nil {
            c.Logger().Errorf("ledger order failed for session %d: %v", sessionID, ledgerErr)
            warning = "order could not be recorded in the ledger; session closed without an order"
        } else {
            orderID = &id
            if err := h.Sessions.SetOrderID(ctx, sessionID, id); err != nil {
                c.Logger().Errorf("order %d created but not linked to session %d: %v", id, sessionID, err)
                warning = "order recorded but could not be linked to the session"
            }
        }
    }

    // Best-effort notification; a broker outage never fails the close.
    _ = queue_publisher.PublishSessionClosed(ctx, queue.SessionClosedEvent{
        SessionID:        sessionID,
        GroupID:          session.GroupID,
        Title:            session.Title,
        ClosedBy:         memberID,
        MemberCount:      agg.MemberCount,
        TotalQuantity:    agg.TotalQuantity,
        TotalAmountCents: agg.TotalAmountCents,
        OrderID:          orderID,
        ClosedAt:         closedAt.Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, closeSessionResp{
        TotalAmountCents: agg.TotalAmountCents,
        MemberCount:      agg.MemberCount,
        OrderID:          orderID,
        Warning:          warning,
    })
}

// createLedgerOrder attempts the ledger call with the configured retry
// budget. The ledger offers no idempotency, so the budget stays small: a
// duplicate order is worse than a missing one surfaced as a warning.
func (h *SessionHandler) createLedgerOrder(ctx context.Context, session model.Session, agg aggregate.Result) (uint64, error) {
    attempts := 1 + h.Cfg.LedgerRetries
    var lastErr error
    for i := 0; i < attempts; i++ {
        id, err := h.Orders.CreateFromAggregate(ctx, session.GroupID, session.Title, agg)
        if err == nil {
            return id, nil
        }
        lastErr = err
    }
    return 0, lastErr
}

// CancelSession handles DELETE /v1/sessions/:id. Only the creator may
// cancel, and only while the session is ACTIVE. Cancelling deletes every
// selection and the session record itself; the operation is irreversible
// and the session id is never reused.
func (h *SessionHandler) CancelSession(c echo.Context) error {
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

    ctx := c.Request().Context()
    tx, err := h.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "internal", "failed to start transaction")
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    session, err := h.Sessions.GetForUpdateTx(ctx, tx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    if session.GroupID != groupID {
        return fail(c, http.StatusForbidden, "permission_denied", "session belongs to another group")
    }
    if session.Status != model.SessionActive {
        return fail(c, http.StatusConflict, "invalid_state", "only an active session can be cancelled")
    }
    if session.CreatedBy != memberID {
        return fail(c, http.StatusForbidden, "permission_denied", "only the session creator can cancel it")
    }

    if err := h.Selections.DeleteBySessionTx(ctx, tx, sessionID); err != nil {
        return failFor(c, err)
    }
    if err := h.Sessions.DeleteTx(ctx, tx, sessionID); err != nil {
        return failFor(c, err)
    }
    if err := tx.Commit(); err != nil {
        return fail(c, http.StatusInternalServerError, "internal", "failed to commit transaction")
    }
    committed = true
    return c.NoContent(http.StatusNoContent)
}
