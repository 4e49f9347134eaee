package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/wwbing/wxorder/internal/aggregate"
    "github.com/wwbing/wxorder/internal/model"
    "github.com/wwbing/wxorder/internal/repository"
)

// QueryHandler exposes the read-only projections over sessions and
// selections: the group's active session, a session's detail, the
// paginated history, and the aggregated summary. None of these mutate
// anything; the summary recomputes the fold on every call, which doubles
// as a live preview for ACTIVE sessions and a consistency check for
// CLOSED ones.
type QueryHandler struct {
    Sessions   *repository.SessionRepo
    Selections *repository.SelectionRepo
}

// NewQueryHandler constructs a QueryHandler with the provided
// repositories. All dependencies must be non-nil.
func NewQueryHandler(sessions *repository.SessionRepo, selections *repository.SelectionRepo) *QueryHandler {
    if sessions == nil || selections == nil {
        panic("nil repository passed to NewQueryHandler")
    }
    return &QueryHandler{Sessions: sessions, Selections: selections}
}

// GetActiveSession handles GET /v1/sessions/active. It returns the
// caller group's ACTIVE session, or a null body when there is none.
func (h *QueryHandler) GetActiveSession(c echo.Context) error {
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    session, err := h.Sessions.GetActiveByGroup(ctx, groupID)
    if err != nil {
        return failFor(c, err)
    }
    if session == nil {
        return c.JSON(http.StatusOK, nil)
    }
    return c.JSON(http.StatusOK, toSessionResp(*session))
}

// GetSession handles GET /v1/sessions/:id. Sessions of other groups are
// refused rather than hidden: the id namespace is global, membership is
// not.
func (h *QueryHandler) GetSession(c echo.Context) error {
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
    return c.JSON(http.StatusOK, toSessionResp(session))
}

// ListSessions handles GET /v1/sessions?status=&page=&page_size=. Results
// are ordered by creation time descending with skip/limit pagination; the
// reported total honours the same status filter as the page.
func (h *QueryHandler) ListSessions(c echo.Context) error {
    groupID, err := getGroupID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthenticated", "unauthorized")
    }

    status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
    if status != "" && status != model.SessionActive && status != model.SessionClosed {
        return fail(c, http.StatusBadRequest, "invalid_argument", "status must be ACTIVE or CLOSED")
    }
    page := queryInt(c, "page", 1)
    pageSize := queryInt(c, "page_size", 10)
    if page < 1 {
        page = 1
    }
    if pageSize < 1 || pageSize > 100 {
        pageSize = 10
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    sessions, total, err := h.Sessions.List(ctx, groupID, status, page, pageSize)
    if err != nil {
        return failFor(c, err)
    }
    list := make([]sessionResp, 0, len(sessions))
    for _, s := range sessions {
        list = append(list, toSessionResp(s))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "sessions":  list,
        "total":     total,
        "page":      page,
        "page_size": pageSize,
    })
}

// GetSessionSummary handles GET /v1/sessions/:id/summary. It returns all
// selections of the session plus the freshly folded aggregate. For an
// ACTIVE session this is a live preview; for a CLOSED one it reproduces
// the totals frozen on the record, because the selections are retained
// and their prices were snapshotted at submission time.
func (h *QueryHandler) GetSessionSummary(c echo.Context) error {
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

    selections, err := h.Selections.ListBySession(ctx, sessionID)
    if err != nil {
        return failFor(c, err)
    }
    agg := aggregate.Fold(selections)

    list := make([]selectionResp, 0, len(selections))
    for _, s := range selections {
        list = append(list, toSelectionResp(s))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "session":            toSessionResp(session),
        "selections":         list,
        "summary":            agg.Items,
        "total_quantity":     agg.TotalQuantity,
        "total_amount_cents": agg.TotalAmountCents,
        "member_count":       agg.MemberCount,
    })
}

// GetDeadlineOptions handles GET /v1/ordering/deadline-options. The set
// is fixed, so the route sits behind the response cache.
func (h *QueryHandler) GetDeadlineOptions(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"options": model.DeadlineOptions()})
}

// queryInt parses an integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
    v := c.QueryParam(name)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return def
    }
    return n
}
