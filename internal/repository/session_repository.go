package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/wwbing/wxorder/internal/model"
)

// SessionRepo provides data access to the sessions table. A session row
// carries a nullable `active` flag that is 1 while the session is ACTIVE
// and NULL once it is closed; the unique index on (group_id, active)
// therefore admits at most one ACTIVE session per group while closed rows
// never collide. All timestamps are stored in UTC.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span session and selection writes.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, group_id, title, created_by, status, deadline,
    total_amount_cents, member_count, order_id, created_at, closed_at`

// scanSession reads one sessions row from any row scanner.
func scanSession(scan func(dest ...any) error) (model.Session, error) {
    var s model.Session
    var orderID sql.NullInt64
    var closedAt sql.NullTime
    err := scan(
        &s.ID, &s.GroupID, &s.Title, &s.CreatedBy, &s.Status, &s.Deadline,
        &s.TotalAmountCents, &s.MemberCount, &orderID, &s.CreatedAt, &closedAt,
    )
    if err != nil {
        return model.Session{}, err
    }
    if orderID.Valid {
        id := uint64(orderID.Int64)
        s.OrderID = &id
    }
    if closedAt.Valid {
        t := closedAt.Time
        s.ClosedAt = &t
    }
    return s, nil
}

// Create inserts a new ACTIVE session and returns the stored row. When the
// group already has an ACTIVE session the insert violates the
// (group_id, active) unique index and ErrActiveSessionExists is returned,
// which also settles the race between two concurrent creators.
func (r *SessionRepo) Create(ctx context.Context, groupID, createdBy uint64, title string, deadline time.Time) (model.Session, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO sessions (group_id, title, created_by, status, active, deadline)
         VALUES (?, ?, ?, ?, 1, ?)`,
        groupID, title, createdBy, model.SessionActive, deadline.UTC())
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return model.Session{}, ErrActiveSessionExists
        }
        return model.Session{}, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return model.Session{}, err
    }
    return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a session by id. ErrSessionNotFound is returned when no
// row exists.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.Session, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
    s, err := scanSession(row.Scan)
    if err == sql.ErrNoRows {
        return model.Session{}, ErrSessionNotFound
    }
    return s, err
}

// GetForUpdateTx fetches a session by id within a transaction, locking the
// row until the transaction ends. Close and cancel use it to validate
// status and creator without racing a concurrent transition.
func (r *SessionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Session, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE id = ? FOR UPDATE`, id)
    s, err := scanSession(row.Scan)
    if err == sql.ErrNoRows {
        return model.Session{}, ErrSessionNotFound
    }
    return s, err
}

// GetActiveByGroup returns the group's ACTIVE session, or nil when there
// is none.
func (r *SessionRepo) GetActiveByGroup(ctx context.Context, groupID uint64) (*model.Session, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE group_id = ? AND status = ?`,
        groupID, model.SessionActive)
    s, err := scanSession(row.Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// List returns a page of the group's sessions ordered by creation time
// descending (ties broken by id so pagination stays stable), plus the
// total number of rows matching the same filter. status may be empty to
// list all sessions regardless of status.
func (r *SessionRepo) List(ctx context.Context, groupID uint64, status string, page, pageSize int) ([]model.Session, int64, error) {
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 10
    }
    where := `WHERE group_id = ?`
    args := []any{groupID}
    if status != "" {
        where += ` AND status = ?`
        args = append(args, status)
    }

    var total int64
    if err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM sessions `+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions `+where+`
         ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, listArgs...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    sessions := make([]model.Session, 0, pageSize)
    for rows.Next() {
        s, err := scanSession(rows.Scan)
        if err != nil {
            return nil, 0, err
        }
        sessions = append(sessions, s)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return sessions, total, nil
}

// MarkClosedTx flips an ACTIVE session to CLOSED and freezes the folded
// totals in the same statement, so a committed CLOSED row always carries
// its final aggregate and no reader ever sees CLOSED with stale zeros.
// Clearing the active flag frees the (group_id, active) slot for a future
// session. The guard on status makes a second close a no-op: zero
// affected rows yield ErrSessionNotActive.
func (r *SessionRepo) MarkClosedTx(ctx context.Context, tx *sql.Tx, id uint64, closedAt time.Time, totalAmountCents int64, memberCount int) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE sessions SET status = ?, active = NULL, closed_at = ?,
           total_amount_cents = ?, member_count = ?
         WHERE id = ? AND status = ?`,
        model.SessionClosed, closedAt.UTC(), totalAmountCents, memberCount,
        id, model.SessionActive)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrSessionNotActive
    }
    return nil
}

// SetOrderID links a ledger order to an already-closed session. It is the
// only session write that happens outside the close transaction, because
// the order id does not exist until the ledger call returns.
func (r *SessionRepo) SetOrderID(ctx context.Context, id, orderID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE sessions SET order_id = ? WHERE id = ? AND status = ?`,
        orderID, id, model.SessionClosed)
    return err
}

// DeleteTx removes a session row within a transaction. Cancel uses it
// after deleting the session's selections.
func (r *SessionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
    return err
}
