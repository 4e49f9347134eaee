package repository

import (
    "context"
    "database/sql"
    "encoding/json"

    "github.com/wwbing/wxorder/internal/model"
)

// SelectionRepo provides data access to the selections table. Each member
// has at most one row per session, enforced by the unique index on
// (session_id, member_id); Upsert relies on that index to turn the second
// of two concurrent first submissions into an update instead of a
// duplicate insert. Item lines are stored as a JSON document.
type SelectionRepo struct {
    db *sql.DB
}

// NewSelectionRepo returns a new SelectionRepo bound to the given database.
func NewSelectionRepo(db *sql.DB) *SelectionRepo { return &SelectionRepo{db: db} }

const selectionColumns = `id, session_id, member_id, items, subtotal_cents, note, created_at, updated_at`

func scanSelection(scan func(dest ...any) error) (model.Selection, error) {
    var s model.Selection
    var items []byte
    err := scan(&s.ID, &s.SessionID, &s.MemberID, &items, &s.SubtotalCents,
        &s.Note, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return model.Selection{}, err
    }
    if err := json.Unmarshal(items, &s.Items); err != nil {
        return model.Selection{}, err
    }
    return s, nil
}

// Upsert inserts the member's selection for the session, or overwrites
// items, subtotal, note and updated_at in place when one already exists.
// created_at is only set on first insert. Returns the stored row.
//
// The insert sources its session id from a guarded SELECT on the sessions
// row, so a submission racing a concurrent close blocks on the close
// transaction's row lock and then matches zero rows instead of attaching
// an uncounted selection to a CLOSED session. Zero affected rows are
// disambiguated by re-reading the session status.
func (r *SelectionRepo) Upsert(ctx context.Context, sessionID, memberID uint64, items []model.SelectionItem, subtotalCents int64, note string) (model.Selection, error) {
    payload, err := json.Marshal(items)
    if err != nil {
        return model.Selection{}, err
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO selections (session_id, member_id, items, subtotal_cents, note)
         SELECT s.id, ?, ?, ?, ? FROM sessions s WHERE s.id = ? AND s.status = ?
         ON DUPLICATE KEY UPDATE
           items = ?,
           subtotal_cents = ?,
           note = ?,
           updated_at = UTC_TIMESTAMP()`,
        memberID, payload, subtotalCents, note, sessionID, model.SessionActive,
        payload, subtotalCents, note)
    if err != nil {
        return model.Selection{}, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return model.Selection{}, err
    }
    if n == 0 {
        // Either the session is no longer ACTIVE, or the resubmission was
        // byte-identical within the updated_at granularity.
        var status string
        err := r.db.QueryRowContext(ctx,
            `SELECT status FROM sessions WHERE id = ?`, sessionID).Scan(&status)
        if err == sql.ErrNoRows {
            return model.Selection{}, ErrSessionNotFound
        }
        if err != nil {
            return model.Selection{}, err
        }
        if status != model.SessionActive {
            return model.Selection{}, ErrSessionNotActive
        }
    }
    return r.GetBySessionAndMember(ctx, sessionID, memberID)
}

// GetBySessionAndMember fetches one member's selection for a session.
// ErrSelectionNotFound is returned when the member has not submitted.
func (r *SelectionRepo) GetBySessionAndMember(ctx context.Context, sessionID, memberID uint64) (model.Selection, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+selectionColumns+` FROM selections
         WHERE session_id = ? AND member_id = ?`, sessionID, memberID)
    s, err := scanSelection(row.Scan)
    if err == sql.ErrNoRows {
        return model.Selection{}, ErrSelectionNotFound
    }
    return s, err
}

const listBySessionQuery = `SELECT ` + selectionColumns + ` FROM selections
         WHERE session_id = ? ORDER BY created_at ASC, id ASC`

// ListBySession returns all selections of a session ordered by first
// submission time. When the session has none, an empty slice is returned.
func (r *SelectionRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Selection, error) {
    rows, err := r.db.QueryContext(ctx, listBySessionQuery, sessionID)
    if err != nil {
        return nil, err
    }
    return collectSelections(rows)
}

// ListBySessionTx is ListBySession within a transaction. Close uses it
// while holding the session row lock, so the fold sees the final
// selection set before the status flip commits.
func (r *SelectionRepo) ListBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]model.Selection, error) {
    rows, err := tx.QueryContext(ctx, listBySessionQuery, sessionID)
    if err != nil {
        return nil, err
    }
    return collectSelections(rows)
}

func collectSelections(rows *sql.Rows) ([]model.Selection, error) {
    defer rows.Close()
    selections := make([]model.Selection, 0)
    for rows.Next() {
        s, err := scanSelection(rows.Scan)
        if err != nil {
            return nil, err
        }
        selections = append(selections, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return selections, nil
}

// DeleteBySessionAndMember removes the member's own selection. Deleting a
// selection that does not exist is not an error; withdrawal is idempotent.
func (r *SelectionRepo) DeleteBySessionAndMember(ctx context.Context, sessionID, memberID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `DELETE FROM selections WHERE session_id = ? AND member_id = ?`,
        sessionID, memberID)
    return err
}

// DeleteBySessionTx removes every selection of a session within a
// transaction. Cancel uses it before deleting the session row.
func (r *SelectionRepo) DeleteBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
    _, err := tx.ExecContext(ctx,
        `DELETE FROM selections WHERE session_id = ?`, sessionID)
    return err
}
