package repository

import (
    "context"
    "database/sql"
    "encoding/json"

    "github.com/wwbing/wxorder/internal/aggregate"
)

// OrderRepo is the order ledger boundary: it accepts a finalized aggregate
// and returns the id of the persisted order. The ledger gives no
// idempotency guarantee, so close calls it at most once (plus one bounded
// retry) per session.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateFromAggregate persists a new pending order built from a closed
// session's aggregate and returns its id. The per-item summary is stored
// as a JSON document alongside the total.
func (r *OrderRepo) CreateFromAggregate(ctx context.Context, groupID uint64, title string, agg aggregate.Result) (uint64, error) {
    items, err := json.Marshal(agg.Items)
    if err != nil {
        return 0, err
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO orders (group_id, title, items, total_amount_cents, status)
         VALUES (?, ?, ?, ?, 'pending')`,
        groupID, title, items, agg.TotalAmountCents)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}
