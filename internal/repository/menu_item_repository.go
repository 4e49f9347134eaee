package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/wwbing/wxorder/internal/model"
)

// MenuItemRepo is the read-only view of the catalog used to snapshot item
// names and unit prices at submission time. Menu management belongs to a
// different part of the system; this service never writes menu_items.
type MenuItemRepo struct {
    db *sql.DB
}

// NewMenuItemRepo returns a new MenuItemRepo bound to the given database.
func NewMenuItemRepo(db *sql.DB) *MenuItemRepo { return &MenuItemRepo{db: db} }

// GetByID fetches one catalog item. ErrItemNotFound is returned when the
// id does not resolve.
func (r *MenuItemRepo) GetByID(ctx context.Context, id uint64) (model.MenuItem, error) {
    var it model.MenuItem
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, price_cents, is_available FROM menu_items WHERE id = ?`,
        id).Scan(&it.ID, &it.Name, &it.PriceCents, &it.IsAvailable)
    if err == sql.ErrNoRows {
        return model.MenuItem{}, ErrItemNotFound
    }
    return it, err
}

// GetByIDs fetches a batch of catalog items keyed by id in a single query.
// Ids absent from the catalog are simply missing from the result map; the
// caller decides whether that is an error. Passing an empty slice returns
// an empty map.
func (r *MenuItemRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error) {
    out := make(map[uint64]model.MenuItem, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    placeholders := make([]string, 0, len(ids))
    args := make([]any, 0, len(ids))
    for _, id := range ids {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, name, price_cents, is_available FROM menu_items
         WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var it model.MenuItem
        if err := rows.Scan(&it.ID, &it.Name, &it.PriceCents, &it.IsAvailable); err != nil {
            return nil, err
        }
        out[it.ID] = it
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
