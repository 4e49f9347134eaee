package model

import "time"

// SelectionItem is one line of a member's selection.  Name and unit price
// are snapshotted from the catalog at submission time and are never
// re-read when the session closes, so a later menu price change cannot
// alter an already-submitted order.
type SelectionItem struct {
    ItemID         uint64 `json:"item_id"`
    Name           string `json:"name"`
    UnitPriceCents int64  `json:"unit_price_cents"`
    Quantity       int    `json:"quantity"`
    LineTotalCents int64  `json:"line_total_cents"`
}

// Selection is one member's chosen items for a session.  A member has at
// most one selection per session; resubmitting replaces the items, note,
// subtotal and updated_at in place.  Selections are deleted when a session
// is cancelled and retained after it is closed.
//
// Fields:
//  ID            – primary key identifier.
//  SessionID     – session the selection belongs to.
//  MemberID      – owner; (SessionID, MemberID) is unique.
//  Items         – ordered item lines with snapshotted prices.
//  SubtotalCents – Σ unit price × quantity over Items.
//  Note          – free-text note from the member.
//  CreatedAt     – first submission timestamp; never changes on resubmit.
//  UpdatedAt     – bumped on every resubmit.
type Selection struct {
    ID            uint64          // selections.id
    SessionID     uint64          // selections.session_id
    MemberID      uint64          // selections.member_id
    Items         []SelectionItem // selections.items (JSON)
    SubtotalCents int64           // selections.subtotal_cents
    Note          string          // selections.note
    CreatedAt     time.Time       // selections.created_at
    UpdatedAt     time.Time       // selections.updated_at
}

// Subtotal sums unit price × quantity over the given item lines.
func Subtotal(items []SelectionItem) int64 {
    var total int64
    for _, it := range items {
        total += it.UnitPriceCents * int64(it.Quantity)
    }
    return total
}
