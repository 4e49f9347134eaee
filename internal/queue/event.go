// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionClosedEvent is published when an ordering session is successfully
// closed. It contains enough information for downstream consumers to log,
// notify the group, or feed analytics without querying the primary
// database. OrderID is nil when the session closed without a ledger order
// (no selections, or the ledger call failed).
type SessionClosedEvent struct {
    SessionID        uint64  `json:"session_id"`
    GroupID          uint64  `json:"group_id"`
    Title            string  `json:"title"`
    ClosedBy         uint64  `json:"closed_by"`
    MemberCount      int     `json:"member_count"`
    TotalQuantity    int     `json:"total_quantity"`
    TotalAmountCents int64   `json:"total_amount_cents"`
    OrderID          *uint64 `json:"order_id,omitempty"`
    ClosedAt         string  `json:"closed_at"`
}
