package model

import "time"

// Order is the ledger record produced from a closed session's aggregate.
// Once written it is owned by the kitchen/order side of the system; this
// service only creates it and stores the resulting id on the session.
type Order struct {
    ID               uint64    // orders.id
    GroupID          uint64    // orders.group_id
    Title            string    // orders.title
    TotalAmountCents int64     // orders.total_amount_cents
    Status           string    // orders.status (pending at creation)
    CreatedAt        time.Time // orders.created_at
}
