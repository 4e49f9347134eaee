// Package aggregate folds the selections of a session into a per-item
// summary and overall totals.  It performs no I/O; callers load the
// selections and hand the result to the order ledger or to read endpoints.
package aggregate

import (
    "sort"

    "github.com/wwbing/wxorder/internal/model"
)

// ItemSummary accumulates one catalog item across all selections of a
// session.  Items are keyed by id, never by name: two items with equal
// names but different ids stay separate rows.
type ItemSummary struct {
    ItemID      uint64 `json:"item_id"`
    Name        string `json:"name"`
    Quantity    int    `json:"quantity"`
    AmountCents int64  `json:"amount_cents"`
}

// Result is the settled aggregate of a selection set.
//
// TotalAmountCents is the sum of the selection subtotals, computed
// independently of the per-item fold; the two must agree for any input
// whose subtotals were derived from its items.
type Result struct {
    Items            []ItemSummary `json:"items"`
    TotalQuantity    int           `json:"total_quantity"`
    TotalAmountCents int64         `json:"total_amount_cents"`
    MemberCount      int           `json:"member_count"`
}

// ItemsAmountCents sums the per-item amounts.  Used as a cross-check
// against TotalAmountCents.
func (r Result) ItemsAmountCents() int64 {
    var total int64
    for _, it := range r.Items {
        total += it.AmountCents
    }
    return total
}

// Fold groups the items of all selections by item id and accumulates
// quantities and amounts.  The result does not depend on the iteration
// order of selections or items: summary rows are sorted by item id.  An
// empty input yields zero totals and an empty (non-nil) item list.
func Fold(selections []model.Selection) Result {
    byID := make(map[uint64]*ItemSummary)
    res := Result{MemberCount: len(selections)}
    for _, sel := range selections {
        res.TotalAmountCents += sel.SubtotalCents
        for _, it := range sel.Items {
            row, ok := byID[it.ItemID]
            if !ok {
                row = &ItemSummary{ItemID: it.ItemID, Name: it.Name}
                byID[it.ItemID] = row
            }
            row.Quantity += it.Quantity
            row.AmountCents += int64(it.Quantity) * it.UnitPriceCents
            res.TotalQuantity += it.Quantity
        }
    }
    res.Items = make([]ItemSummary, 0, len(byID))
    for _, row := range byID {
        res.Items = append(res.Items, *row)
    }
    sort.Slice(res.Items, func(i, j int) bool { return res.Items[i].ItemID < res.Items[j].ItemID })
    return res
}
