package model

// MenuItem is an orderable catalog entry.  This service reads the catalog
// only to snapshot names and prices at submission time; menu management
// lives elsewhere.
type MenuItem struct {
    ID          uint64 // menu_items.id
    Name        string // menu_items.name
    PriceCents  int64  // menu_items.price_cents
    IsAvailable bool   // menu_items.is_available
}
