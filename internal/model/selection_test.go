package model

import "testing"

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		items []SelectionItem
		want  int64
	}{
		{"empty", nil, 0},
		{
			"single line",
			[]SelectionItem{{ItemID: 1, UnitPriceCents: 800, Quantity: 2}},
			1600,
		},
		{
			"multiple lines",
			[]SelectionItem{
				{ItemID: 1, UnitPriceCents: 800, Quantity: 2},
				{ItemID: 2, UnitPriceCents: 500, Quantity: 1},
				{ItemID: 3, UnitPriceCents: 150, Quantity: 4},
			},
			2700,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subtotal(tt.items); got != tt.want {
				t.Fatalf("Subtotal = %d, want %d", got, tt.want)
			}
		})
	}
}
