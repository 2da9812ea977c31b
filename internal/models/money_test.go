package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 30000, "b": "15000.5", "c": null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.A.String() != "30000.00" || payload.B.String() != "15000.50" || payload.C.String() != "0.00" {
		t.Fatalf("unexpected values: %s %s %s", payload.A, payload.B, payload.C)
	}
}

func TestMoneyDivIntGuardsZero(t *testing.T) {
	if got := NewMoneyFromInt(100).DivInt(0); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := NewMoneyFromInt(100).DivInt(3).String(); got != "33.33" {
		t.Fatalf("unexpected quotient: %s", got)
	}
}

func TestPriceBySize(t *testing.T) {
	m := func(v int64) *Money {
		out := NewMoneyFromInt(v)
		return &out
	}
	product := &Product{
		PriceSmall:          m(20000),
		PriceMedium:         m(30000),
		DiscountPriceMedium: m(27000),
	}

	cases := []struct {
		size string
		want string
	}{
		{"small", "20000.00"},
		{"medium", "27000.00"},
		{"", "27000.00"},
		{"large", "27000.00"},
	}
	for _, tc := range cases {
		got, ok := product.PriceBySize(tc.size)
		if !ok || got.String() != tc.want {
			t.Fatalf("size %q: got %s ok=%v, want %s", tc.size, got, ok, tc.want)
		}
	}

	if _, ok := (&Product{}).PriceBySize("small"); ok {
		t.Fatalf("unpriced product should report no price")
	}
}

func TestSnapshotRecompute(t *testing.T) {
	snap := NewEmptySnapshot("delivery", "cash", NewMoneyFromInt(15000))
	if snap.TotalPayment.String() != "15000.00" {
		t.Fatalf("unexpected empty total: %s", snap.TotalPayment)
	}
	snap.SubTotal = NewMoneyFromInt(30000)
	snap.DeliOption = "pick-up"
	snap.Recompute(NewMoneyFromInt(15000))
	if snap.DeliFee.String() != "0.00" || snap.TotalPayment.String() != "30000.00" {
		t.Fatalf("unexpected pick-up totals: fee=%s total=%s", snap.DeliFee, snap.TotalPayment)
	}
}

func TestCartItemDisplayUnitPrice(t *testing.T) {
	item := CartItem{ID: 1, Quantity: 3, TotalPrice: NewMoneyFromInt(90000)}
	if got := item.DisplayUnitPrice().String(); got != "30000.00" {
		t.Fatalf("unexpected unit price: %s", got)
	}
	if got := (CartItem{TotalPrice: NewMoneyFromInt(10)}).DisplayUnitPrice(); !got.IsZero() {
		t.Fatalf("zero quantity should display zero, got %s", got)
	}
	if (CartItem{}).ProductID() != 0 {
		t.Fatalf("missing product should report id 0")
	}
}
