package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quanviet/store-console/internal/model"
	"github.com/quanviet/store-console/internal/pricing"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestComputeTotalsPho(t *testing.T) {
	// One line: Phở 50000 × 2 with one 5000 topping, shipping 15000, no
	// discount → subtotal 110000, final 125000.
	items := []model.OrderItem{
		{
			DishID:   "d1",
			Name:     "Phở",
			Price:    dec(50000),
			Quantity: 2,
			Toppings: []model.ToppingRef{{ID: "t1", Name: "Tái", Price: dec(5000)}},
		},
	}

	totals := pricing.ComputeTotals(items, dec(0), dec(15000), nil)
	if !totals.Subtotal.Equal(dec(110000)) {
		t.Errorf("subtotal: got %s, want 110000", totals.Subtotal)
	}
	if !totals.Final.Equal(dec(125000)) {
		t.Errorf("final: got %s, want 125000", totals.Final)
	}
}

func TestComputeTotalsPrefersLivePrice(t *testing.T) {
	items := []model.OrderItem{
		{DishID: "d1", Price: dec(40000), Quantity: 1},
		{DishID: "d2", Price: dec(30000), Quantity: 1},
	}
	live := map[string]decimal.Decimal{"d1": dec(45000)}

	totals := pricing.ComputeTotals(items, dec(0), dec(0), live)
	// d1 re-priced from the live catalog, d2 keeps its snapshot.
	if !totals.Subtotal.Equal(dec(75000)) {
		t.Errorf("subtotal: got %s, want 75000", totals.Subtotal)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	items := []model.OrderItem{
		{DishID: "d1", Price: dec(25000), Quantity: 3,
			Toppings: []model.ToppingRef{{ID: "t1", Price: dec(3000)}, {ID: "t2", Price: dec(7000)}}},
		{DishID: "d2", Price: dec(60000), Quantity: 1},
	}
	first := pricing.ComputeTotals(items, dec(10000), dec(15000), nil)
	for i := 0; i < 10; i++ {
		again := pricing.ComputeTotals(items, dec(10000), dec(15000), nil)
		if !again.Subtotal.Equal(first.Subtotal) || !again.Final.Equal(first.Final) {
			t.Fatalf("run %d: totals changed: %s/%s vs %s/%s",
				i, again.Subtotal, again.Final, first.Subtotal, first.Final)
		}
	}
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	items := []model.OrderItem{{DishID: "d1", Price: dec(10000), Quantity: 1}}
	totals := pricing.ComputeTotals(items, dec(50000), dec(0), nil)
	if totals.Final.IsNegative() {
		t.Errorf("final went negative: %s", totals.Final)
	}
	if !totals.Final.Equal(dec(0)) {
		t.Errorf("final: got %s, want 0", totals.Final)
	}
}

func TestComputeTotalsDoesNotMutateItems(t *testing.T) {
	items := []model.OrderItem{
		{DishID: "d1", Price: dec(20000), Quantity: 2,
			Toppings: []model.ToppingRef{{ID: "t1", Price: dec(5000)}}},
	}
	pricing.ComputeTotals(items, dec(0), dec(0), map[string]decimal.Decimal{"d1": dec(99999)})

	if !items[0].Price.Equal(dec(20000)) {
		t.Errorf("item price mutated: %s", items[0].Price)
	}
	if items[0].Quantity != 2 || len(items[0].Toppings) != 1 {
		t.Error("item structure mutated")
	}
}

func TestLineTotalEmptyLine(t *testing.T) {
	got := pricing.LineTotal(model.OrderItem{DishID: "d1", Price: dec(15000), Quantity: 1}, nil)
	if !got.Equal(dec(15000)) {
		t.Errorf("line total: got %s, want 15000", got)
	}
}
