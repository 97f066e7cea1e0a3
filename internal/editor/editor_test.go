package editor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quanviet/store-console/internal/editor"
	"github.com/quanviet/store-console/internal/enum"
	"github.com/quanviet/store-console/internal/model"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// --- Mock API ---

type mockAPI struct {
	getOrderFn    func(ctx context.Context, id string) (model.Order, error)
	storeDishesFn func(ctx context.Context, storeID string) ([]model.Dish, error)
	updateOrderFn func(ctx context.Context, o model.Order) (model.Order, error)
	updateCalls   int
}

func (m *mockAPI) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return m.getOrderFn(ctx, id)
}

func (m *mockAPI) StoreDishes(ctx context.Context, storeID string) ([]model.Dish, error) {
	return m.storeDishesFn(ctx, storeID)
}

func (m *mockAPI) UpdateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	m.updateCalls++
	return m.updateOrderFn(ctx, o)
}

// --- Fixtures ---

func testOrder() model.Order {
	return model.Order{
		ID:            "o1",
		StoreID:       "s1",
		UserID:        "u1",
		Status:        enum.OrderStatusPending,
		PaymentMethod: enum.PaymentMethodCash,
		ShippingFee:   dec(15000),
		DiscountTotal: dec(0),
		Items: []model.OrderItem{
			{
				DishID:   "d1",
				Name:     "Phở bò",
				Price:    dec(50000),
				Quantity: 2,
				Note:     "ít hành",
				Toppings: []model.ToppingRef{
					// Old document: no id, name+price only.
					{Name: "Trứng", Price: dec(5000)},
					{ID: "x2"},
				},
			},
			{DishID: "d2", Name: "Bún chả", Price: dec(30000), Quantity: 1},
		},
		DeliveryHistory: []model.DeliveryAssignment{
			{Assignee: "shipper-1", AssignedAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC), ChangeType: enum.AssignmentChangeAssigned},
		},
	}
}

func testDishes() []model.Dish {
	return []model.Dish{
		{
			ID:          "d1",
			Name:        "Phở bò",
			Price:       dec(50000),
			Image:       "pho.jpg",
			Description: "Phở bò truyền thống",
			IsAvailable: true,
			ToppingGroups: []model.ToppingGroup{
				{
					ID:   "g1",
					Name: "Thêm",
					Toppings: []model.Topping{
						{ID: "x9", Name: "trứng", Price: dec(5000)},
						{ID: "x2", Name: "Bò viên", Price: dec(10000)},
					},
				},
			},
		},
		{ID: "d2", Name: "Bún chả", Price: dec(30000), IsAvailable: true},
		{ID: "d3", Name: "Chả giò", Price: dec(20000), Image: "chagio.jpg", IsAvailable: true},
	}
}

func loadedEditor(t *testing.T, grace time.Duration) (*editor.Editor, *mockAPI) {
	t.Helper()
	api := &mockAPI{
		getOrderFn: func(ctx context.Context, id string) (model.Order, error) {
			return testOrder(), nil
		},
		storeDishesFn: func(ctx context.Context, storeID string) ([]model.Dish, error) {
			return testDishes(), nil
		},
		updateOrderFn: func(ctx context.Context, o model.Order) (model.Order, error) {
			return o, nil
		},
	}
	ed := editor.New(api, grace)
	if err := ed.Load(context.Background(), "o1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ed, api
}

// --- Tests ---

func TestLoadNormalizesLines(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()

	lines := ed.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}

	pho := lines[0]
	if pho.Key == uuid.Nil || lines[1].Key == uuid.Nil {
		t.Fatal("line keys must be generated")
	}
	if pho.Key == lines[1].Key {
		t.Fatal("line keys must be distinct")
	}
	if pho.Image != "pho.jpg" || pho.Description == "" {
		t.Errorf("catalog display fields not attached: %+v", pho)
	}

	// The name-only reference resolved to its canonical id, the direct one
	// stayed put.
	if len(pho.Toppings) != 2 {
		t.Fatalf("toppings: got %d, want 2", len(pho.Toppings))
	}
	if pho.Toppings[0].ID != "x9" {
		t.Errorf("fallback topping: got id %s, want x9", pho.Toppings[0].ID)
	}
	if pho.Toppings[1].ID != "x2" || pho.Toppings[1].Name != "Bò viên" {
		t.Errorf("direct topping not canonicalized: %+v", pho.Toppings[1])
	}
}

func TestNotDirtyAfterLoad(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	if ed.IsDirty() {
		t.Fatal("editor dirty immediately after load")
	}
}

func TestDirtyNetsBackToClean(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	key := ed.Lines()[0].Key

	if err := ed.SetQuantity(key, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !ed.IsDirty() {
		t.Fatal("expected dirty after quantity change")
	}
	if err := ed.SetQuantity(key, 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if ed.IsDirty() {
		t.Fatal("expected clean after netting back to original")
	}
}

func TestToppingOrderDoesNotDirty(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	line := ed.Lines()[0]

	reversed := []model.ToppingSelection{line.Toppings[1], line.Toppings[0]}
	if err := ed.SetToppings(line.Key, reversed); err != nil {
		t.Fatalf("set toppings: %v", err)
	}
	if ed.IsDirty() {
		t.Fatal("topping reordering must not count as dirty")
	}
}

func TestSetQuantityClamps(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	key := ed.Lines()[0].Key

	if err := ed.SetQuantity(key, 99); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := ed.Lines()[0].Quantity; got != editor.MaxQuantity {
		t.Errorf("quantity: got %d, want clamped to %d", got, editor.MaxQuantity)
	}
}

func TestQuantityZeroRoutesToRemoval(t *testing.T) {
	ed, _ := loadedEditor(t, time.Minute)
	defer ed.Close()
	key := ed.Lines()[0].Key

	if err := ed.SetQuantity(key, 0); err != nil {
		t.Fatalf("set quantity 0: %v", err)
	}
	if len(ed.Lines()) != 1 {
		t.Fatal("line not hidden after quantity 0")
	}
	if !ed.UndoRemove(key) {
		t.Fatal("quantity-0 removal must be undoable")
	}
	if len(ed.Lines()) != 2 {
		t.Fatal("line not restored after undo")
	}
}

func TestSetNote(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	key := ed.Lines()[1].Key

	if err := ed.SetNote(key, "không ớt"); err != nil {
		t.Fatalf("set note: %v", err)
	}
	if got := ed.Lines()[1].Note; got != "không ớt" {
		t.Errorf("note: got %q", got)
	}
	if !ed.IsDirty() {
		t.Error("expected dirty after note change")
	}
}

func TestSetToppingsRevalidates(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()
	key := ed.Lines()[0].Key

	// A stale selection for a topping no longer in the catalog is dropped,
	// a duplicate collapses.
	err := ed.SetToppings(key, []model.ToppingSelection{
		{ID: "x9", Name: "trứng", Price: dec(5000)},
		{ID: "x9", Name: "trứng", Price: dec(5000)},
		{ID: "gone", Name: "cũ", Price: dec(1000)},
	})
	if err != nil {
		t.Fatalf("set toppings: %v", err)
	}
	tops := ed.Lines()[0].Toppings
	if len(tops) != 1 || tops[0].ID != "x9" {
		t.Errorf("toppings: got %+v, want single x9", tops)
	}
}

func TestAddDish(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()

	key := ed.AddDish(testDishes()[2])
	lines := ed.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(lines))
	}
	added := lines[2]
	if added.Key != key {
		t.Error("AddDish key mismatch")
	}
	if added.Quantity != 1 || len(added.Toppings) != 0 {
		t.Errorf("new line: got qty %d, %d toppings", added.Quantity, len(added.Toppings))
	}
	if !added.Price.Equal(dec(20000)) || added.Image != "chagio.jpg" {
		t.Errorf("catalog snapshot not captured: %+v", added)
	}
	if !ed.IsDirty() {
		t.Error("expected dirty after adding a dish")
	}
}

func TestTotalsDerived(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()

	// Phở 2 × (50000 + 5000 + 10000) + Bún 1 × 30000 = 160000, +15000 ship.
	totals := ed.Totals()
	if !totals.Subtotal.Equal(dec(160000)) {
		t.Errorf("subtotal: got %s, want 160000", totals.Subtotal)
	}
	if !totals.Final.Equal(dec(175000)) {
		t.Errorf("final: got %s, want 175000", totals.Final)
	}
}

func TestSaveEmptyOrderNoNetwork(t *testing.T) {
	ed, api := loadedEditor(t, time.Minute)
	defer ed.Close()

	for _, ln := range ed.Lines() {
		if err := ed.RemoveLine(ln.Key); err != nil {
			t.Fatalf("remove: %v", err)
		}
	}

	_, err := ed.Save(context.Background())
	if !errors.Is(err, editor.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if api.updateCalls != 0 {
		t.Errorf("upstream calls: got %d, want 0", api.updateCalls)
	}
}

func TestSaveSubmitsFullOrder(t *testing.T) {
	ed, api := loadedEditor(t, 0)
	defer ed.Close()

	var sent model.Order
	api.updateOrderFn = func(ctx context.Context, o model.Order) (model.Order, error) {
		sent = o
		return o, nil
	}

	key := ed.Lines()[0].Key
	if err := ed.SetQuantity(key, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	updated, err := ed.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if sent.ID != "o1" || sent.Status != enum.OrderStatusPending {
		t.Errorf("order document fields not carried: %+v", sent)
	}
	if len(sent.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(sent.Items))
	}
	if sent.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", sent.Items[0].Quantity)
	}
	// 3 × (50000+5000+10000) + 30000 = 225000; +15000 shipping.
	if !sent.SubtotalPrice.Equal(dec(225000)) {
		t.Errorf("subtotal: got %s, want 225000", sent.SubtotalPrice)
	}
	if !sent.FinalTotal.Equal(dec(240000)) {
		t.Errorf("final: got %s, want 240000", sent.FinalTotal)
	}
	if !updated.SubtotalPrice.Equal(sent.SubtotalPrice) {
		t.Error("returned order does not match submitted one")
	}
	// Fields the console never edits ride along untouched.
	if len(sent.DeliveryHistory) != 1 || sent.DeliveryHistory[0].Assignee != "shipper-1" {
		t.Errorf("delivery history not round-tripped: %+v", sent.DeliveryHistory)
	}
	if ed.IsDirty() {
		t.Error("editor still dirty after successful save")
	}
}

func TestSaveFailurePreservesDraft(t *testing.T) {
	ed, api := loadedEditor(t, 0)
	defer ed.Close()

	api.updateOrderFn = func(ctx context.Context, o model.Order) (model.Order, error) {
		return model.Order{}, errors.New("boom")
	}

	key := ed.Lines()[0].Key
	if err := ed.SetQuantity(key, 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	if _, err := ed.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if got := ed.Lines()[0].Quantity; got != 5 {
		t.Errorf("draft lost after failed save: qty %d", got)
	}
	if !ed.IsDirty() {
		t.Error("editor must stay dirty after failed save")
	}
}

func TestReplaceItems(t *testing.T) {
	ed, _ := loadedEditor(t, 0)
	defer ed.Close()

	ed.ReplaceItems([]model.OrderItem{
		{DishID: "d2", Name: "Bún chả", Price: dec(30000), Quantity: 99},
		{DishID: "d1", Name: "Phở bò", Price: dec(50000), Quantity: 0}, // removal
		{DishID: "d3", Name: "Chả giò", Price: dec(20000), Quantity: 1,
			Toppings: []model.ToppingRef{{ID: "nope"}}},
	})

	lines := ed.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if lines[0].Quantity != editor.MaxQuantity {
		t.Errorf("quantity not clamped: %d", lines[0].Quantity)
	}
	if len(lines[1].Toppings) != 0 {
		t.Errorf("unresolvable topping kept: %+v", lines[1].Toppings)
	}
	if !ed.IsDirty() {
		t.Error("expected dirty after replacing items")
	}
}
