// Package editor maintains the in-memory draft of an order's line items
// while a store operator edits it. Every mutation is local and synchronous;
// nothing reaches the network until Save, which submits the whole order in
// one atomic PUT. The platform stays authoritative: a rejected save means
// the caller re-fetches, the draft is never merged.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quanviet/store-console/internal/catalog"
	"github.com/quanviet/store-console/internal/model"
	"github.com/quanviet/store-console/internal/pricing"
)

// Quantity bounds enforced on every line.
const (
	MinQuantity = 1
	MaxQuantity = 50
)

// DefaultGrace is the undo window for line removal.
const DefaultGrace = 5 * time.Second

// Errors returned by the editor.
var (
	ErrEmptyOrder   = errors.New("order has no items")
	ErrLineNotFound = errors.New("line not found")
)

// API is the slice of the platform client the editor needs.
// Satisfied by *foodapi.Client.
type API interface {
	GetOrder(ctx context.Context, id string) (model.Order, error)
	StoreDishes(ctx context.Context, storeID string) ([]model.Dish, error)
	UpdateOrder(ctx context.Context, o model.Order) (model.Order, error)
}

type lineState int

const (
	lineActive lineState = iota
	linePendingRemoval
)

// Line is one editable order line. Key is generated locally on load and is
// stable across edits; it is never derived from a server id. Image and
// description are catalog snapshots for display only and are stripped from
// the save payload.
type Line struct {
	Key         uuid.UUID
	DishID      string
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
	Quantity    int
	Note        string
	Toppings    []model.ToppingSelection

	state lineState
}

// Editor is the draft of a single order. One editor instance owns one order
// id at a time; mutations are safe against the undo timer goroutine but the
// caller is responsible for not racing two saves.
type Editor struct {
	api   API
	grace time.Duration

	mu         sync.Mutex
	order      model.Order
	dishes     map[string]model.Dish
	resolvers  map[string]*catalog.Resolver
	livePrices map[string]decimal.Decimal
	lines      []*Line
	removals   *removalController
	snapshot   string
}

// New creates an editor with the given undo grace window; grace <= 0 uses
// DefaultGrace.
func New(api API, grace time.Duration) *Editor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Editor{
		api:        api,
		grace:      grace,
		dishes:     make(map[string]model.Dish),
		resolvers:  make(map[string]*catalog.Resolver),
		livePrices: make(map[string]decimal.Decimal),
		removals:   newRemovalController(),
	}
}

// Load fetches the order and the store's dish catalog and normalizes every
// persisted line into an editable one. Topping references are resolved to
// canonical selections here, once; the draft never sees the loose shapes
// again. The dirty snapshot is taken from the normalized result, so IsDirty
// is false immediately after Load.
func (e *Editor) Load(ctx context.Context, orderID string) error {
	o, err := e.api.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	dishes, err := e.api.StoreDishes(ctx, o.StoreID)
	if err != nil {
		return fmt.Errorf("load catalog for store %s: %w", o.StoreID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.removals.stopAll()
	e.order = o
	e.dishes = make(map[string]model.Dish, len(dishes))
	e.resolvers = make(map[string]*catalog.Resolver, len(dishes))
	e.livePrices = make(map[string]decimal.Decimal, len(dishes))
	for _, d := range dishes {
		e.dishes[d.ID] = d
		e.resolvers[d.ID] = catalog.NewResolver(d.ToppingGroups)
		e.livePrices[d.ID] = d.Price
	}

	e.lines = make([]*Line, 0, len(o.Items))
	for _, item := range o.Items {
		e.lines = append(e.lines, e.buildLineLocked(item))
	}
	e.snapshot = e.projectionLocked()
	return nil
}

// ReplaceItems rebuilds the draft from wire items, normalizing each one
// exactly as Load does. Items with quantity zero or less are removals and
// are skipped; quantities above the bound are clamped. The load-time
// snapshot is kept, so IsDirty reflects the difference.
func (e *Editor) ReplaceItems(items []model.OrderItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removals.stopAll()
	e.lines = e.lines[:0]
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if item.Quantity > MaxQuantity {
			item.Quantity = MaxQuantity
		}
		e.lines = append(e.lines, e.buildLineLocked(item))
	}
}

// buildLineLocked normalizes one wire item into an editable line: fresh
// local key, toppings resolved to canonical selections, display fields
// filled from the catalog when the dish still exists.
func (e *Editor) buildLineLocked(item model.OrderItem) *Line {
	ln := &Line{
		Key:      uuid.New(),
		DishID:   item.DishID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: item.Quantity,
		Note:     item.Note,
		Toppings: e.resolveLocked(item.DishID, item.Toppings),
	}
	if d, ok := e.dishes[item.DishID]; ok {
		ln.Image = d.Image
		ln.Description = d.Description
	}
	return ln
}

// Order returns the loaded order document as of the last load or save.
func (e *Editor) Order() model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order
}

// Lines returns copies of the active lines, in order. Lines inside their
// removal grace window are hidden.
func (e *Editor) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Line, 0, len(e.lines))
	for _, ln := range e.lines {
		if ln.state == lineActive {
			out = append(out, *ln)
		}
	}
	return out
}

// ToppingGroups returns the de-duplicated topping catalog of a dish, the
// set the console may offer for selection.
func (e *Editor) ToppingGroups(dishID string) []model.ToppingGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.resolvers[dishID]; ok {
		return r.Groups()
	}
	return nil
}

// AddDish appends a new line for the dish: quantity 1, no toppings, price,
// image and description captured from the catalog entry now.
func (e *Editor) AddDish(d model.Dish) uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	ln := &Line{
		Key:         uuid.New(),
		DishID:      d.ID,
		Name:        d.Name,
		Price:       d.Price,
		Image:       d.Image,
		Description: d.Description,
		Quantity:    1,
	}
	e.lines = append(e.lines, ln)
	if _, ok := e.dishes[d.ID]; !ok {
		e.dishes[d.ID] = d
		e.resolvers[d.ID] = catalog.NewResolver(d.ToppingGroups)
		e.livePrices[d.ID] = d.Price
	}
	return ln.Key
}

// SetQuantity sets a line's quantity, clamped to [MinQuantity, MaxQuantity].
// Quantity zero (or less) means "remove": it is routed through the same
// undoable removal path as RemoveLine, not a second code path.
func (e *Editor) SetQuantity(key uuid.UUID, qty int) error {
	if qty <= 0 {
		return e.RemoveLine(key)
	}
	if qty > MaxQuantity {
		qty = MaxQuantity
	}
	if qty < MinQuantity {
		qty = MinQuantity
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ln, err := e.findLocked(key)
	if err != nil {
		return err
	}
	ln.Quantity = qty
	return nil
}

// SetNote replaces a line's free-text note.
func (e *Editor) SetNote(key uuid.UUID, note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ln, err := e.findLocked(key)
	if err != nil {
		return err
	}
	ln.Note = note
	return nil
}

// SetToppings replaces a line's topping selections. The selections are
// passed back through the dish's resolver, so only currently valid toppings
// survive and the per-line id-uniqueness invariant holds.
func (e *Editor) SetToppings(key uuid.UUID, sels []model.ToppingSelection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ln, err := e.findLocked(key)
	if err != nil {
		return err
	}
	refs := make([]model.ToppingRef, len(sels))
	for i, s := range sels {
		refs[i] = s.Ref()
	}
	ln.Toppings = e.resolveLocked(ln.DishID, refs)
	return nil
}

// IsDirty reports whether the draft differs from the load-time snapshot.
// The comparison uses a normalized projection (dish id, quantity, note,
// sorted topping ids), so edits that net back to the original, or a mere
// reordering of toppings, do not count as dirty.
func (e *Editor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectionLocked() != e.snapshot
}

// Totals derives the current draft pricing. Purely derived state, computed
// on demand and never stored on the draft.
func (e *Editor) Totals() pricing.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pricing.ComputeTotals(e.itemsLocked(), e.order.DiscountTotal, e.order.ShippingFee, e.livePrices)
}

// Save submits the draft as one atomic PUT of the full order document.
// Pending removals are finalized first. A draft with zero remaining lines
// fails with ErrEmptyOrder before any network call. On upstream failure the
// draft is preserved so the operator can retry.
func (e *Editor) Save(ctx context.Context) (model.Order, error) {
	e.mu.Lock()

	kept := e.lines[:0]
	for _, ln := range e.lines {
		if ln.state == lineActive {
			kept = append(kept, ln)
		} else {
			e.removals.cancel(ln.Key)
		}
	}
	e.lines = kept

	if len(e.lines) == 0 {
		e.mu.Unlock()
		return model.Order{}, ErrEmptyOrder
	}

	items := e.itemsLocked()
	totals := pricing.ComputeTotals(items, e.order.DiscountTotal, e.order.ShippingFee, e.livePrices)

	updated := e.order
	updated.Items = items
	updated.SubtotalPrice = totals.Subtotal
	updated.FinalTotal = totals.Final
	e.mu.Unlock()

	result, err := e.api.UpdateOrder(ctx, updated)
	if err != nil {
		return model.Order{}, fmt.Errorf("save order %s: %w", updated.ID, err)
	}

	e.mu.Lock()
	e.order = result
	e.snapshot = e.projectionLocked()
	e.mu.Unlock()
	return result, nil
}

// Close cancels any pending removal timers. Call on unmount.
func (e *Editor) Close() {
	e.removals.stopAll()
}

// --- internals (callers hold e.mu) ---

func (e *Editor) findLocked(key uuid.UUID) (*Line, error) {
	for _, ln := range e.lines {
		if ln.Key == key && ln.state == lineActive {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLineNotFound, key)
}

func (e *Editor) resolveLocked(dishID string, refs []model.ToppingRef) []model.ToppingSelection {
	r, ok := e.resolvers[dishID]
	if !ok {
		// Dish no longer in the catalog: nothing can be offered, so nothing
		// resolves. Catalog drift, not an error.
		return nil
	}
	return r.Resolve(refs)
}

// itemsLocked strips the UI-only fields (key, image, description) and
// converts the active lines into wire items.
func (e *Editor) itemsLocked() []model.OrderItem {
	var items []model.OrderItem
	for _, ln := range e.lines {
		if ln.state != lineActive {
			continue
		}
		item := model.OrderItem{
			DishID:   ln.DishID,
			Name:     ln.Name,
			Price:    ln.Price,
			Quantity: ln.Quantity,
			Note:     ln.Note,
		}
		for _, s := range ln.Toppings {
			item.Toppings = append(item.Toppings, s.Ref())
		}
		items = append(items, item)
	}
	return items
}

func (e *Editor) projectionLocked() string {
	var entries []string
	for _, ln := range e.lines {
		if ln.state != lineActive {
			continue
		}
		ids := make([]string, len(ln.Toppings))
		for i, t := range ln.Toppings {
			ids[i] = t.ID
		}
		sort.Strings(ids)
		entries = append(entries, fmt.Sprintf("%s|%d|%q|%s", ln.DishID, ln.Quantity, ln.Note, strings.Join(ids, ",")))
	}
	sort.Strings(entries)
	return strings.Join(entries, "\n")
}
