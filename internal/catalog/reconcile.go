// Package catalog resolves loosely-typed topping references from persisted
// orders back to canonical catalog entries. Upstream documents may carry a
// topping's canonical id, the same id under an alternate field, or nothing
// but name and price; older catalogs additionally contain duplicate groups
// and toppings. Resolution happens once, at the boundary; everything
// downstream only ever sees the canonical selection shape.
package catalog

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/quanviet/store-console/internal/model"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, strips diacritics and collapses whitespace so
// that "  Trứng " and "trứng" compare equal.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	// đ survives NFD (it is not a combining form); fold it by hand so both
	// sides of a comparison agree.
	s = strings.ReplaceAll(s, "đ", "d")
	return strings.Join(strings.Fields(s), " ")
}

func nameKey(name string, price decimal.Decimal) string {
	return NormalizeName(name) + "|" + price.StringFixed(0)
}

// Resolver holds the de-duplicated topping catalog of a single dish.
type Resolver struct {
	groups []model.ToppingGroup
	byID   map[string]model.ToppingSelection
	byName map[string]string // normalized name|price → topping id
}

// NewResolver de-duplicates the dish's topping groups and toppings by id,
// first occurrence wins, and builds the primary and fallback lookups.
func NewResolver(groups []model.ToppingGroup) *Resolver {
	r := &Resolver{
		byID:   make(map[string]model.ToppingSelection),
		byName: make(map[string]string),
	}

	seenGroups := make(map[string]bool)
	for _, g := range groups {
		if g.ID != "" && seenGroups[g.ID] {
			continue
		}
		seenGroups[g.ID] = true

		kept := model.ToppingGroup{ID: g.ID, Name: g.Name}
		for _, t := range g.Toppings {
			if t.ID == "" {
				continue
			}
			if _, dup := r.byID[t.ID]; dup {
				continue
			}
			r.byID[t.ID] = model.ToppingSelection{
				ID:        t.ID,
				Name:      t.Name,
				Price:     t.Price,
				GroupID:   g.ID,
				GroupName: g.Name,
			}
			if key := nameKey(t.Name, t.Price); r.byName[key] == "" {
				r.byName[key] = t.ID
			}
			kept.Toppings = append(kept.Toppings, t)
		}
		if len(kept.Toppings) > 0 {
			r.groups = append(r.groups, kept)
		}
	}
	return r
}

// Groups returns the de-duplicated topping groups, the set the editor may
// offer.
func (r *Resolver) Groups() []model.ToppingGroup {
	return r.groups
}

// Resolve maps persisted references onto canonical selections. References
// that no longer exist in the catalog are dropped: the editor only ever
// offers currently valid toppings, so catalog drift is expected and
// non-fatal. The result is de-duplicated by canonical id, and resolving an
// already-resolved set yields the identical set.
func (r *Resolver) Resolve(refs []model.ToppingRef) []model.ToppingSelection {
	var out []model.ToppingSelection
	seen := make(map[string]bool)
	for _, ref := range refs {
		sel, ok := r.lookup(ref)
		if !ok || seen[sel.ID] {
			continue
		}
		seen[sel.ID] = true
		out = append(out, sel)
	}
	return out
}

func (r *Resolver) lookup(ref model.ToppingRef) (model.ToppingSelection, bool) {
	if ref.ID != "" {
		if sel, ok := r.byID[ref.ID]; ok {
			return sel, true
		}
	}
	if ref.AltID != "" {
		if sel, ok := r.byID[ref.AltID]; ok {
			return sel, true
		}
	}
	if ref.Name != "" {
		if id, ok := r.byName[nameKey(ref.Name, ref.Price)]; ok {
			return r.byID[id], true
		}
	}
	return model.ToppingSelection{}, false
}
