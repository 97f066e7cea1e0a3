package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quanviet/store-console/internal/enum"
)

// ErrUnknownTab is returned for a tab name outside the fixed presets.
var ErrUnknownTab = errors.New("unknown order tab")

// Tab is a named preset of statuses the console lists together.
type Tab struct {
	Name     string
	Statuses []string
}

// The three tabs of the order screen: new orders awaiting action, orders
// somewhere in fulfilment, and closed orders.
var tabs = map[string]Tab{
	"pending": {
		Name:     "pending",
		Statuses: []string{enum.OrderStatusPending},
	},
	"verify": {
		Name: "verify",
		Statuses: []string{
			enum.OrderStatusConfirmed,
			enum.OrderStatusFinished,
			enum.OrderStatusTaken,
			enum.OrderStatusDelivering,
		},
	},
	"history": {
		Name: "history",
		Statuses: []string{
			enum.OrderStatusDelivered,
			enum.OrderStatusDone,
			enum.OrderStatusCancelled,
		},
	},
}

// TabByName resolves a tab preset.
func TabByName(name string) (Tab, error) {
	t, ok := tabs[name]
	if !ok {
		return Tab{}, fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	return t, nil
}

// CSV renders the tab's statuses as the list endpoint's status parameter.
func (t Tab) CSV() string {
	return strings.Join(t.Statuses, ",")
}
