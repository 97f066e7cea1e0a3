package order

import (
	"errors"
	"fmt"

	"github.com/quanviet/store-console/internal/enum"
	"github.com/quanviet/store-console/internal/model"
)

// ErrInvalidTransition is returned when a requested status change is not in
// the allowed-next set of the order's current status. It is raised locally,
// before any network call.
var ErrInvalidTransition = errors.New("invalid status transition")

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
// delivered, done and cancelled are terminal and have no entry.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed:  {enum.OrderStatusFinished, enum.OrderStatusCancelled},
	enum.OrderStatusFinished:   {enum.OrderStatusTaken},
	enum.OrderStatusTaken:      {enum.OrderStatusDelivering},
	enum.OrderStatusDelivering: {enum.OrderStatusDelivered, enum.OrderStatusDone},
}

// statusLabels are the display labels shown in the console UI, 1:1 with the
// status values.
var statusLabels = map[string]string{
	enum.OrderStatusPending:    "Chờ xác nhận",
	enum.OrderStatusConfirmed:  "Đã xác nhận",
	enum.OrderStatusFinished:   "Đã chuẩn bị xong",
	enum.OrderStatusTaken:      "Shipper đã lấy hàng",
	enum.OrderStatusDelivering: "Đang giao hàng",
	enum.OrderStatusDelivered:  "Đã giao hàng",
	enum.OrderStatusDone:       "Hoàn tất",
	enum.OrderStatusCancelled:  "Đã hủy",
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether no further transition is defined from s.
func IsTerminal(s string) bool {
	return ValidStatus(s) && len(allowedTransitions[s]) == 0
}

// StatusLabel returns the display label for s, or s itself when unknown.
func StatusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves o to target if the transition table allows it.
// On failure o is left untouched.
func Transition(o *model.Order, target string) error {
	if !ValidStatus(target) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !CanTransition(o.Status, target) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	return nil
}
