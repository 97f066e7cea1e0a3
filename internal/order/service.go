package order

import (
	"context"
	"fmt"

	"github.com/quanviet/store-console/internal/enum"
	"github.com/quanviet/store-console/internal/model"
)

// Updater submits a full order document upstream. Satisfied by
// *foodapi.Client; there is no partial-patch endpoint, the whole document
// is always sent.
type Updater interface {
	UpdateOrder(ctx context.Context, o model.Order) (model.Order, error)
}

// Notifier dispatches a notification event, best-effort.
// Satisfied by *notify.Channel.
type Notifier interface {
	Send(ev model.NotificationEvent)
}

// TransitionService validates a status change, commits it upstream and
// notifies the order's user.
type TransitionService struct {
	api      Updater
	notifier Notifier
}

func NewTransitionService(api Updater, notifier Notifier) *TransitionService {
	return &TransitionService{api: api, notifier: notifier}
}

// Apply moves o to target. The transition is validated locally first; a
// rejected transition never reaches the network. On upstream failure the
// caller's view of the order is unchanged and should be re-fetched to
// confirm. Notification delivery is fire-and-forget.
func (s *TransitionService) Apply(ctx context.Context, o model.Order, target string) (model.Order, error) {
	if err := Transition(&o, target); err != nil {
		return model.Order{}, err
	}

	updated, err := s.api.UpdateOrder(ctx, o)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order %s: %w", o.ID, err)
	}

	if s.notifier != nil {
		s.notifier.Send(model.NotificationEvent{
			UserID:  updated.UserID,
			Title:   "Cập nhật đơn hàng",
			Message: fmt.Sprintf("Đơn hàng của bạn: %s", StatusLabel(target)),
			OrderID: updated.ID,
			Type:    enum.NotificationTypeOrder,
		})
	}
	return updated, nil
}
