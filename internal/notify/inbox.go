package notify

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/quanviet/store-console/internal/model"
)

// Inbox is the client-side ordered notification list. Three inbound event
// kinds feed it (the initial snapshot, new-order events and generic
// notifications) and all three append-or-replace into the same list,
// keyed by notification id where one is present.
type Inbox struct {
	mu    sync.Mutex
	items []model.NotificationEvent
	index map[string]int
}

func NewInbox() *Inbox {
	return &Inbox{index: make(map[string]int)}
}

// Apply consumes an inbound channel event. Unknown kinds are ignored so the
// inbox can be subscribed directly to a Channel.
func (in *Inbox) Apply(ev Event) {
	switch ev.Event {
	case EventAllNotifications:
		var list []model.NotificationEvent
		if err := json.Unmarshal(ev.Payload, &list); err != nil {
			log.Printf("notify: bad snapshot payload: %v", err)
			return
		}
		in.mu.Lock()
		for _, n := range list {
			in.put(n)
		}
		in.mu.Unlock()

	case EventNewOrder:
		var wrapped struct {
			Notification model.NotificationEvent `json:"notification"`
		}
		if err := json.Unmarshal(ev.Payload, &wrapped); err != nil {
			log.Printf("notify: bad new-order payload: %v", err)
			return
		}
		in.mu.Lock()
		in.put(wrapped.Notification)
		in.mu.Unlock()

	case EventNewNotification:
		var n model.NotificationEvent
		if err := json.Unmarshal(ev.Payload, &n); err != nil {
			log.Printf("notify: bad notification payload: %v", err)
			return
		}
		in.mu.Lock()
		in.put(n)
		in.mu.Unlock()
	}
}

// put appends n, or replaces the existing entry with the same id in place.
// Caller holds in.mu.
func (in *Inbox) put(n model.NotificationEvent) {
	if n.ID != "" {
		if i, ok := in.index[n.ID]; ok {
			in.items[i] = n
			return
		}
		in.index[n.ID] = len(in.items)
	}
	in.items = append(in.items, n)
}

// List returns a copy of the notifications in arrival order.
func (in *Inbox) List() []model.NotificationEvent {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]model.NotificationEvent, len(in.items))
	copy(out, in.items)
	return out
}

// UnreadCount counts notifications not yet marked read.
func (in *Inbox) UnreadCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := 0
	for _, item := range in.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead flags a notification as read. No-op for unknown ids.
func (in *Inbox) MarkRead(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if i, ok := in.index[id]; ok {
		in.items[i].Read = true
	}
}
