package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quanviet/store-console/internal/enum"
	"github.com/quanviet/store-console/internal/model"
	"github.com/quanviet/store-console/internal/notify"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketServer upgrades one connection and exposes its frames as decoded
// envelopes. Inbound pushes go through the conn directly.
type socketServer struct {
	*httptest.Server
	conns    chan *websocket.Conn
	received chan notify.Event
}

func newSocketServer(t *testing.T) *socketServer {
	t.Helper()
	s := &socketServer{
		conns:    make(chan *websocket.Conn, 1),
		received: make(chan notify.Event, 16),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		s.conns <- conn
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev notify.Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Errorf("bad envelope from client: %v", err)
				continue
			}
			s.received <- ev
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *socketServer) url() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *socketServer) next(t *testing.T) notify.Event {
	t.Helper()
	select {
	case ev := <-s.received:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a channel event")
		return notify.Event{}
	}
}

func TestDialRegistersSession(t *testing.T) {
	srv := newSocketServer(t)

	ch, err := notify.Dial(context.Background(), srv.url(), "u1", "s1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	ev := srv.next(t)
	if ev.Event != notify.EventRegisterUser {
		t.Fatalf("first event: got %s, want %s", ev.Event, notify.EventRegisterUser)
	}
	var user struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(ev.Payload, &user); err != nil || user.UserID != "u1" {
		t.Errorf("register user payload: %s (%v)", ev.Payload, err)
	}

	ev = srv.next(t)
	if ev.Event != notify.EventRegisterStore {
		t.Fatalf("second event: got %s, want %s", ev.Event, notify.EventRegisterStore)
	}
	var store struct {
		StoreID string `json:"storeId"`
	}
	if err := json.Unmarshal(ev.Payload, &store); err != nil || store.StoreID != "s1" {
		t.Errorf("register store payload: %s (%v)", ev.Payload, err)
	}
}

func TestDialSkipsEmptyRegistrations(t *testing.T) {
	srv := newSocketServer(t)

	ch, err := notify.Dial(context.Background(), srv.url(), "", "s1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	if ev := srv.next(t); ev.Event != notify.EventRegisterStore {
		t.Fatalf("got %s, want only %s", ev.Event, notify.EventRegisterStore)
	}
}

func TestSendDeliversNotification(t *testing.T) {
	srv := newSocketServer(t)

	ch, err := notify.Dial(context.Background(), srv.url(), "u1", "s1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()
	srv.next(t) // registerUser
	srv.next(t) // registerStore

	ch.Send(model.NotificationEvent{
		UserID:  "customer-1",
		Title:   "Cập nhật đơn hàng",
		Message: "Đơn hàng của bạn: Đã xác nhận",
		OrderID: "o1",
		Type:    enum.NotificationTypeOrder,
	})

	ev := srv.next(t)
	if ev.Event != notify.EventSendNotification {
		t.Fatalf("event: got %s, want %s", ev.Event, notify.EventSendNotification)
	}
	var n model.NotificationEvent
	if err := json.Unmarshal(ev.Payload, &n); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if n.UserID != "customer-1" || n.OrderID != "o1" || n.Type != enum.NotificationTypeOrder {
		t.Errorf("notification payload: %+v", n)
	}
}

func TestInboundEventsReachSubscribers(t *testing.T) {
	srv := newSocketServer(t)

	ch, err := notify.Dial(context.Background(), srv.url(), "u1", "s1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	got := make(chan notify.Event, 1)
	unsubscribe := ch.Subscribe(func(ev notify.Event) {
		got <- ev
	})

	conn := <-srv.conns
	msg := `{"event":"newNotification","payload":{"_id":"n1","userId":"u1","title":"T","message":"m","type":"general","read":false}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	select {
	case ev := <-got:
		if ev.Event != notify.EventNewNotification {
			t.Errorf("event: got %s", ev.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the event")
	}

	// After unsubscribing nothing more is delivered.
	unsubscribe()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("server write: %v", err)
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected delivery after unsubscribe: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInboundFeedsInbox(t *testing.T) {
	srv := newSocketServer(t)

	ch, err := notify.Dial(context.Background(), srv.url(), "u1", "s1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	in := notify.NewInbox()
	ch.Subscribe(in.Apply)

	conn := <-srv.conns
	msg := `{"event":"getAllNotifications","payload":[{"_id":"n1","userId":"u1","title":"A","message":"m","type":"general","read":false}]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(in.List()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("inbox never received the snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := in.List()[0].ID; got != "n1" {
		t.Errorf("inbox entry: got %s, want n1", got)
	}
}
