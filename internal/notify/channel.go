// Package notify speaks the platform's socket channel: a persistent duplex
// websocket the console registers on once per session. Outbound dispatch is
// fire-and-forget: delivery is best-effort and retry is out of scope.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quanviet/store-console/internal/model"
)

// Wire event names on the channel.
const (
	EventRegisterUser     = "registerUser"
	EventRegisterStore    = "registerStore"
	EventSendNotification = "sendNotification"

	EventAllNotifications = "getAllNotifications"
	EventNewOrder         = "newOrderNotification"
	EventNewNotification  = "newNotification"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is the envelope every channel message travels in.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Handler receives inbound channel events.
type Handler func(ev Event)

// Channel is a live connection to the platform's notification socket.
// It lives for the whole authenticated session and is torn down on logout.
type Channel struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu   sync.Mutex
	subs map[int]Handler
	next int
}

// Dial connects the channel and registers the session's user and store so
// the platform routes their events here. Registration messages are queued
// before any send can happen.
func Dial(ctx context.Context, socketURL, userID, storeID string) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
		subs: make(map[int]Handler),
	}

	if userID != "" {
		c.enqueue(EventRegisterUser, map[string]string{"userId": userID})
	}
	if storeID != "" {
		c.enqueue(EventRegisterStore, map[string]string{"storeId": storeID})
	}

	go c.writePump()
	go c.readPump()
	return c, nil
}

// Subscribe adds an inbound event handler and returns its remover.
// Handlers run on the read goroutine and must not block.
func (c *Channel) Subscribe(fn Handler) func() {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Send dispatches a notification event to its target user. Fire-and-forget:
// a saturated or closed channel drops the event, failures are never
// surfaced to the acting user.
func (c *Channel) Send(ev model.NotificationEvent) {
	c.enqueue(EventSendNotification, ev)
}

// Close tears the channel down. Safe to call once, on logout/shutdown.
func (c *Channel) Close() {
	close(c.done)
	c.conn.Close()
}

func (c *Channel) enqueue(event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", event, err)
		return
	}
	msg, err := json.Marshal(Event{Event: event, Payload: raw})
	if err != nil {
		log.Printf("ERROR: marshal %s envelope: %v", event, err)
		return
	}
	select {
	case c.send <- msg:
	default:
		// Best effort only; drop rather than block the caller.
		log.Printf("notify: send buffer full, dropping %s", event)
	}
}

func (c *Channel) readPump() {
	defer c.conn.Close()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("notify: channel read: %v", err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Printf("notify: bad envelope: %v", err)
			continue
		}
		c.mu.Lock()
		handlers := make([]Handler, 0, len(c.subs))
		for _, fn := range c.subs {
			handlers = append(handlers, fn)
		}
		c.mu.Unlock()
		for _, fn := range handlers {
			fn(ev)
		}
	}
}

func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
