package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/quanviet/store-console/internal/config"
	"github.com/quanviet/store-console/internal/foodapi"
	"github.com/quanviet/store-console/internal/notify"
	"github.com/quanviet/store-console/internal/order"
	"github.com/quanviet/store-console/internal/router"
	"github.com/quanviet/store-console/internal/ws"
)

func main() {
	cfg := config.Load()

	api := foodapi.NewClient(cfg.FoodAPIURL, cfg.APIToken)

	hub := ws.NewHub()
	go hub.Run()

	// The socket channel is session-scoped: dialed once here, torn down
	// with the process. The console stays usable without it: transitions
	// still commit, only live events are lost.
	var notifier order.Notifier
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	channel, err := notify.Dial(ctx, cfg.SocketURL, "", cfg.StoreID)
	cancel()
	if err != nil {
		log.Printf("WARN: notification channel unavailable: %v", err)
	} else {
		notifier = channel
		defer channel.Close()

		inbox := notify.NewInbox()
		channel.Subscribe(inbox.Apply)

		// Relay inbound events into the target user's console sessions.
		channel.Subscribe(func(ev notify.Event) {
			if uid, ok := notify.TargetUser(ev); ok {
				hub.BroadcastToUser(uid, ws.Event{Type: ev.Event, Payload: ev.Payload})
			}
		})
	}

	r := router.New(cfg, api, hub, notifier)

	log.Printf("Starting store console on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
