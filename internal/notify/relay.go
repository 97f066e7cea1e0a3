package notify

import "encoding/json"

// TargetUser extracts the recipient user id of an inbound event. Snapshot
// events address the whole session, not a single user, and return false.
func TargetUser(ev Event) (string, bool) {
	switch ev.Event {
	case EventNewOrder:
		var wrapped struct {
			Notification struct {
				UserID string `json:"userId"`
			} `json:"notification"`
		}
		if err := json.Unmarshal(ev.Payload, &wrapped); err != nil {
			return "", false
		}
		return wrapped.Notification.UserID, wrapped.Notification.UserID != ""
	case EventNewNotification:
		var n struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(ev.Payload, &n); err != nil {
			return "", false
		}
		return n.UserID, n.UserID != ""
	}
	return "", false
}
