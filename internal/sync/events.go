package sync

import "time"

// FavoriteEvent is broadcast to connected clients whenever a user's
// favorites change, so other devices can refresh their lists.
type FavoriteEvent struct {
	Type       string    `json:"type"` // "favorite.update" or "favorite.delete"
	UserID     string    `json:"user_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title,omitempty"`
	At         time.Time `json:"at"`
}
