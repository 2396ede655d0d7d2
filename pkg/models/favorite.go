package models

import "time"

// Favorite is a per-user saved event. The canonical event is snapshotted at
// save time so the favorites list renders without re-querying providers.
type Favorite struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Event     Event     `json:"event"`
	CreatedAt time.Time `json:"created_at"`
}
