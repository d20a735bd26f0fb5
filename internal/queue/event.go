// Package queue defines message payloads exchanged over the message broker.
package queue

// FavoriteMarkedEvent is published every time a record is marked favorite.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type FavoriteMarkedEvent struct {
	Resource   string  `json:"resource"`
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	CustomName *string `json:"custom_name"`
	MarkedAt   string  `json:"marked_at"`
}
