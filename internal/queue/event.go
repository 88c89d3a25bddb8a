// Package queue defines message payloads exchanged over the message broker
// and the publisher that emits them.
package queue

// NotificationCreatedEvent is published whenever a notification row is
// appended. It carries enough for downstream consumers (push fanout,
// activity digests) to act without querying the primary database.
type NotificationCreatedEvent struct {
	ID        uint64 `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}
