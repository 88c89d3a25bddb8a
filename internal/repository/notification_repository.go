// This file defines the Notification model and repository methods for the
// append-only notification feed. Rows are never updated or deleted by the
// service; the read side lists the newest entries for clients.
package repository

import (
	"context"
	"database/sql"
	"time"
)

// Notification mirrors the 'notifications' table.
type Notification struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created"`
}

// NotificationRepo manages persistence for notifications.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo with the given DB handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create appends a notification row and assigns the generated ID back to
// the struct.
func (r *NotificationRepo) Create(ctx context.Context, n *Notification) error {
	const q = `INSERT INTO notifications (type, title, message, username) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.Type, n.Title, n.Message, n.Username)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListRecent returns up to limit notifications, newest first.
func (r *NotificationRepo) ListRecent(ctx context.Context, limit int) ([]Notification, error) {
	const q = `SELECT id, type, title, message, username, created_at
	           FROM notifications
	           ORDER BY created_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Username, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
