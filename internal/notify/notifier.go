// Package notify turns reconciliation events into persisted notification
// rows and broker messages. Persistence is authoritative: a row that fails
// to insert aborts the call, while broker publishing is best-effort and
// only logged on failure.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/moviecircle/backend/internal/queue"
	"github.com/moviecircle/backend/internal/reconcile"
	"github.com/moviecircle/backend/internal/repository"
)

// Store is the slice of NotificationRepo the notifier needs.
type Store interface {
	Create(ctx context.Context, n *repository.Notification) error
}

// PublishFunc sends one event to the broker.
type PublishFunc func(ctx context.Context, event queue.NotificationCreatedEvent) error

// Notifier appends notification records and fans them out.
type Notifier struct {
	store   Store
	publish PublishFunc
}

// New builds a Notifier. publish may be nil to disable broker fanout.
func New(store Store, publish PublishFunc) *Notifier {
	return &Notifier{store: store, publish: publish}
}

// Emit persists each event in order and publishes it. The first failed
// insert aborts and is returned; publish failures are logged and skipped
// so a broker outage never fails the request.
func (n *Notifier) Emit(ctx context.Context, events ...reconcile.Event) error {
	for _, ev := range events {
		rec := &repository.Notification{
			Type:     ev.Type,
			Title:    ev.Title,
			Message:  ev.Message,
			Username: ev.Username,
		}
		if err := n.store.Create(ctx, rec); err != nil {
			return err
		}
		if n.publish == nil {
			continue
		}
		if err := n.publish(ctx, queue.NotificationCreatedEvent{
			ID:        rec.ID,
			Type:      rec.Type,
			Title:     rec.Title,
			Message:   rec.Message,
			Username:  rec.Username,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("notify: publish %s for %s failed: %v", rec.Type, rec.Username, err)
		}
	}
	return nil
}
