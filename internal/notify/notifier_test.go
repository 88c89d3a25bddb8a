package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecircle/backend/internal/queue"
	"github.com/moviecircle/backend/internal/reconcile"
	"github.com/moviecircle/backend/internal/repository"
)

type mockStore struct {
	created   []repository.Notification
	createErr error
}

func (m *mockStore) Create(_ context.Context, n *repository.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uint64(len(m.created) + 1)
	m.created = append(m.created, *n)
	return nil
}

func TestEmitPersistsAndPublishes(t *testing.T) {
	store := &mockStore{}
	var published []queue.NotificationCreatedEvent
	n := New(store, func(_ context.Context, ev queue.NotificationCreatedEvent) error {
		published = append(published, ev)
		return nil
	})

	err := n.Emit(context.Background(),
		reconcile.ShowCreated("anna", "Dune"),
		reconcile.VoteLiked("bob", "Dune", "anna"),
	)
	require.NoError(t, err)

	require.Len(t, store.created, 2)
	assert.Equal(t, reconcile.EventNewMovie, store.created[0].Type)
	assert.Equal(t, reconcile.EventLike, store.created[1].Type)

	require.Len(t, published, 2)
	assert.Equal(t, uint64(1), published[0].ID)
	assert.Equal(t, "anna has just added a new movie", published[0].Title)
}

func TestEmitStoreFailureAborts(t *testing.T) {
	store := &mockStore{createErr: errors.New("insert failed")}
	calls := 0
	n := New(store, func(_ context.Context, _ queue.NotificationCreatedEvent) error {
		calls++
		return nil
	})

	err := n.Emit(context.Background(), reconcile.ShowCreated("anna", "Dune"))
	require.Error(t, err)
	assert.Zero(t, calls, "nothing is published when the row insert fails")
}

func TestEmitPublishFailureIsIgnored(t *testing.T) {
	store := &mockStore{}
	n := New(store, func(_ context.Context, _ queue.NotificationCreatedEvent) error {
		return errors.New("broker down")
	})

	err := n.Emit(context.Background(), reconcile.ShowCreated("anna", "Dune"))
	assert.NoError(t, err, "broker failures never fail the request")
	assert.Len(t, store.created, 1)
}

func TestEmitNilPublisher(t *testing.T) {
	store := &mockStore{}
	n := New(store, nil)
	require.NoError(t, n.Emit(context.Background(), reconcile.ShowCreated("anna", "Dune")))
	assert.Len(t, store.created, 1)
}
