package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/pkg/platform/middleware/requesttime"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(_ context.Context, _ Event) error {
	return s.err
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{
		UserID:  "user_1",
		Subject: "vc_1",
		Action:  string(EventCredentialIssued),
	})
	require.NoError(t, err)

	events, err := store.ListByUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(EventCredentialIssued), events[0].Action)
	assert.Equal(t, "vc_1", events[0].Subject)
}

func TestPublisher_TimestampFromRequestClock(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requesttime.WithTime(context.Background(), fixed)

	require.NoError(t, pub.Emit(ctx, Event{UserID: "user_1", Action: string(EventCredentialVerified)}))

	events, err := store.ListByUser(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisher_KeepsExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	explicit := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), Event{UserID: "u", Timestamp: explicit}))

	events, _ := store.ListByUser(context.Background(), "u")
	require.Len(t, events, 1)
	assert.Equal(t, explicit, events[0].Timestamp)
}

func TestPublisher_SyncPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("sink down")
	pub := NewPublisher(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), Event{UserID: "u"})
	assert.ErrorIs(t, err, storeErr)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), Event{UserID: "u", Action: string(EventDocumentRendered)}))
	}
	pub.Close()

	events, err := store.ListByUser(context.Background(), "u")
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_AsyncSwallowsStoreError(t *testing.T) {
	pub := NewPublisher(&failingStore{err: errors.New("sink down")}, WithAsyncBuffer(1))
	defer pub.Close()

	assert.NoError(t, pub.Emit(context.Background(), Event{UserID: "u"}))
}

func TestInMemoryStore_ListReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Append(context.Background(), Event{UserID: "u", Action: "a"}))

	events, _ := store.ListByUser(context.Background(), "u")
	events[0].Action = "mutated"

	again, _ := store.ListByUser(context.Background(), "u")
	assert.Equal(t, "a", again[0].Action)

	store.Clear()
	empty, _ := store.ListByUser(context.Background(), "u")
	assert.Empty(t, empty)
}
