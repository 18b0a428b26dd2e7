package keystore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/internal/identity/models"
	"touristid/internal/sentinel"
	"touristid/pkg/testutil"
)

func sampleKey(did string) models.StoredKey {
	return models.StoredKey{
		DID:        did,
		KeyType:    models.KeyTypeEd25519,
		PublicKey:  []byte{1, 2, 3},
		PrivateKey: []byte{4, 5, 6},
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryKeyStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Put(ctx, sampleKey("did:key:zA")))

	got, err := store.Get(ctx, "did:key:zA")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.PublicKey)

	// Returned records are copies.
	got.PrivateKey[0] = 99
	again, _ := store.Get(ctx, "did:key:zA")
	assert.Equal(t, byte(4), again.PrivateKey[0])
}

func TestMemoryKeyStore_PutIsInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Put(ctx, sampleKey("did:key:zA")))

	replacement := sampleKey("did:key:zA")
	replacement.PublicKey = []byte{9}
	err := store.Put(ctx, replacement)
	assert.ErrorIs(t, err, ErrKeyExists)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyExists)

	got, _ := store.Get(ctx, "did:key:zA")
	assert.Equal(t, []byte{1, 2, 3}, got.PublicKey)
}

func TestMemoryKeyStore_GetUnknown(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "did:key:zMissing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryKeyStore_ListSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	for _, did := range []string{"did:key:zC", "did:key:zA", "did:key:zB"} {
		require.NoError(t, store.Put(ctx, sampleKey(did)))
	}
	dids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"did:key:zA", "did:key:zB", "did:key:zC"}, dids)
}

func TestMemoryKeyStore_ConcurrentPutSameDID(t *testing.T) {
	store := NewMemory()
	result := testutil.RunConcurrent(50, func(int) error {
		return store.Put(context.Background(), sampleKey("did:key:zSame"))
	})
	assert.Equal(t, int32(1), result.Successes)
	assert.Equal(t, int32(49), result.Conflicts)
}

func TestMemoryKeyStore_ConcurrentDistinctDIDs(t *testing.T) {
	store := NewMemory()
	result := testutil.RunConcurrent(50, func(idx int) error {
		return store.Put(context.Background(), sampleKey(fmt.Sprintf("did:key:z%03d", idx)))
	})
	assert.Equal(t, int32(50), result.Successes)

	dids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, dids, 50)
}
