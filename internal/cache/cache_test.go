package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"orderdesk/internal/checkout"
	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewClient(context.Background(), Options{Addr: addr}, zerolog.Nop())
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPrefillStore_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	restaurantID := uuid.New()
	store := NewPrefillStore(client, "device-"+uuid.NewString(), time.Minute, zerolog.Nop())

	p, err := store.Load(ctx, restaurantID)
	require.NoError(t, err)
	assert.Nil(t, p)

	want := checkout.Prefill{
		Contact: model.Contact{Name: "Anna Schmidt", Phone: "0301234567"},
		Address: model.Address{Street: "Torstraße", HouseNumber: "12", PostalCode: "10115", City: "Berlin"},
	}
	require.NoError(t, store.Save(ctx, restaurantID, want))

	got, err := store.Load(ctx, restaurantID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	other, err := store.Load(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestPrefillStore_DropsCorruptEntry(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	restaurantID := uuid.New()
	customerKey := "device-" + uuid.NewString()
	store := NewPrefillStore(client, customerKey, time.Minute, zerolog.Nop())

	key := prefillKeyPrefix + restaurantID.String() + ":" + customerKey
	require.NoError(t, client.Set(ctx, key, "{not json", time.Minute).Err())

	p, err := store.Load(ctx, restaurantID)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, int64(0), client.Exists(ctx, key).Val())
}

func TestRedisLocker(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	locker := NewRedisLocker(client)
	key := "order:draft:" + uuid.NewString()

	ok, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, key))

	ok, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, locker.Release(ctx, key))
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	locker := &localLocker{held: make(map[string]time.Time), clock: func() time.Time { return now }}

	ok, _ := locker.Acquire(ctx, "a", time.Minute)
	assert.True(t, ok)
	ok, _ = locker.Acquire(ctx, "a", time.Minute)
	assert.False(t, ok)
	ok, _ = locker.Acquire(ctx, "b", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = locker.Acquire(ctx, "a", time.Minute)
	assert.True(t, ok, "expired lock is reclaimed")

	require.NoError(t, locker.Release(ctx, "a"))
	ok, _ = locker.Acquire(ctx, "a", time.Minute)
	assert.True(t, ok)
}
