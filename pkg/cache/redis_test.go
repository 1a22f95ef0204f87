package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis starts an in-memory Redis server for unit tests.
// Integration tests against a real Redis live in tests/integration.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil)
}

func TestRedisStore_SetAndGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	payload := []byte(`{"id":25,"name":"pikachu"}`)

	if err := store.Set(ctx, "pokemon_detail_25", payload, 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, found, err := store.Get(ctx, "pokemon_detail_25")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Expected hit, got miss")
	}
	if string(data) != string(payload) {
		t.Errorf("Data mismatch: got %s, want %s", data, payload)
	}
}

func TestRedisStore_Get_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	data, found, err := store.Get(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Expected miss for nonexistent key")
	}
	if data != nil {
		t.Errorf("Expected nil data on miss, got %s", data)
	}
}

func TestRedisStore_Get_Expired(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Set(ctx, "pokedex_summary_data", []byte(`[]`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Advance past the TTL
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "pokedex_summary_data")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Expected miss after TTL expired")
	}
}

func TestRedisStore_Set_NoExpiration(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Set(ctx, "types_data", []byte(`[]`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(48 * time.Hour)

	_, found, err := store.Get(ctx, "types_data")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Error("Entry with zero TTL should not expire")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Set(ctx, "generations_data", []byte(`[]`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := store.Delete(ctx, "generations_data"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, err := store.Get(ctx, "generations_data")
	if err != nil {
		t.Fatalf("Get after Delete failed: %v", err)
	}
	if found {
		t.Error("Expected miss after Delete")
	}
}

func TestRedisStore_Delete_MissingKey(t *testing.T) {
	store, _ := setupTestRedis(t)

	if err := store.Delete(context.Background(), "never_set"); err != nil {
		t.Errorf("Delete of missing key should not error, got %v", err)
	}
}

func TestRedisStore_Get_BackendError(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	mr.SetError("LOADING Redis is loading the dataset in memory")

	_, found, err := store.Get(ctx, "pokedex_summary_data")
	if err == nil {
		t.Error("Expected error when backend fails")
	}
	if found {
		t.Error("Backend failure must not report a hit")
	}
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	mr.SetError("ERR server unavailable")

	if err := store.Ping(ctx); err == nil {
		t.Error("Expected Ping to fail when backend errors")
	}
}
