package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftology/radar/internal/vault"
)

func TestMemStore_GetSetClear(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(nil, nil)

	if err := ms.Set(ctx, KeyAuthCode, "AC123", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := ms.Get(ctx, KeyAuthCode)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "AC123" {
		t.Errorf("Expected AC123, got %v", got)
	}

	if _, err := ms.Get(ctx, "non-existent"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := ms.Clear(ctx, KeyAuthCode, "never-set"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := ms.Get(ctx, KeyAuthCode); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound after clear, got %v", err)
	}
}

func TestMemStore_Expiry(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(nil, nil)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ms.now = func() time.Time { return now }

	require.NoError(t, ms.Set(ctx, KeyPendingLogin, "creds", 30*time.Minute))
	require.NoError(t, ms.Set(ctx, KeyDeviceID, "dev", 0))

	now = now.Add(29 * time.Minute)
	_, err := ms.Get(ctx, KeyPendingLogin)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = ms.Get(ctx, KeyPendingLogin)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	entries, err := ms.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, KeyDeviceID)
}

func TestPersistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "radar-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	p, err := NewPersistence(tmpDir)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	// A fresh directory is an empty session.
	data, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, data)

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	err = p.Save(map[string]Entry{
		KeyDeviceID: {Value: "dev-1"},
		KeyAuthCode: {Value: "AC", ExpiresAt: expires},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(p.Path())
	if os.IsNotExist(err) {
		t.Fatal("Session file was not created")
	}
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err = p.Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-1", data[KeyDeviceID].Value)
	assert.True(t, data[KeyDeviceID].ExpiresAt.IsZero())
	assert.True(t, expires.Equal(data[KeyAuthCode].ExpiresAt))
}

func TestMemStore_WaitReportsSaveFailure(t *testing.T) {
	ctx := context.Background()
	p, err := NewPersistence(t.TempDir())
	require.NoError(t, err)

	// A non-empty directory where the session file belongs makes the rename fail.
	blocker := p.Path() + "/keep"
	require.NoError(t, os.MkdirAll(blocker, 0o700))

	ms := NewMemStore(nil, p)
	require.NoError(t, ms.Set(ctx, KeyAuthCode, "AC-1", 0))
	err = ms.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")

	require.NoError(t, os.RemoveAll(p.Path()))
	require.NoError(t, ms.Set(ctx, KeyAuthCode, "AC-2", 0))
	require.NoError(t, ms.Wait())

	loaded, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, "AC-2", loaded[KeyAuthCode].Value)
}

func TestMemStore_Persistence(t *testing.T) {
	ctx := context.Background()
	tmpDir, err := os.MkdirTemp("", "radar-persistence-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	p, _ := NewPersistence(tmpDir)
	ms := NewMemStore(nil, p)

	ms.Set(ctx, KeyDeviceID, "dev-2", 0)
	ms.Set(ctx, KeyAuthCode, "AC-2", time.Hour)
	require.NoError(t, ms.Wait())

	loaded, err := p.Load()
	require.NoError(t, err)

	ms2 := NewMemStore(loaded, p)
	got, err := ms2.Get(ctx, KeyAuthCode)
	require.NoError(t, err)
	assert.Equal(t, "AC-2", got)

	ms2.Clear(ctx, KeyAuthCode)
	require.NoError(t, ms2.Wait())

	loaded, err = p.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded, KeyAuthCode)
	assert.Contains(t, loaded, KeyDeviceID)
}

func TestMemStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(nil, nil)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			ms.Set(ctx, key, "v", 0)
			ms.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	entries, _ := ms.Entries(ctx)
	assert.Len(t, entries, 100)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "")
	t.Cleanup(func() {
		store.Close()
		mr.Close()
	})
	return mr, store
}

func TestRedisStore_GetSetClear(t *testing.T) {
	ctx := context.Background()
	mr, store := newRedis(t)

	require.NoError(t, store.Set(ctx, KeyAuthCode, "AC-r", 0))
	assert.True(t, mr.Exists(DefaultRedisPrefix+KeyAuthCode))

	got, err := store.Get(ctx, KeyAuthCode)
	require.NoError(t, err)
	assert.Equal(t, "AC-r", got)

	require.NoError(t, store.Clear(ctx, KeyAuthCode))
	_, err = store.Get(ctx, KeyAuthCode)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, store.Clear(ctx))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, store := newRedis(t)

	require.NoError(t, store.Set(ctx, KeyPendingLogin, "creds", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, KeyPendingLogin)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_Entries(t *testing.T) {
	ctx := context.Background()
	mr, store := newRedis(t)

	require.NoError(t, store.Set(ctx, KeyDeviceID, "dev", 0))
	require.NoError(t, store.Set(ctx, KeyAuthCode, "AC", time.Hour))
	require.NoError(t, mr.Set("unrelated", "x"))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[KeyDeviceID].ExpiresAt.IsZero())
	assert.False(t, entries[KeyAuthCode].ExpiresAt.IsZero())
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestMigrate_FileToRedis(t *testing.T) {
	ctx := context.Background()
	_, dst := newRedis(t)

	src := NewMemStore(nil, nil)
	src.Set(ctx, KeyDeviceID, "dev", 0)
	src.Set(ctx, KeyAuthCode, "AC", 24*time.Hour)

	n, err := Migrate(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.Get(ctx, KeyAuthCode)
	require.NoError(t, err)
	assert.Equal(t, "AC", got)

	entries, err := dst.Entries(ctx)
	require.NoError(t, err)
	assert.False(t, entries[KeyAuthCode].ExpiresAt.IsZero(), "remaining lifetime should carry over")
	assert.True(t, entries[KeyDeviceID].ExpiresAt.IsZero())
}

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	key, err := vault.DeriveKey("s3cret")
	require.NoError(t, err)

	inner := NewMemStore(nil, nil)
	sealed := NewSealedStore(inner, key)

	require.NoError(t, sealed.Set(ctx, KeyAuthCode, "AC-plain", 0))

	raw, err := inner.Get(ctx, KeyAuthCode)
	require.NoError(t, err)
	assert.NotEqual(t, "AC-plain", raw)

	got, err := sealed.Get(ctx, KeyAuthCode)
	require.NoError(t, err)
	assert.Equal(t, "AC-plain", got)

	entries, err := sealed.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AC-plain", entries[KeyAuthCode].Value)

	// A value sealed under another key cannot be opened.
	other, _ := vault.DeriveKey("other")
	_, err = NewSealedStore(inner, other).Get(ctx, KeyAuthCode)
	assert.Error(t, err)

	_, err = sealed.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
