package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/giftology/radar/internal/vault"
)

// SealedStore encrypts values before they reach the wrapped store and
// decrypts them on the way out, so the auth code and pending credentials are
// never at rest in clear text.
type SealedStore struct {
	inner     Store
	masterKey []byte
}

// NewSealedStore wraps inner with AES-GCM sealing under masterKey (32 bytes).
func NewSealedStore(inner Store, masterKey []byte) *SealedStore {
	return &SealedStore{inner: inner, masterKey: masterKey}
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := vault.Open(sealed, s.masterKey)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	sealed, err := vault.Seal(value, s.masterKey)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed, ttl)
}

func (s *SealedStore) Clear(ctx context.Context, keys ...string) error {
	return s.inner.Clear(ctx, keys...)
}

// Entries returns the decrypted entries. Entries that fail to open (sealed
// under another key) are skipped.
func (s *SealedStore) Entries(ctx context.Context) (map[string]Entry, error) {
	sealed, err := s.inner.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(sealed))
	for k, e := range sealed {
		plain, err := vault.Open(e.Value, s.masterKey)
		if err != nil {
			continue
		}
		e.Value = plain
		out[k] = e
	}
	return out, nil
}
