package engine

import (
	"context"
	"fmt"
	"time"
)

// Migrate copies every live entry from src into dst, keeping each entry's
// remaining lifetime. It works in any direction: file to Redis when several
// processes need to share a session, Redis to file for an offline copy.
func Migrate(ctx context.Context, src Exporter, dst SessionStore) (int, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}

	now := time.Now()
	copied := 0
	for k, e := range entries {
		if e.Expired(now) {
			continue
		}
		if err := dst.Set(ctx, k, e.Value, e.TTL(now)); err != nil {
			return copied, fmt.Errorf("failed to set key %s in destination: %w", k, err)
		}
		copied++
	}
	return copied, nil
}
