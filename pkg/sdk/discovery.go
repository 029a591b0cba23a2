package sdk

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/giftology/radar/internal/config"
	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/internal/vault"
)

// OpenStore builds the session store the configuration asks for. The
// returned closer flushes pending writes and releases connections.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (engine.Store, func() error, error) {
	var (
		store  engine.Store
		closer = func() error { return nil }
	)

	switch cfg.Driver {
	case config.DriverMemory:
		store = engine.NewMemStore(nil, nil)

	case config.DriverRedis:
		client, err := engine.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rs := engine.NewRedisStore(client, "")
		store, closer = rs, rs.Close

	case config.DriverFile, "":
		p, err := engine.NewPersistence(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open session dir: %w", err)
		}
		data, err := p.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load session: %w", err)
		}
		ms := engine.NewMemStore(data, p)
		store = ms
		closer = ms.Wait

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if cfg.Secret != "" {
		key, err := vault.DeriveKey(cfg.Secret)
		if err != nil {
			closer()
			return nil, nil, err
		}
		store = engine.NewSealedStore(store, key)
	}
	return store, closer, nil
}

// NewFromConfig opens the configured store and returns a client over it.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*Client, func() error, error) {
	store, closer, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	base := []Option{
		WithHTTPClient(&http.Client{}),
		WithLogger(log),
		WithBaseURL(cfg.Service.BaseURL),
		WithSetupURL(cfg.Service.SetupURL),
		WithTimeout(cfg.Service.Timeout),
		WithLanguage(cfg.Service.Language, cfg.Service.MobileVersion),
		WithDeviceInfo(DeviceInfo{
			Type:    cfg.Service.DeviceType,
			Model:   cfg.Service.DeviceModel,
			Version: cfg.Service.DeviceVersion,
		}),
		WithAuthErrorNumbers(cfg.Service.AuthErrorNumbers...),
		WithSessionTTL(cfg.Store.SessionTTL, cfg.Store.PendingTTL),
		WithDebug(cfg.Debug),
	}
	return New(store, append(base, opts...)...), closer, nil
}
