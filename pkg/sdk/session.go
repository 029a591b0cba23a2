package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/giftology/radar/internal/engine"
)

func newDeviceID() string {
	return uuid.NewString()
}

// DeviceID returns the stable device identifier, generating and storing one
// on first use. It is never cleared.
func (c *Client) DeviceID(ctx context.Context) (string, error) {
	c.deviceMu.Lock()
	defer c.deviceMu.Unlock()

	id, err := c.store.Get(ctx, engine.KeyDeviceID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return "", fmt.Errorf("load device id: %w", err)
	}

	id = c.newID()
	if err := c.store.Set(ctx, engine.KeyDeviceID, id, 0); err != nil {
		return "", fmt.Errorf("save device id: %w", err)
	}
	c.log.Debug("generated device id")
	return id, nil
}

// AuthCode returns the stored auth code, or "" when there is none.
func (c *Client) AuthCode(ctx context.Context) (string, error) {
	ac, err := c.store.Get(ctx, engine.KeyAuthCode)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load auth code: %w", err)
	}
	return ac, nil
}

// SetAuthCode stores ac for the session lifetime.
func (c *Client) SetAuthCode(ctx context.Context, ac string) error {
	if err := c.store.Set(ctx, engine.KeyAuthCode, ac, c.sessionTTL); err != nil {
		return fmt.Errorf("save auth code: %w", err)
	}
	return nil
}

// Authorized reports whether a verified session exists: an auth code is
// stored and no login is waiting for its security code.
func (c *Client) Authorized(ctx context.Context) bool {
	ac, err := c.AuthCode(ctx)
	if err != nil || ac == "" {
		return false
	}
	pending, err := c.pendingLogin(ctx)
	return err == nil && pending == nil
}

// Logout destroys the session. The device identity survives.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx, engine.KeyAuthCode, engine.KeyPendingLogin); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// pendingCredentials are the login credentials kept between AuthorizeUser
// and AuthorizeDeviceID, which needs them again.
type pendingCredentials struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

func (c *Client) savePendingLogin(ctx context.Context, creds pendingCredentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, engine.KeyPendingLogin, string(raw), c.pendingTTL); err != nil {
		return fmt.Errorf("save pending login: %w", err)
	}
	return nil
}

// pendingLogin returns nil, nil when no login is pending.
func (c *Client) pendingLogin(ctx context.Context) (*pendingCredentials, error) {
	raw, err := c.store.Get(ctx, engine.KeyPendingLogin)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending login: %w", err)
	}
	var creds pendingCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("decode pending login: %w", err)
	}
	return &creds, nil
}
