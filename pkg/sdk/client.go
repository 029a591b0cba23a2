// Package sdk is the client for the Relationship Radar RRService backend.
//
// Every call is a signed GET: the request carries the device ID, a
// minute-resolution timestamp, Key = SHA1(DeviceID + Date + AC) and, once the
// device is verified, the auth code itself. Responses are XML envelopes that
// are normalized and then resolved into pkg/schema records.
package sdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giftology/radar/internal/logging"
	"github.com/giftology/radar/internal/xmltree"
)

const (
	DefaultBaseURL  = "https://radar.Giftologygroup.com/RRService"
	DefaultSetupURL = "https://radar.giftologygroup.com/api/KEAP/giftology_setup.php"
	DefaultTimeout  = 30 * time.Second

	defaultLanguage      = "EN"
	defaultMobileVersion = "1"
	defaultSessionTTL    = 30 * 24 * time.Hour
	defaultPendingTTL    = 30 * time.Minute
)

// DeviceInfo describes this client to AuthorizeUser.
type DeviceInfo struct {
	Type    string
	Model   string
	Version string
}

// Envelope is a normalized service response.
type Envelope struct {
	xmltree.Envelope
	Endpoint string `json:"endpoint"`
}

// Err returns a *ServiceError when the envelope reports failure.
func (e *Envelope) Err() error {
	if e == nil || e.Success {
		return nil
	}
	return &ServiceError{Endpoint: e.Endpoint, ErrorNumber: e.ErrorNumber, Message: e.Message}
}

// Response is an envelope plus the records resolved from its payload. Data
// is resolved even when the envelope reports failure, so partial results
// can still be shown.
type Response[T any] struct {
	Envelope
	Data T `json:"data"`
}

// Client talks to RRService. It is safe for concurrent use.
type Client struct {
	baseURL  string
	setupURL string
	http     Doer
	store    SessionStore
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	timeout       time.Duration
	onTimeout     func(endpoint string)
	device        DeviceInfo
	language      string
	mobileVersion string
	authErrors    map[int]bool
	sessionTTL    time.Duration
	pendingTTL    time.Duration
	debug         bool

	deviceMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(d Doer) Option          { return func(c *Client) { c.http = d } }
func WithLogger(l *zap.Logger) Option       { return func(c *Client) { c.log = l } }
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }
func WithBaseURL(u string) Option           { return func(c *Client) { c.baseURL = u } }
func WithSetupURL(u string) Option          { return func(c *Client) { c.setupURL = u } }
func WithDeviceInfo(d DeviceInfo) Option    { return func(c *Client) { c.device = d } }
func WithDebug(on bool) Option              { return func(c *Client) { c.debug = on } }

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTimeoutHandler registers fn to be called once for every request that
// times out. Requests are never retried.
func WithTimeoutHandler(fn func(endpoint string)) Option {
	return func(c *Client) { c.onTimeout = fn }
}

// WithLanguage sets the Language and MobileVersion sent on login.
func WithLanguage(language, mobileVersion string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
		if mobileVersion != "" {
			c.mobileVersion = mobileVersion
		}
	}
}

// WithAuthErrorNumbers lists envelope error numbers that mean the auth code
// was rejected. Such a response clears the session.
func WithAuthErrorNumbers(nums ...int) Option {
	return func(c *Client) {
		for _, n := range nums {
			c.authErrors[n] = true
		}
	}
}

// WithSessionTTL sets how long the auth code and a pending login are kept.
func WithSessionTTL(session, pending time.Duration) Option {
	return func(c *Client) {
		if session > 0 {
			c.sessionTTL = session
		}
		if pending > 0 {
			c.pendingTTL = pending
		}
	}
}

// New returns a client backed by store.
func New(store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		setupURL:      DefaultSetupURL,
		http:          http.DefaultClient,
		store:         store,
		log:           logging.Nop(),
		now:           time.Now,
		newID:         newDeviceID,
		timeout:       DefaultTimeout,
		device:        DeviceInfo{Type: "Web", Model: "Go", Version: "1.0"},
		language:      defaultLanguage,
		mobileVersion: defaultMobileVersion,
		authErrors:    make(map[int]bool),
		sessionTTL:    defaultSessionTTL,
		pendingTTL:    defaultPendingTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// callOptions tunes how call assembles the base parameters.
type callOptions struct {
	order          []string
	skipAC         bool
	encodeDeviceID bool
	// public endpoints may be called without an auth code.
	public bool
}

// call signs and sends fn with extra merged over the base parameters, then
// normalizes the response. A transport failure returns an unsuccessful
// envelope together with a *TransportError. An envelope failure is not an
// error unless its number is configured as an auth rejection.
func (c *Client) call(ctx context.Context, fn string, extra *Params, opts callOptions) (*Envelope, error) {
	deviceID, err := c.DeviceID(ctx)
	if err != nil {
		return nil, err
	}
	ac, err := c.AuthCode(ctx)
	if err != nil {
		return nil, err
	}
	if ac == "" && !opts.public {
		return nil, ErrNotAuthorized
	}
	if extra == nil {
		extra = NewParams()
	}

	stamp := FormatStamp(c.now())
	if v, ok := extra.Get("Date"); ok && provided(v) {
		stamp = v
	}
	key := Sign(deviceID, stamp, ac)
	if v, ok := extra.Get("Key"); ok && provided(v) {
		key = v
	}

	if _, ok := extra.Get("DeviceID"); !ok && opts.encodeDeviceID {
		deviceID = encodeComponent(deviceID)
	}
	params := NewParams("DeviceID", deviceID, "Date", stamp, "Key", key)
	if !opts.skipAC && ac != "" {
		params.Set("AC", ac)
	}
	params.Merge(extra)

	rawURL := BuildURL(c.baseURL, fn, params, opts.order)
	c.log.Debug("calling service",
		zap.String("endpoint", fn),
		zap.String("url", maskURL(rawURL)),
		zap.Bool("device_id", deviceID != ""),
		zap.Bool("auth_code", ac != ""))
	if c.debug {
		c.log.Debug("request params", zap.String("endpoint", fn), zap.Any("params", maskParams(params)))
	}

	req, err := newGet(rawURL)
	if err != nil {
		return nil, err
	}
	body, status, err := c.fetch(ctx, fn, req)
	if err != nil {
		c.log.Warn("service call failed", zap.String("endpoint", fn), zap.Error(err))
		env := &Envelope{Endpoint: fn}
		env.Payload = map[string]any{}
		var te *TransportError
		if errors.As(err, &te) {
			env.ErrorNumber = te.Code()
			env.Message = te.Message()
		}
		return env, err
	}

	env := &Envelope{Envelope: xmltree.Normalize(body), Endpoint: fn}
	c.log.Debug("service responded",
		zap.String("endpoint", fn),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Bool("success", env.Success),
		zap.Int("error_number", env.ErrorNumber))

	if !env.Success && c.authErrors[env.ErrorNumber] {
		c.log.Info("auth code rejected, clearing session", zap.String("endpoint", fn), zap.Int("error_number", env.ErrorNumber))
		if err := c.Logout(ctx); err != nil {
			c.log.Warn("failed to clear session", zap.Error(err))
		}
		return env, ErrNotAuthorized
	}
	return env, nil
}

// maskURL hides the secret parameters of a request URL: the password and
// auth code entirely, the key and device ID down to their ends.
func maskURL(u string) string {
	base, query, ok := strings.Cut(u, "?")
	if !ok {
		return u
	}
	parts := strings.Split(query, "&")
	for i, part := range parts {
		k, v, _ := strings.Cut(part, "=")
		parts[i] = k + "=" + maskValue(k, v)
	}
	return base + "?" + strings.Join(parts, "&")
}

var secretParams = map[string]bool{"Key": true, "DeviceID": true}

func maskParams(p *Params) map[string]string {
	out := make(map[string]string, len(p.keys))
	for _, k := range p.keys {
		out[k] = maskValue(k, p.vals[k])
	}
	return out
}

func maskValue(k, v string) string {
	switch {
	case k == "Password" || k == "AC":
		return "***"
	case secretParams[k]:
		return logging.Mask(v, 4)
	}
	return v
}
