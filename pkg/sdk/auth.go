package sdk

import (
	"context"
	"unicode/utf8"

	"github.com/giftology/radar/internal/xmltree"
)

var (
	authorizeUserOrder = []string{
		"DeviceID", "DeviceType", "DeviceModel", "DeviceVersion",
		"Date", "Key", "UserName", "Password", "Language", "MobileVersion",
	}
	authorizeDeviceOrder = []string{
		"DeviceID", "Date", "Key", "UserName", "Password",
		"Language", "MobileVersion", "SecurityCode",
	}
)

// deviceFieldMax is the longest DeviceModel/DeviceVersion the service accepts.
const deviceFieldMax = 20

// LoginRequest is the AuthorizeUser input. Empty fields take the client
// defaults.
type LoginRequest struct {
	UserName      string
	Password      string
	Language      string
	MobileVersion string
	Device        DeviceInfo
}

// VerifyRequest is the AuthorizeDeviceID input. DeviceID, Date and Key
// override the computed values when set.
type VerifyRequest struct {
	UserName      string
	Password      string
	SecurityCode  string
	Language      string
	MobileVersion string
	DeviceID      string
	Date          string
	Key           string
}

// AuthorizeUser starts a login. On success the service sends a security
// code to the user. Any Auth value in the response is stored.
func (c *Client) AuthorizeUser(ctx context.Context, req LoginRequest) (*Envelope, error) {
	dev := req.Device
	if dev.Type == "" {
		dev.Type = c.device.Type
	}
	if dev.Model == "" {
		dev.Model = c.device.Model
	}
	if dev.Version == "" {
		dev.Version = c.device.Version
	}

	p := NewParams(
		"DeviceType", dev.Type,
		"DeviceModel", truncate(dev.Model, deviceFieldMax),
		"DeviceVersion", truncate(dev.Version, deviceFieldMax),
		"UserName", req.UserName,
		"Password", req.Password,
		"Language", orDefault(req.Language, c.language),
		"MobileVersion", orDefault(req.MobileVersion, c.mobileVersion),
	)

	env, err := c.call(ctx, "AuthorizeUser", p, callOptions{order: authorizeUserOrder, public: true})
	if err != nil {
		return env, err
	}
	if env.Success {
		if ac := authFromLogin(env); ac != "" {
			if err := c.SetAuthCode(ctx, ac); err != nil {
				return env, err
			}
		}
	}
	return env, nil
}

// AuthorizeDeviceID exchanges the security code for an auth code. AC is never
// sent and the device ID is URL-encoded.
func (c *Client) AuthorizeDeviceID(ctx context.Context, req VerifyRequest) (*Envelope, error) {
	p := NewParams(
		"UserName", req.UserName,
		"Password", req.Password,
		"Language", orDefault(req.Language, c.language),
		"MobileVersion", orDefault(req.MobileVersion, c.mobileVersion),
		"SecurityCode", req.SecurityCode,
	)
	if provided(req.Date) {
		p.Set("Date", req.Date)
	}
	if provided(req.Key) {
		p.Set("Key", req.Key)
	}
	if req.DeviceID != "" {
		p.Set("DeviceID", encodeComponent(req.DeviceID))
	}

	return c.call(ctx, "AuthorizeDeviceID", p, callOptions{
		order:          authorizeDeviceOrder,
		skipAC:         true,
		encodeDeviceID: true,
		public:         true,
	})
}

// authFromLogin reads the Auth tag AuthorizeUser may return.
func authFromLogin(env *Envelope) string {
	for _, k := range []string{"Auth", "auth"} {
		if v := env.Payload[k]; v != nil {
			return xmltree.TextOf(v)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
