package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/giftology/radar/pkg/schema"
)

// AuthorizeRedirectDelay is how long to show the authorization message before
// following the authorize URL.
const AuthorizeRedirectDelay = 2 * time.Second

var titlePattern = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

type setupRequest struct {
	SubscriberSerial int    `json:"subscriber_serial"`
	UserEmail        string `json:"useremail"`
}

type setupResponse struct {
	schema.SetupResult
	AuthorizeURL string `json:"authorize_url"`
}

// RunSetup looks up the signed-in user and runs the CRM setup for their
// subscription.
func (c *Client) RunSetup(ctx context.Context) (*schema.SetupResult, error) {
	info, err := c.UserInfo(ctx)
	if err != nil {
		return nil, err
	}
	if err := info.Err(); err != nil {
		return nil, err
	}
	return c.Setup(ctx, info.Data.Subscriber, info.Data.Email)
}

// Setup posts {subscriber_serial, useremail} to the CRM setup endpoint and
// waits for the result. A 401 carrying an authorize_url is returned as an
// *AuthorizationRequiredError.
func (c *Client) Setup(ctx context.Context, subscriber int, email string) (*schema.SetupResult, error) {
	payload, err := json.Marshal(setupRequest{SubscriberSerial: subscriber, UserEmail: email})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.setupURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build setup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("running crm setup", zap.Int("subscriber", subscriber))
	body, status, err := c.fetch(ctx, "Setup", req)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(body))
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		title := "Unknown HTML error"
		if m := titlePattern.FindStringSubmatch(text); m != nil {
			title = strings.TrimSpace(m[1])
		}
		return nil, fmt.Errorf("server returned HTML. Page title: %q", title)
	}

	var out setupResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON from server: %s", snippet(text, 300))
	}

	if status == http.StatusUnauthorized && out.AuthorizeURL != "" {
		msg := out.Message
		if msg == "" {
			msg = "Authorization required"
		}
		return nil, &AuthorizationRequiredError{URL: out.AuthorizeURL, Message: msg, Delay: AuthorizeRedirectDelay}
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("server error: %d %s. Response: %s", status, http.StatusText(status), snippet(text, 300))
	}

	if out.CreatedTags == nil {
		out.CreatedTags = []schema.Tag{}
	}
	return &out.SetupResult, nil
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
