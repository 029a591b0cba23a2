package sdk

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/internal/resolve"
)

// FlowState is a step of the login and verification sequence.
type FlowState int

const (
	StateUnauthenticated FlowState = iota
	StateCodeSent
	StateCodeSubmitted
	StateAuthorized
	StateRejected
)

func (s FlowState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateCodeSent:
		return "code-sent"
	case StateCodeSubmitted:
		return "code-submitted"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	}
	return fmt.Sprintf("FlowState(%d)", int(s))
}

var securityCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Flow drives unauthenticated → code-sent → code-submitted → authorized, or
// → rejected, which sends the user back to login.
type Flow struct {
	c     *Client
	mu    sync.Mutex
	state FlowState
}

// NewFlow resumes from whatever the session store holds: a pending login
// means a code was sent, a stored auth code without one means authorized.
func (c *Client) NewFlow(ctx context.Context) (*Flow, error) {
	f := &Flow{c: c}
	pending, err := c.pendingLogin(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case pending != nil:
		f.state = StateCodeSent
	case c.Authorized(ctx):
		f.state = StateAuthorized
	}
	return f, nil
}

func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Login sends the credentials. On success the credentials are kept for
// Verify and the flow moves to code-sent; a failure leaves the state alone
// and returns a *ServiceError carrying the service message.
func (f *Flow) Login(ctx context.Context, userName, password string) (*Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateCodeSubmitted {
		return nil, fmt.Errorf("%w: verification in progress", ErrFlowState)
	}

	env, err := f.c.AuthorizeUser(ctx, LoginRequest{UserName: userName, Password: password})
	if err != nil {
		return env, err
	}
	if !env.Success {
		if env.Message == "" {
			env.Message = "Unable to authorize employee"
		}
		return env, env.Err()
	}

	if err := f.c.savePendingLogin(ctx, pendingCredentials{UserName: userName, Password: password}); err != nil {
		return env, err
	}
	f.state = StateCodeSent
	f.c.log.Info("security code sent", zap.String("user", userName))
	return env, nil
}

// Verify submits the six-digit security code. Success stores the auth code
// and authorizes the session; rejection destroys the session.
func (f *Flow) Verify(ctx context.Context, code string) (*Envelope, error) {
	if !securityCodePattern.MatchString(code) {
		return nil, ErrInvalidSecurityCode
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateCodeSent {
		return nil, fmt.Errorf("%w: no security code has been sent", ErrFlowState)
	}
	creds, err := f.c.pendingLogin(ctx)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		f.state = StateUnauthenticated
		return nil, fmt.Errorf("%w: login expired, sign in again", ErrFlowState)
	}

	f.state = StateCodeSubmitted
	env, err := f.c.AuthorizeDeviceID(ctx, VerifyRequest{
		UserName:     creds.UserName,
		Password:     creds.Password,
		SecurityCode: code,
	})
	if err != nil {
		f.state = StateCodeSent
		return env, err
	}

	if !env.Success {
		if env.Message == "" {
			env.Message = "Verification failed"
		}
		if err := f.c.Logout(ctx); err != nil {
			f.c.log.Warn("failed to clear session", zap.Error(err))
		}
		f.state = StateRejected
		f.c.log.Info("verification rejected", zap.Int("error_number", env.ErrorNumber))
		return env, env.Err()
	}

	if ac := resolve.AuthCode(env.Payload); ac != "" {
		if err := f.c.SetAuthCode(ctx, ac); err != nil {
			return env, err
		}
	}
	if err := f.c.store.Clear(ctx, engine.KeyPendingLogin); err != nil {
		return env, fmt.Errorf("clear pending login: %w", err)
	}
	f.state = StateAuthorized
	f.c.log.Info("device verified")
	return env, nil
}
