// Package screen carries the load and error policy each dashboard screen
// follows: one primary load in flight at a time, responses for a closed
// screen are dropped, and a failure never blanks data already shown.
package screen

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giftology/radar/pkg/sdk"
)

const (
	// SessionExpiredText is shown when the screen needs a fresh login.
	SessionExpiredText = "Your session has expired. Please sign in again."
	defaultFailureText = "Something went wrong. Please try again."
)

// Loader fetches a screen's primary data.
type Loader[T any] func(ctx context.Context) (*sdk.Response[T], error)

// Action is a mutation issued from a screen, such as completing a task.
type Action func(ctx context.Context) (*sdk.Envelope, error)

// Spec describes one screen.
type Spec[T any] struct {
	Name string
	// EmptyNotice is shown instead of an error when a load succeeds with
	// nothing in it.
	EmptyNotice string
	// FailureText is used when a failed envelope carries no message.
	FailureText string
	Empty       func(T) bool
}

// State is what a screen renders.
type State[T any] struct {
	Screen       string    `json:"screen"`
	Data         T         `json:"data"`
	HasData      bool      `json:"has_data"`
	Loading      bool      `json:"loading"`
	Notice       string    `json:"notice,omitempty"`
	Error        string    `json:"error,omitempty"`
	ErrorNumber  int       `json:"error_number,omitempty"`
	Unauthorized bool      `json:"unauthorized,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// View owns the state of one open screen.
type View[T any] struct {
	spec Spec[T]
	load Loader[T]
	log  *zap.Logger
	now  func() time.Time

	mu       sync.Mutex
	state    State[T]
	inflight bool
	done     chan struct{} // closed when the load in flight finishes
	closed   bool
}

// NewView opens a screen. Nothing is loaded until Refresh.
func NewView[T any](spec Spec[T], load Loader[T], log *zap.Logger) *View[T] {
	if spec.FailureText == "" {
		spec.FailureText = defaultFailureText
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &View[T]{
		spec:  spec,
		load:  load,
		log:   log.With(zap.String("screen", spec.Name)),
		now:   time.Now,
		state: State[T]{Screen: spec.Name},
	}
}

// State returns a copy of the current state.
func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Refresh runs the primary load and applies its outcome. While a load is in
// flight further calls return immediately with Loading set; they never start
// a second request. There is no retry.
func (v *View[T]) Refresh(ctx context.Context) State[T] {
	v.mu.Lock()
	if v.closed || v.inflight {
		s := v.state
		v.mu.Unlock()
		return s
	}
	return v.loadLocked(ctx)
}

// reload waits out any load in flight and then runs a fresh one, so the
// result reflects everything that happened before the call.
func (v *View[T]) reload(ctx context.Context) (State[T], error) {
	v.mu.Lock()
	for v.inflight && !v.closed {
		done := v.done
		v.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return v.State(), ctx.Err()
		}
		v.mu.Lock()
	}
	if v.closed {
		s := v.state
		v.mu.Unlock()
		return s, nil
	}
	return v.loadLocked(ctx), nil
}

// loadLocked is entered holding v.mu and returns with it released.
func (v *View[T]) loadLocked(ctx context.Context) State[T] {
	done := make(chan struct{})
	v.inflight = true
	v.done = done
	v.state.Loading = true
	v.mu.Unlock()

	resp, err := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	defer close(done)
	v.inflight = false
	v.state.Loading = false
	if v.closed {
		v.log.Debug("discarding response for closed screen")
		return v.state
	}
	v.apply(resp, err)
	return v.state
}

// Perform runs a mutation and, if the service accepted it, reloads the
// screen. A load already in flight may predate the mutation, so the reload
// waits for it and fetches again. A rejected mutation is reported in the
// state and returned.
func (v *View[T]) Perform(ctx context.Context, action Action) (State[T], error) {
	env, err := action(ctx)
	if err == nil && env != nil && !env.Success {
		err = env.Err()
	}
	if err != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		if !v.closed {
			v.applyError(err)
			if env != nil && !env.Success && env.Message != "" {
				v.state.Error = env.Message
			}
		}
		return v.state, err
	}
	return v.reload(ctx)
}

// Close dismisses the screen. A load still in flight is discarded when it
// returns.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// apply MUST be called while holding v.mu.
func (v *View[T]) apply(resp *sdk.Response[T], err error) {
	if err != nil {
		v.applyError(err)
		return
	}

	empty := v.spec.Empty != nil && v.spec.Empty(resp.Data)
	v.state.Unauthorized = false

	if resp.Success {
		v.state.Data = resp.Data
		v.state.HasData = true
		v.state.Error = ""
		v.state.ErrorNumber = 0
		v.state.Notice = ""
		if empty {
			v.state.Notice = v.spec.EmptyNotice
		}
		v.state.UpdatedAt = v.now()
		return
	}

	v.state.Error = resp.Message
	if v.state.Error == "" {
		v.state.Error = v.spec.FailureText
	}
	v.state.ErrorNumber = resp.ErrorNumber
	v.state.Notice = ""
	if !empty {
		v.state.Data = resp.Data
		v.state.HasData = true
	}
	v.log.Info("load failed", zap.Int("error_number", resp.ErrorNumber), zap.String("message", resp.Message))
}

// applyError MUST be called while holding v.mu.
func (v *View[T]) applyError(err error) {
	v.state.Notice = ""
	var te *sdk.TransportError
	switch {
	case errors.Is(err, sdk.ErrNotAuthorized):
		v.state.Unauthorized = true
		v.state.Error = SessionExpiredText
		v.state.ErrorNumber = 0
	case errors.As(err, &te):
		v.state.Unauthorized = false
		v.state.Error = te.Message()
		v.state.ErrorNumber = te.Code()
	default:
		v.state.Unauthorized = false
		var se *sdk.ServiceError
		if errors.As(err, &se) {
			v.state.ErrorNumber = se.ErrorNumber
		}
		v.state.Error = err.Error()
	}
	v.log.Info("screen error", zap.Error(err))
}
