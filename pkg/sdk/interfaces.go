package sdk

import (
	"context"
	"time"

	"github.com/giftology/radar/pkg/schema"
)

// SessionStore holds the device identity, the auth code and any pending
// login between requests. Implementations live in internal/engine.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context, keys ...string) error
}

// --- Functional Interfaces (Interface Segregation) ---

// DashboardReader loads the dashboard and the DOV date lists.
type DashboardReader interface {
	Dashboard(ctx context.Context) (*Response[schema.DashboardMetrics], error)
	DOVDateList(ctx context.Context) (*Response[schema.DOVDateList], error)
}

// TaskService reads and completes tasks.
type TaskService interface {
	TaskList(ctx context.Context) (*Response[[]schema.Task], error)
	Task(ctx context.Context, serial int) (*Response[schema.Task], error)
	UpdateTask(ctx context.Context, serial, status int) (*Envelope, error)
}

// ContactReader reads contacts.
type ContactReader interface {
	ContactList(ctx context.Context) (*Response[[]schema.Contact], error)
	Contact(ctx context.Context, serial int) (*Response[schema.Contact], error)
}

// AccountService covers the signed-in user's profile, help and feedback.
type AccountService interface {
	UserInfo(ctx context.Context) (*Response[schema.UserInfo], error)
	Help(ctx context.Context, id string) (*Response[schema.Help], error)
	UpdateFeedback(ctx context.Context, f schema.Feedback) (*Envelope, error)
	ResetPassword(ctx context.Context, email string) (*Envelope, error)
}

// Authenticator drives the login and verification exchange.
type Authenticator interface {
	AuthorizeUser(ctx context.Context, req LoginRequest) (*Envelope, error)
	AuthorizeDeviceID(ctx context.Context, req VerifyRequest) (*Envelope, error)
	Authorized(ctx context.Context) bool
	Logout(ctx context.Context) error
}

// CRMSetup runs the CRM integration setup.
type CRMSetup interface {
	RunSetup(ctx context.Context) (*schema.SetupResult, error)
}

// --- Composite Interfaces ---

// RadarService is everything the screens and handlers need from the client.
type RadarService interface {
	DashboardReader
	TaskService
	ContactReader
	AccountService
	Authenticator
	CRMSetup
}

var _ RadarService = (*Client)(nil)
