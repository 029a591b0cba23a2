package sdk

import (
	"context"
	"regexp"
	"strconv"

	"github.com/giftology/radar/internal/resolve"
	"github.com/giftology/radar/pkg/schema"
)

// fetchAs calls fn and resolves its payload with conv.
func fetchAs[T any](ctx context.Context, c *Client, fn string, p *Params, conv func(map[string]any) T) (*Response[T], error) {
	env, err := c.call(ctx, fn, p, callOptions{})
	if err != nil {
		return nil, err
	}
	return &Response[T]{Envelope: *env, Data: conv(env.Payload)}, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Response[schema.DashboardMetrics], error) {
	return fetchAs(ctx, c, "GetDashboard", nil, resolve.Dashboard)
}

func (c *Client) TaskList(ctx context.Context) (*Response[[]schema.Task], error) {
	return fetchAs(ctx, c, "GetTaskList", NewParams("MobileVersion", c.mobileVersion), resolve.Tasks)
}

func (c *Client) Task(ctx context.Context, serial int) (*Response[schema.Task], error) {
	return fetchAs(ctx, c, "GetTask", NewParams("Task", strconv.Itoa(serial)), resolve.Task)
}

// UpdateTask sets a task's status (schema.TaskStatusDone marks it done).
func (c *Client) UpdateTask(ctx context.Context, serial, status int) (*Envelope, error) {
	return c.call(ctx, "UpdateTask", NewParams(
		"Task", strconv.Itoa(serial),
		"Status", strconv.Itoa(status),
	), callOptions{})
}

func (c *Client) DOVDateList(ctx context.Context) (*Response[schema.DOVDateList], error) {
	return fetchAs(ctx, c, "GetDOVDateList", nil, resolve.DOVDates)
}

func (c *Client) ContactList(ctx context.Context) (*Response[[]schema.Contact], error) {
	return fetchAs(ctx, c, "GetContactList", nil, resolve.Contacts)
}

func (c *Client) Contact(ctx context.Context, serial int) (*Response[schema.Contact], error) {
	return fetchAs(ctx, c, "GetContact", NewParams("Serial", strconv.Itoa(serial)), resolve.Contact)
}

func (c *Client) UserInfo(ctx context.Context) (*Response[schema.UserInfo], error) {
	return fetchAs(ctx, c, "GetUserInfo", nil, resolve.UserInfo)
}

func (c *Client) Help(ctx context.Context, id string) (*Response[schema.Help], error) {
	return fetchAs(ctx, c, "GetHelp", NewParams("HelpID", id), func(tree map[string]any) schema.Help {
		return resolve.Help(tree, id)
	})
}

// ResetPassword asks the service to email a password reset. It does not need
// a session.
func (c *Client) ResetPassword(ctx context.Context, email string) (*Envelope, error) {
	return c.call(ctx, "ResetPassword", NewParams("Email", email), callOptions{public: true})
}

var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// UpdateFeedback submits the feedback form and waits for the service to
// acknowledge it. A non-empty email must look like an address.
func (c *Client) UpdateFeedback(ctx context.Context, f schema.Feedback) (*Envelope, error) {
	if f.Email != "" && !emailPattern.MatchString(f.Email) {
		return nil, ErrInvalidEmail
	}
	return c.call(ctx, "UpdateFeedback", NewParams(
		"Name", f.Name,
		"Email", f.Email,
		"Phone", f.Phone,
		"Response", flag(f.WantsResponse),
		"Update", flag(f.WantsUpdates),
		"Comment", f.Comment,
	), callOptions{})
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
