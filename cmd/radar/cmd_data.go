package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/giftology/radar/internal/screen"
	"github.com/giftology/radar/pkg/schema"
	"github.com/giftology/radar/pkg/sdk"
)

var feedbackInput schema.Feedback

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show partners, relationships, DOV counts and revenue",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		return show(screen.NewDashboard(a.client, a.log).Refresh(ctx))
	}),
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contacts",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		return show(screen.NewContacts(a.client, a.log).Refresh(ctx))
	}),
}

var contactCmd = &cobra.Command{
	Use:   "contact <serial>",
	Short: "Show one contact",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, a *app, args []string) error {
		serial, err := parseSerial(args[0])
		if err != nil {
			return err
		}
		resp, err := a.client.Contact(ctx, serial)
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		return printJSON(resp.Data)
	}),
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		return show(screen.NewTasks(a.client, a.log).Refresh(ctx))
	}),
}

var taskCmd = &cobra.Command{
	Use:   "task <serial>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, a *app, args []string) error {
		serial, err := parseSerial(args[0])
		if err != nil {
			return err
		}
		resp, err := a.client.Task(ctx, serial)
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		return printJSON(resp.Data)
	}),
}

var completeCmd = &cobra.Command{
	Use:   "complete <serial>",
	Short: "Mark a task done and show the refreshed list",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, a *app, args []string) error {
		serial, err := parseSerial(args[0])
		if err != nil {
			return err
		}
		v := screen.NewTasks(a.client, a.log)
		defer v.Close()
		s, err := screen.CompleteTask(ctx, v, a.client, serial)
		if err != nil {
			return err
		}
		return show(s)
	}),
}

var dovCmd = &cobra.Command{
	Use:   "dov",
	Short: "List DOV dates by category",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		return show(screen.NewDOV(a.client, a.log).Refresh(ctx))
	}),
}

var helpTopicCmd = &cobra.Command{
	Use:   "guide <id>",
	Short: "Show a help entry",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, a *app, args []string) error {
		resp, err := a.client.Help(ctx, args[0])
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		return printJSON(resp.Data)
	}),
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send feedback",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		env, err := a.client.UpdateFeedback(ctx, feedbackInput)
		if err != nil {
			return err
		}
		if err := env.Err(); err != nil {
			return err
		}
		fmt.Println("Thanks, your feedback was sent.")
		return nil
	}),
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, a *app, args []string) error {
		env, err := a.client.ResetPassword(ctx, args[0])
		if err != nil {
			return err
		}
		if err := env.Err(); err != nil {
			return err
		}
		fmt.Println("If the address is registered, a reset email is on its way.")
		return nil
	}),
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the CRM setup for your subscription",
	Long: `Create the CRM tags for the signed-in user's subscription. When the
CRM has not been connected yet, the command prints the page to open and
authorize it, then run setup again.`,
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		res, err := a.client.RunSetup(ctx)
		var are *sdk.AuthorizationRequiredError
		if errors.As(err, &are) {
			fmt.Fprintln(os.Stderr, are.Message)
			select {
			case <-time.After(are.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			fmt.Println("Open this page to authorize, then run 'radar setup' again:")
			fmt.Println(are.URL)
			return nil
		}
		if err != nil {
			return err
		}
		return printJSON(res)
	}),
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Load every screen at once and print a summary",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		r, err := screen.LoadReport(ctx, a.client, a.log)
		if err != nil {
			return err
		}
		return printJSON(r)
	}),
}

// show prints a screen state. An expired session is an error so the exit
// status reflects it; a failed load still prints whatever data is kept.
func show[T any](s screen.State[T]) error {
	if s.Unauthorized {
		return errors.New(s.Error)
	}
	if s.Notice != "" {
		fmt.Fprintln(os.Stderr, s.Notice)
	}
	if s.Error != "" {
		fmt.Fprintln(os.Stderr, "Warning:", s.Error)
	}
	if !s.HasData {
		return nil
	}
	return printJSON(s.Data)
}

func parseSerial(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid serial %q", s)
	}
	return n, nil
}

func init() {
	f := feedbackCmd.Flags()
	f.StringVar(&feedbackInput.Name, "name", "", "Your name")
	f.StringVar(&feedbackInput.Email, "email", "", "Reply address")
	f.StringVar(&feedbackInput.Phone, "phone", "", "Phone number")
	f.StringVarP(&feedbackInput.Comment, "message", "m", "", "Feedback text")
	f.BoolVar(&feedbackInput.WantsResponse, "respond", false, "Ask for a response")
	f.BoolVar(&feedbackInput.WantsUpdates, "updates", false, "Subscribe to updates")
}
