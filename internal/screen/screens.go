package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftology/radar/pkg/schema"
	"github.com/giftology/radar/pkg/sdk"
)

// Screen names.
const (
	NameDashboard = "dashboard"
	NameTasks     = "tasks"
	NameDOV       = "dov"
	NameContacts  = "contacts"
	NameProfile   = "profile"
)

func NewDashboard(svc sdk.DashboardReader, log *zap.Logger) *View[schema.DashboardMetrics] {
	return NewView(Spec[schema.DashboardMetrics]{
		Name:        NameDashboard,
		EmptyNotice: "No dashboard data yet",
		FailureText: "Unable to load dashboard",
		Empty:       dashboardEmpty,
	}, svc.Dashboard, log)
}

func dashboardEmpty(d schema.DashboardMetrics) bool {
	return len(d.ReferralPartners) == 0 &&
		len(d.RunawayRelationships) == 0 &&
		len(d.RecentPartners) == 0 &&
		len(d.Tasks) == 0 &&
		d.DOVCounts == (schema.DOVCounts{}) &&
		d.Outcomes == (schema.Outcomes{}) &&
		d.Revenue == 0
}

func NewTasks(svc sdk.TaskService, log *zap.Logger) *View[[]schema.Task] {
	return NewView(Spec[[]schema.Task]{
		Name:        NameTasks,
		EmptyNotice: "No tasks found",
		FailureText: "Unable to load tasks",
		Empty:       func(ts []schema.Task) bool { return len(ts) == 0 },
	}, svc.TaskList, log)
}

// CompleteTask marks serial done and reloads the task list.
func CompleteTask(ctx context.Context, v *View[[]schema.Task], svc sdk.TaskService, serial int) (State[[]schema.Task], error) {
	return v.Perform(ctx, func(ctx context.Context) (*sdk.Envelope, error) {
		return svc.UpdateTask(ctx, serial, schema.TaskStatusDone)
	})
}

func NewDOV(svc sdk.DashboardReader, log *zap.Logger) *View[schema.DOVDateList] {
	return NewView(Spec[schema.DOVDateList]{
		Name:        NameDOV,
		EmptyNotice: "No dates found",
		FailureText: "Unable to load dates",
		Empty: func(d schema.DOVDateList) bool {
			return len(d.Harmless) == 0 && len(d.Greenlight) == 0 && len(d.Clarity) == 0
		},
	}, svc.DOVDateList, log)
}

func NewContacts(svc sdk.ContactReader, log *zap.Logger) *View[[]schema.Contact] {
	return NewView(Spec[[]schema.Contact]{
		Name:        NameContacts,
		EmptyNotice: "No contacts found",
		FailureText: "Unable to load contacts",
		Empty:       func(cs []schema.Contact) bool { return len(cs) == 0 },
	}, svc.ContactList, log)
}

func NewProfile(svc sdk.AccountService, log *zap.Logger) *View[schema.UserInfo] {
	return NewView(Spec[schema.UserInfo]{
		Name:        NameProfile,
		FailureText: "Unable to load your profile",
		Empty:       func(u schema.UserInfo) bool { return u == (schema.UserInfo{}) },
	}, svc.UserInfo, log)
}
