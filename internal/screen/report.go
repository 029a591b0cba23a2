package screen

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/giftology/radar/pkg/schema"
	"github.com/giftology/radar/pkg/sdk"
)

// Report is the combined overview: every primary screen loaded at once plus
// a few totals derived from them.
type Report struct {
	Dashboard State[schema.DashboardMetrics] `json:"dashboard"`
	Tasks     State[[]schema.Task]           `json:"tasks"`
	Contacts  State[[]schema.Contact]        `json:"contacts"`
	DOV       State[schema.DOVDateList]      `json:"dov"`
	Summary   Summary                        `json:"summary"`
}

type Summary struct {
	Contacts       int     `json:"contacts"`
	OpenTasks      int     `json:"open_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	DOVTotal       float64 `json:"dov_total"`
	DOVDates       int     `json:"dov_dates"`
	Revenue        float64 `json:"revenue"`
}

// Unauthorized reports whether any part of the report needs a fresh login.
func (r *Report) Unauthorized() bool {
	return r.Dashboard.Unauthorized || r.Tasks.Unauthorized || r.Contacts.Unauthorized || r.DOV.Unauthorized
}

// LoadReport loads the four screens concurrently. An auth failure on any of
// them cancels the rest and is returned as sdk.ErrNotAuthorized alongside
// whatever was loaded. Other failures stay inside each screen's state.
func LoadReport(ctx context.Context, svc sdk.RadarService, log *zap.Logger) (*Report, error) {
	var r Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.Dashboard = NewDashboard(svc, log).Refresh(gctx)
		return authErr(r.Dashboard.Unauthorized)
	})
	g.Go(func() error {
		r.Tasks = NewTasks(svc, log).Refresh(gctx)
		return authErr(r.Tasks.Unauthorized)
	})
	g.Go(func() error {
		r.Contacts = NewContacts(svc, log).Refresh(gctx)
		return authErr(r.Contacts.Unauthorized)
	})
	g.Go(func() error {
		r.DOV = NewDOV(svc, log).Refresh(gctx)
		return authErr(r.DOV.Unauthorized)
	})
	err := g.Wait()

	r.Summary = summarize(&r)
	return &r, err
}

func authErr(unauthorized bool) error {
	if unauthorized {
		return sdk.ErrNotAuthorized
	}
	return nil
}

func summarize(r *Report) Summary {
	s := Summary{
		Contacts: len(r.Contacts.Data),
		DOVTotal: r.Dashboard.Data.DOVCounts.Total,
		Revenue:  r.Dashboard.Data.Revenue,
		DOVDates: len(r.DOV.Data.Harmless) + len(r.DOV.Data.Greenlight) + len(r.DOV.Data.Clarity),
	}
	for _, t := range r.Tasks.Data {
		if t.Completed() {
			s.CompletedTasks++
		} else {
			s.OpenTasks++
		}
	}
	return s
}
