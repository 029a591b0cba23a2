package screen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/pkg/sdk"
)

var reportResponses = map[string]string{
	"GetDashboard": `<ResultInfo><Result>Success</Result><Selections>
		<TotalDOV>12</TotalDOV><ReferralRevenue>$1,500</ReferralRevenue></Selections></ResultInfo>`,
	"GetTaskList": `<ResultInfo><Result>Success</Result><Selections>
		<Task><Name>a</Name><Serial>1</Serial><Status>1</Status></Task>
		<Task><Name>b</Name><Serial>2</Serial><Status>0</Status></Task>
		<Task><Name>c</Name><Serial>3</Serial><Status>0</Status></Task></Selections></ResultInfo>`,
	"GetContactList": `<ResultInfo><Result>Success</Result><Selections/></ResultInfo>`,
	"GetDOVDateList": `<ResultInfo><Result>Success</Result><Selections>
		<Harmless><Name>A</Name></Harmless><Clarity><Name>B</Name></Clarity></Selections></ResultInfo>`,
}

func reportClient(t *testing.T, ac string) *sdk.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reportResponses[strings.TrimSuffix(path.Base(r.URL.Path), ".php")]))
	}))
	t.Cleanup(srv.Close)

	store := engine.NewMemStore(nil, nil)
	if ac != "" {
		store.Set(context.Background(), engine.KeyAuthCode, ac, 0)
	}
	return sdk.New(store, sdk.WithBaseURL(srv.URL), sdk.WithHTTPClient(srv.Client()))
}

func TestLoadReport(t *testing.T) {
	r, err := LoadReport(context.Background(), reportClient(t, "AC1"), nil)
	require.NoError(t, err)
	assert.False(t, r.Unauthorized())

	assert.Equal(t, Summary{
		Contacts:       0,
		OpenTasks:      2,
		CompletedTasks: 1,
		DOVTotal:       12,
		DOVDates:       2,
		Revenue:        1500,
	}, r.Summary)
	assert.Equal(t, "No contacts found", r.Contacts.Notice)
}

func TestLoadReportUnauthorized(t *testing.T) {
	r, err := LoadReport(context.Background(), reportClient(t, ""), nil)
	assert.ErrorIs(t, err, sdk.ErrNotAuthorized)
	assert.True(t, r.Unauthorized())
}
