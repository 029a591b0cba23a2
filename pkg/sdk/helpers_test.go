package sdk_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/pkg/sdk"
)

var fixedNow = time.Date(2025, 3, 7, 9, 5, 30, 0, time.UTC)

const okEnvelope = `<ResultInfo><Result>Success</Result><ErrorNumber>0</ErrorNumber><Message/></ResultInfo>`

// fakeService is an RRService stand-in serving canned XML per function and
// recording the raw query of every request.
type fakeService struct {
	mu        sync.Mutex
	responses map[string]string
	status    map[string]int
	queries   map[string][]string
	srv       *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		responses: map[string]string{},
		status:    map[string]int{},
		queries:   map[string][]string{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn := strings.TrimSuffix(path.Base(r.URL.Path), ".php")
		f.mu.Lock()
		f.queries[fn] = append(f.queries[fn], r.URL.RawQuery)
		body, ok := f.responses[fn]
		status := f.status[fn]
		f.mu.Unlock()

		if !ok {
			body = `<ResultInfo><Result>Failure</Result><ErrorNumber>404</ErrorNumber><Message>unknown function</Message></ResultInfo>`
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) reply(fn, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[fn] = body
}

func (f *fakeService) replyStatus(fn string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[fn] = body
	f.status[fn] = status
}

func (f *fakeService) hits(fn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries[fn])
}

func (f *fakeService) lastQuery(fn string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queries[fn]
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

func (f *fakeService) baseURL() string {
	return f.srv.URL + "/RRService"
}

// queryKeys returns the parameter names of a raw query in order.
func queryKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, "&") {
		k, _, _ := strings.Cut(part, "=")
		keys = append(keys, k)
	}
	return keys
}

// queryValue returns the raw (undecoded) value of key.
func queryValue(raw, key string) string {
	for _, part := range strings.Split(raw, "&") {
		k, v, _ := strings.Cut(part, "=")
		if k == key {
			return v
		}
	}
	return ""
}

// newTestClient returns a client against f with a known device ID and clock.
// A non-empty ac seeds the session with an auth code.
func newTestClient(t *testing.T, f *fakeService, ac string, opts ...sdk.Option) (*sdk.Client, *engine.MemStore) {
	t.Helper()
	ctx := context.Background()
	store := engine.NewMemStore(nil, nil)
	require.NoError(t, store.Set(ctx, engine.KeyDeviceID, "dev-1", 0))
	if ac != "" {
		require.NoError(t, store.Set(ctx, engine.KeyAuthCode, ac, 0))
	}

	base := []sdk.Option{
		sdk.WithBaseURL(f.baseURL()),
		sdk.WithSetupURL(f.srv.URL + "/api/KEAP/giftology_setup.php"),
		sdk.WithClock(func() time.Time { return fixedNow }),
	}
	return sdk.New(store, append(base, opts...)...), store
}
