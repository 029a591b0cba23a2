package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giftology/radar/internal/api"
	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/pkg/sdk"
)

func newHandler() *api.Handler {
	client := sdk.New(engine.NewMemStore(nil, nil), sdk.WithBaseURL("http://127.0.0.1:1"))
	return api.NewHandler(client, nil)
}

func TestEngineRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewEngine(newHandler(), nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/contacts", http.StatusUnauthorized},
		{"GET", "/api/session", http.StatusOK},
		{"OPTIONS", "/api/contacts", http.StatusNoContent},
		{"GET", "/api/nope", http.StatusNotFound},
		{"GET", "/elsewhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s %s: missing CORS header", tt.method, tt.path)
		}
	}
}

func TestServer_ListenAndStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New("127.0.0.1:0", newHandler(), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Listen() }()

	var addr string
	for i := 0; i < 40; i++ {
		time.Sleep(25 * time.Millisecond)
		if addr = s.Addr(); addr != "" {
			break
		}
	}
	if addr == "" {
		t.Fatalf("Server did not start in time")
	}

	resp, err := http.Get("http://" + addr + "/api/session")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Listen returned %v after Stop", err)
	}
}
