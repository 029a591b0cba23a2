package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Doer is the subset of *http.Client the transport needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type fetchResult struct {
	body   []byte
	status int
	err    error
}

// fetch performs req under the client timeout and returns the body whatever
// the HTTP status. The request carries the deadline so a well-behaved Doer
// aborts on its own; the select on ctx.Done covers one that does not.
func (c *Client) fetch(ctx context.Context, endpoint string, req *http.Request) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req = req.WithContext(ctx)

	done := make(chan fetchResult, 1)
	go func() {
		resp, err := c.http.Do(req)
		if err != nil {
			done <- fetchResult{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		done <- fetchResult{body: body, status: resp.StatusCode, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.status, c.transportError(ctx, endpoint, r.err)
		}
		return r.body, r.status, nil
	case <-ctx.Done():
		return nil, 0, c.transportError(ctx, endpoint, ctx.Err())
	}
}

// transportError classifies err and fires the timeout handler for timeouts.
func (c *Client) transportError(ctx context.Context, endpoint string, err error) *TransportError {
	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	}

	te := &TransportError{Kind: kind, Endpoint: endpoint, Err: err}
	if kind == KindTimeout && c.onTimeout != nil {
		c.onTimeout(endpoint)
	}
	return te
}

func newGet(rawURL string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}
