package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/spf13/viper"
)

// maxBody caps response bodies read into memory.
const maxBody = 16 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Status)
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Request describes an outgoing request. Body is resent on every attempt.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Fetch performs req with client, honoring the per-host rate limit and
// retrying transient failures with exponential back-off. Non-2xx responses
// are returned together with a *StatusError.
func Fetch(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	tries := viper.GetUint(key.NetworkRetries)
	if tries == 0 {
		tries = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	return backoff.Retry(ctx, func() (*Response, error) {
		attempt++
		resp, err := do(ctx, client, req)
		if err == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}

		status, ok := err.(*StatusError)
		if !ok {
			log.Debugf("%s %s attempt %d: %v", req.Method, req.URL, attempt, err)
			return nil, err
		}

		switch {
		case status.Status == http.StatusTooManyRequests:
			if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
			return nil, err
		case status.Status >= 500:
			return nil, err
		default:
			return resp, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(tries))
}

func do(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	httpReq, err := NewRequest(ctx, req)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	if err := Wait(ctx, httpReq.URL.Host); err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &StatusError{URL: req.URL, Status: resp.StatusCode}
	}
	return out, nil
}

// NewRequest builds an http.Request carrying the default medley headers.
func NewRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", constant.UserAgent)
	httpReq.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}
