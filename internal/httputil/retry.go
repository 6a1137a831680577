// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP retry policy used by the API client.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
	maxRetryAfter     = 2 * time.Minute
)

// Retrier executes HTTP requests and retries on HTTP 429 (Too Many
// Requests) with exponential backoff.
type Retrier struct {
	Client *http.Client

	// MaxRetries bounds the retries after the first attempt. Zero or less
	// uses the default (3).
	MaxRetries int

	// BaseDelay is the first backoff; it doubles each attempt. Zero uses
	// the default (2s).
	BaseDelay time.Duration

	Logger *zap.Logger
}

// Do sends req, retrying while the server answers 429. A Retry-After header
// given in seconds replaces the computed backoff, capped at two minutes. On
// each 429 the body is drained and closed before waiting. If ctx ends
// during a wait Do returns ctx.Err(). After the last retry the final 429
// response is returned for the caller to inspect.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := r.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := base << attempt
		if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			backoff = d
		}
		log.Info("rate limited, retrying",
			zap.String("url", req.URL.Redacted()),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func retryAfter(v string) (time.Duration, bool) {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
