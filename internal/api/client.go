// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api calls the three endpoints of the Neurosynth term/study API:
// the term list, related terms for one term, and the boolean study query.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/neurosynth-explorer/internal/httputil"
	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

const acceptHeader = "application/json, text/plain;q=0.8, */*;q=0.5"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 32 << 20

// Client talks to the term/study API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	retrier   *httputil.Retrier
	log       *zap.Logger
}

// NewClient builds a Client from cfg. A nil logger disables logging.
func NewClient(cfg types.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := cfg.BaseURL
	if base == "" {
		base = types.DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: cfg.UserAgent,
		retrier: &httputil.Retrier{
			Client:     &http.Client{Timeout: cfg.Timeout},
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			Logger:     logger,
		},
		log: logger,
	}
}

// BaseURL returns the API origin the client calls.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchJSON GETs path (already escaped) and returns the body as JSON. A
// response whose Content-Type is not JSON is parsed anyway; if that fails
// the text is wrapped as {"raw": text}. Non-2xx responses return an
// *HTTPError.
func (c *Client) FetchJSON(ctx context.Context, path string) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-Request-ID", reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.log.With(zap.String("request_id", reqID), zap.String("path", path))
	start := time.Now()

	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", path, err)
	}
	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if !json.Valid(body) {
			return nil, fmt.Errorf("parsing response for %s: invalid JSON", path)
		}
		return body, nil
	}
	if json.Valid(body) {
		return body, nil
	}
	log.Debug("non-JSON body wrapped as raw text")
	wrapped, err := json.Marshal(map[string]string{"raw": string(body)})
	if err != nil {
		return nil, fmt.Errorf("wrapping response for %s: %w", path, err)
	}
	return wrapped, nil
}

// Terms returns every term known to the API.
func (c *Client) Terms(ctx context.Context) ([]string, error) {
	raw, err := c.FetchJSON(ctx, "/terms")
	if err != nil {
		return nil, err
	}
	return normalize.TermList(raw), nil
}

// RelatedPayload returns the decoded related-terms response for term.
func (c *Client) RelatedPayload(ctx context.Context, term string) (normalize.Payload, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return normalize.Payload{}, ErrEmptyTerm
	}
	raw, err := c.FetchJSON(ctx, "/terms/"+url.PathEscape(term))
	if err != nil {
		return normalize.Payload{}, err
	}
	p, err := normalize.DecodeRelated(raw)
	if err != nil {
		return normalize.Payload{}, fmt.Errorf("parsing related terms for %q: %w", term, err)
	}
	c.log.Debug("related terms", zap.String("term", term), zap.Stringer("shape", p.Shape))
	return p, nil
}

// Related returns the terms related to term, most similar first.
func (c *Client) Related(ctx context.Context, term string) ([]string, error) {
	p, err := c.RelatedPayload(ctx, term)
	if err != nil {
		return nil, err
	}
	return p.Ordered(), nil
}

// Studies validates and normalizes the boolean query q, runs it, and
// returns the matching studies in response order. An incomplete query
// returns an error wrapping query.ErrIncompleteQuery without a request.
func (c *Client) Studies(ctx context.Context, q string) ([]studies.Record, error) {
	prepared, err := query.Prepare(q)
	if err != nil {
		return nil, err
	}
	raw, err := c.FetchJSON(ctx, "/query/"+url.PathEscape(prepared)+"/studies")
	if err != nil {
		return nil, err
	}
	recs, err := studies.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing studies response: %w", err)
	}
	c.log.Debug("studies", zap.String("query", prepared), zap.Int("count", len(recs)))
	return recs, nil
}
