// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

// studyCacheSize is how many query results sourceCache keeps.
const studyCacheSize = 16

// sourceCache wraps a controller.Source so the page can filter locally.
// The term list is fetched once; the studies of the most recent queries
// are kept so that year and sort changes do not query again. Concurrent
// fetches of the same key share one upstream request. Related terms are
// not cached. Failures are never cached.
type sourceCache struct {
	src   controller.Source
	group singleflight.Group
	limit int

	mu      sync.Mutex
	terms   []string
	studies map[string][]studies.Record
	order   []string
}

func newSourceCache(src controller.Source, limit int) *sourceCache {
	return &sourceCache{src: src, limit: limit, studies: make(map[string][]studies.Record)}
}

func (c *sourceCache) Terms(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	terms := c.terms
	c.mu.Unlock()
	if terms != nil {
		return terms, nil
	}

	v, err, _ := c.group.Do("terms", func() (any, error) {
		terms, err := c.src.Terms(ctx)
		if err != nil {
			return nil, err
		}
		if terms == nil {
			terms = []string{}
		}
		c.mu.Lock()
		c.terms = terms
		c.mu.Unlock()
		return terms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *sourceCache) Related(ctx context.Context, term string) ([]string, error) {
	return c.src.Related(ctx, term)
}

// Studies is keyed by the normalized query, so queries differing only in
// spacing or operator case share an entry.
func (c *sourceCache) Studies(ctx context.Context, q string) ([]studies.Record, error) {
	key := query.Normalize(q)

	c.mu.Lock()
	recs, ok := c.studies[key]
	c.mu.Unlock()
	if ok {
		return recs, nil
	}

	v, err, _ := c.group.Do("studies:"+key, func() (any, error) {
		recs, err := c.src.Studies(ctx, q)
		if err != nil {
			return nil, err
		}
		c.storeStudies(key, recs)
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]studies.Record), nil
}

// storeStudies adds an entry, evicting the oldest beyond the limit.
func (c *sourceCache) storeStudies(key string, recs []studies.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.studies[key]; !ok {
		c.order = append(c.order, key)
	}
	c.studies[key] = recs
	for len(c.order) > c.limit {
		delete(c.studies, c.order[0])
		c.order = c.order[1:]
	}
}
