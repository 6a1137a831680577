// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller owns the interactive state shared by the terminal and
// web front ends: the cached term list, the last fetched studies, the year
// filter, and one request slot per panel.
//
// Every request slot carries a debounce timer, a sequence number and the
// cancel function of its in-flight request. Starting a request bumps the
// sequence and cancels the previous one, and completions whose sequence is
// no longer current are dropped, so an older response can never replace a
// newer one.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

// Notices shown in a panel instead of results.
const (
	NoticeEnterTerm       = "Enter a term"
	NoticeEnterQuery      = "Enter a query"
	NoticeIncompleteQuery = "Incomplete query (operator at end, unmatched quotes or parentheses)"
)

// Panel identifies one of the three result areas.
type Panel int

const (
	PanelTerms Panel = iota
	PanelRelated
	PanelStudies
)

func (p Panel) String() string {
	switch p {
	case PanelTerms:
		return "terms"
	case PanelRelated:
		return "related"
	case PanelStudies:
		return "studies"
	default:
		return "unknown"
	}
}

// View receives render instructions. Calls are made with the controller
// lock held, so a View must not call back into the Controller from inside
// a callback.
type View interface {
	Loading(p Panel)
	Notice(p Panel, msg string)
	Clear(p Panel)
	Error(p Panel, err error)
	Terms(terms []string)
	Related(term string, terms []string)
	// Studies receives the filtered, sorted records and the number of
	// records fetched before filtering.
	Studies(shown []studies.Record, total int)
}

// Source fetches data from the API. *api.Client satisfies it.
type Source interface {
	Terms(ctx context.Context) ([]string, error)
	Related(ctx context.Context, term string) ([]string, error)
	Studies(ctx context.Context, q string) ([]studies.Record, error)
}

type slot struct {
	panel  Panel
	timer  *time.Timer
	armed  uint64 // generation of the pending timer
	seq    uint64 // generation of the current request
	cancel context.CancelFunc
}

// Controller coordinates input events, requests and rendering.
type Controller struct {
	src      Source
	view     View
	debounce time.Duration
	timeout  time.Duration
	log      *zap.Logger

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool

	allTerms    []string
	termsLoaded bool
	termFilter  string

	studies     []studies.Record
	haveStudies bool
	filter      studies.Filter

	terms, related, study slot
}

// New returns a Controller rendering into view. Zero durations in cfg take
// the defaults from types.DefaultConfig. A nil logger disables logging.
func New(src Source, view View, cfg types.ExplorerConfig, logger *zap.Logger) *Controller {
	def := types.DefaultConfig().Explorer
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Controller{
		src:      src,
		view:     view,
		debounce: cfg.Debounce,
		timeout:  cfg.RequestTimeout,
		log:      logger,
		ctx:      ctx,
		stop:     stop,
		terms:    slot{panel: PanelTerms},
		related:  slot{panel: PanelRelated},
		study:    slot{panel: PanelStudies},
	}
}

// LoadTerms fetches the full term list and caches it for local filtering.
func (c *Controller) LoadTerms() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.start(&c.terms, func(ctx context.Context) (func(), error) {
		terms, err := c.src.Terms(ctx)
		return func() {
			c.allTerms = terms
			c.termsLoaded = true
			c.view.Terms(normalize.FilterTerms(terms, c.termFilter))
		}, err
	})
}

// RelatedInput handles a keystroke in the related-term input: it filters
// the cached term list immediately and schedules a related-terms lookup
// once input has been idle for the debounce period.
func (c *Controller) RelatedInput(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.termFilter = v
	if c.termsLoaded {
		c.view.Terms(normalize.FilterTerms(c.allTerms, v))
	}
	c.arm(&c.related, func() { c.relatedLocked(v, true) })
}

// SubmitRelated runs a related-terms lookup for v now.
func (c *Controller) SubmitRelated(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.disarm(&c.related)
	c.relatedLocked(v, false)
}

// SelectTerm runs a related-terms lookup for a term picked from the list.
func (c *Controller) SelectTerm(term string) {
	c.SubmitRelated(term)
}

// QueryInput handles a keystroke in the study query input. Once input has
// been idle for the debounce period the query runs if it is runnable.
func (c *Controller) QueryInput(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.arm(&c.study, func() {
		q := strings.TrimSpace(v)
		switch {
		case q == "":
			c.cancel(&c.study)
			c.view.Clear(PanelStudies)
		case query.IsRunnable(q):
			c.studiesLocked(q)
		}
	})
}

// SubmitQuery runs the study query v now, or shows a notice when it is
// empty or incomplete.
func (c *Controller) SubmitQuery(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.submitQueryLocked(v)
}

// AddRelatedToQuery appends term to current, runs the resulting query and
// returns it so the caller can update its input.
func (c *Controller) AddRelatedToQuery(current, term string) string {
	q := query.AppendTerm(current, term)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.submitQueryLocked(q)
	}
	return q
}

// SetFilter changes the year filter and re-renders the cached studies.
// It never issues a request.
func (c *Controller) SetFilter(f studies.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	if c.closed || !c.haveStudies {
		return
	}
	c.renderStudies()
}

// Filter returns the current year filter.
func (c *Controller) Filter() studies.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Close stops pending timers, cancels in-flight requests and waits for
// their goroutines to return. The Controller ignores all calls after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, s := range []*slot{&c.terms, &c.related, &c.study} {
		c.cancel(s)
	}
	c.stop()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) relatedLocked(v string, live bool) {
	term := strings.TrimSpace(v)
	if term == "" {
		c.cancel(&c.related)
		if live {
			c.view.Clear(PanelRelated)
		} else {
			c.view.Notice(PanelRelated, NoticeEnterTerm)
		}
		return
	}
	c.start(&c.related, func(ctx context.Context) (func(), error) {
		terms, err := c.src.Related(ctx, term)
		return func() { c.view.Related(term, terms) }, err
	})
}

func (c *Controller) submitQueryLocked(v string) {
	c.disarm(&c.study)
	q := strings.TrimSpace(v)
	switch {
	case q == "":
		c.cancel(&c.study)
		c.view.Notice(PanelStudies, NoticeEnterQuery)
	case !query.IsRunnable(q):
		c.cancel(&c.study)
		c.view.Notice(PanelStudies, NoticeIncompleteQuery)
	default:
		c.studiesLocked(q)
	}
}

func (c *Controller) studiesLocked(q string) {
	c.start(&c.study, func(ctx context.Context) (func(), error) {
		recs, err := c.src.Studies(ctx, q)
		return func() {
			c.studies = recs
			c.haveStudies = true
			c.renderStudies()
		}, err
	})
}

func (c *Controller) renderStudies() {
	shown := studies.Apply(c.studies, c.filter)
	c.view.Studies(shown, len(c.studies))
}

// start cancels whatever s is running and launches fetch in a new
// goroutine. fetch runs without the lock; the func it returns is applied
// with the lock held, and only if s has not moved on in the meantime.
func (c *Controller) start(s *slot, fetch func(ctx context.Context) (func(), error)) {
	c.disarm(s)
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	s.cancel = cancel
	c.view.Loading(s.panel)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		apply, err := fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || s.seq != seq {
			c.log.Debug("discarding stale response",
				zap.Stringer("panel", s.panel),
				zap.Uint64("seq", seq),
				zap.Uint64("current", s.seq))
			return
		}
		s.cancel = nil
		if err != nil {
			c.log.Debug("request failed", zap.Stringer("panel", s.panel), zap.Error(err))
			c.view.Error(s.panel, err)
			return
		}
		apply()
	}()
}

// cancel stops the pending timer of s and invalidates its in-flight request.
func (c *Controller) cancel(s *slot) {
	c.disarm(s)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

// arm (re)starts the debounce timer of s. fn runs with the lock held.
func (c *Controller) arm(s *slot, fn func()) {
	c.disarm(s)
	s.armed++
	gen := s.armed
	c.wg.Add(1)
	s.timer = time.AfterFunc(c.debounce, func() {
		defer c.wg.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || s.armed != gen {
			return
		}
		s.timer = nil
		fn()
	})
}

// disarm stops the pending timer of s. A timer that already fired sees the
// bumped generation and does nothing.
func (c *Controller) disarm(s *slot) {
	s.armed++
	if s.timer != nil && s.timer.Stop() {
		c.wg.Done()
	}
	s.timer = nil
}
