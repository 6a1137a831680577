// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/neurosynth-explorer/internal/studies"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// event is one recorded View call, flattened for comparison.
type event struct {
	Kind  string
	Panel Panel
	Text  string
	Items []string
	Total int
}

type fakeView struct {
	mu     sync.Mutex
	events []event
}

func (v *fakeView) add(e event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

func (v *fakeView) Loading(p Panel)            { v.add(event{Kind: "loading", Panel: p}) }
func (v *fakeView) Notice(p Panel, msg string) { v.add(event{Kind: "notice", Panel: p, Text: msg}) }
func (v *fakeView) Clear(p Panel)              { v.add(event{Kind: "clear", Panel: p}) }
func (v *fakeView) Error(p Panel, err error)   { v.add(event{Kind: "error", Panel: p, Text: err.Error()}) }
func (v *fakeView) Terms(terms []string) {
	v.add(event{Kind: "terms", Panel: PanelTerms, Items: terms})
}
func (v *fakeView) Related(term string, terms []string) {
	v.add(event{Kind: "related", Panel: PanelRelated, Text: term, Items: terms})
}
func (v *fakeView) Studies(shown []studies.Record, total int) {
	titles := make([]string, len(shown))
	for i, r := range shown {
		titles[i] = studies.FieldString(r, studies.TitleKeys...)
	}
	v.add(event{Kind: "studies", Panel: PanelStudies, Items: titles, Total: total})
}

func (v *fakeView) snapshot() []event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]event(nil), v.events...)
}

// last returns the most recent event of kind, or the zero event.
func (v *fakeView) last(kind string) event {
	evs := v.snapshot()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Kind == kind {
			return evs[i]
		}
	}
	return event{}
}

func (v *fakeView) count(kind string) int {
	n := 0
	for _, e := range v.snapshot() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// fakeSource answers from fixed data. When gate is set, each call blocks
// until gate returns a channel that is closed, or until ctx ends if
// honourCtx is set.
type fakeSource struct {
	mu        sync.Mutex
	calls     []string
	terms     []string
	related   map[string][]string
	studies   []studies.Record
	err       error
	gate      func(key string) <-chan struct{}
	honourCtx bool
}

func (s *fakeSource) wait(ctx context.Context, key string) error {
	s.mu.Lock()
	s.calls = append(s.calls, key)
	gate := s.gate
	s.mu.Unlock()
	if gate == nil {
		return nil
	}
	ch := gate(key)
	if !s.honourCtx {
		<-ch
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSource) Terms(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx, "terms"); err != nil {
		return nil, err
	}
	return s.terms, s.err
}

func (s *fakeSource) Related(ctx context.Context, term string) ([]string, error) {
	if err := s.wait(ctx, "related:"+term); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.related[term], nil
}

func (s *fakeSource) Studies(ctx context.Context, q string) ([]studies.Record, error) {
	if err := s.wait(ctx, "studies:"+q); err != nil {
		return nil, err
	}
	return s.studies, s.err
}

func (s *fakeSource) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newController(t *testing.T, src Source, debounce time.Duration) (*Controller, *fakeView) {
	t.Helper()
	view := &fakeView{}
	c := New(src, view, types.ExplorerConfig{Debounce: debounce, RequestTimeout: time.Second}, nil)
	t.Cleanup(c.Close)
	return c, view
}

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func TestLoadTermsAndFilter(t *testing.T) {
	src := &fakeSource{terms: []string{"amygdala", "fear", "Fear conditioning"}}
	c, view := newController(t, src, time.Hour)

	c.LoadTerms()
	require.Eventually(t, func() bool { return view.count("terms") == 1 }, waitFor, tick)
	assert.Equal(t, []string{"amygdala", "fear", "Fear conditioning"}, view.last("terms").Items)

	c.RelatedInput("FEAR")
	assert.Equal(t, []string{"fear", "Fear conditioning"}, view.last("terms").Items)
	assert.Equal(t, []string{"terms"}, src.callLog(), "filtering is local")
}

func TestRelatedInputDebounces(t *testing.T) {
	src := &fakeSource{related: map[string][]string{"amy": {"amygdala", "fear"}}}
	c, view := newController(t, src, 20*time.Millisecond)

	for _, v := range []string{"a", "am", "amy"} {
		c.RelatedInput(v)
	}
	require.Eventually(t, func() bool { return view.count("related") == 1 }, waitFor, tick)

	assert.Equal(t, []string{"related:amy"}, src.callLog())
	got := view.last("related")
	assert.Equal(t, "amy", got.Text)
	assert.Equal(t, []string{"amygdala", "fear"}, got.Items)
}

func TestRelatedInputBlankClears(t *testing.T) {
	src := &fakeSource{}
	c, view := newController(t, src, time.Millisecond)

	c.RelatedInput("   ")
	require.Eventually(t, func() bool { return view.count("clear") == 1 }, waitFor, tick)
	assert.Equal(t, PanelRelated, view.last("clear").Panel)
	assert.Empty(t, src.callLog())
}

func TestSubmitNotices(t *testing.T) {
	src := &fakeSource{}
	c, view := newController(t, src, time.Hour)

	c.SubmitRelated("  ")
	c.SubmitQuery("")
	c.SubmitQuery("pain AND")
	c.SubmitQuery("(pain")

	want := []event{
		{Kind: "notice", Panel: PanelRelated, Text: NoticeEnterTerm},
		{Kind: "notice", Panel: PanelStudies, Text: NoticeEnterQuery},
		{Kind: "notice", Panel: PanelStudies, Text: NoticeIncompleteQuery},
		{Kind: "notice", Panel: PanelStudies, Text: NoticeIncompleteQuery},
	}
	if diff := cmp.Diff(want, view.snapshot()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, src.callLog())
}

func TestQueryInputSkipsIncomplete(t *testing.T) {
	src := &fakeSource{studies: []studies.Record{{"title": "A"}}}
	c, view := newController(t, src, 10*time.Millisecond)

	c.QueryInput("pain OR")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, src.callLog())
	assert.Zero(t, view.count("notice"), "live input shows no notice")

	c.QueryInput("pain OR fear")
	require.Eventually(t, func() bool { return view.count("studies") == 1 }, waitFor, tick)
	assert.Equal(t, []string{"studies:pain OR fear"}, src.callLog())
}

func TestSubmitCancelsPendingTimer(t *testing.T) {
	src := &fakeSource{related: map[string][]string{"fear": {"anxiety"}}}
	c, view := newController(t, src, 30*time.Millisecond)

	c.RelatedInput("fea")
	c.SubmitRelated("fear")
	require.Eventually(t, func() bool { return view.count("related") == 1 }, waitFor, tick)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"related:fear"}, src.callLog())
}

func TestStaleResponseDiscarded(t *testing.T) {
	gates := map[string]chan struct{}{
		"related:slow": make(chan struct{}),
		"related:fast": make(chan struct{}),
	}
	src := &fakeSource{
		related: map[string][]string{"slow": {"old"}, "fast": {"new"}},
		gate:    func(key string) <-chan struct{} { return gates[key] },
	}
	c, view := newController(t, src, time.Hour)

	c.SubmitRelated("slow")
	require.Eventually(t, func() bool { return len(src.callLog()) == 1 }, waitFor, tick)
	c.SubmitRelated("fast")
	require.Eventually(t, func() bool { return len(src.callLog()) == 2 }, waitFor, tick)

	close(gates["related:fast"])
	require.Eventually(t, func() bool { return view.count("related") == 1 }, waitFor, tick)
	close(gates["related:slow"])

	c.Close()
	assert.Equal(t, 1, view.count("related"), "stale response must not render")
	assert.Equal(t, []string{"new"}, view.last("related").Items)
}

func TestRequestTimeout(t *testing.T) {
	src := &fakeSource{
		gate:      func(string) <-chan struct{} { return make(chan struct{}) },
		honourCtx: true,
	}
	view := &fakeView{}
	c := New(src, view, types.ExplorerConfig{Debounce: time.Hour, RequestTimeout: 20 * time.Millisecond}, nil)
	defer c.Close()

	c.SubmitQuery("pain")
	require.Eventually(t, func() bool { return view.count("error") == 1 }, waitFor, tick)
	assert.Equal(t, PanelStudies, view.last("error").Panel)
	assert.Equal(t, context.DeadlineExceeded.Error(), view.last("error").Text)
}

func TestSourceErrorRendered(t *testing.T) {
	src := &fakeSource{err: errors.New("HTTP 500 Internal Server Error\nboom")}
	c, view := newController(t, src, time.Hour)

	c.SubmitRelated("fear")
	require.Eventually(t, func() bool { return view.count("error") == 1 }, waitFor, tick)
	got := view.last("error")
	assert.Equal(t, PanelRelated, got.Panel)
	assert.Contains(t, got.Text, "boom")
}

func TestSetFilterRerendersWithoutRequest(t *testing.T) {
	src := &fakeSource{studies: []studies.Record{
		{"title": "A", "year": 2001.0},
		{"title": "B", "year": nil},
		{"title": "C", "year": 1999.0},
		{"title": "D", "year": 2010.0},
	}}
	c, view := newController(t, src, time.Hour)

	c.SubmitQuery("pain")
	require.Eventually(t, func() bool { return view.count("studies") == 1 }, waitFor, tick)
	assert.Equal(t, []string{"D", "A", "C", "B"}, view.last("studies").Items)

	from := 2000
	c.SetFilter(studies.Filter{From: &from, Sort: studies.Descending})
	got := view.last("studies")
	assert.Equal(t, []string{"D", "A"}, got.Items)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 2, view.count("studies"))
	assert.Len(t, src.callLog(), 1)

	c.SetFilter(studies.Filter{Sort: studies.Ascending})
	assert.Equal(t, []string{"C", "A", "D", "B"}, view.last("studies").Items)
}

func TestSetFilterBeforeStudies(t *testing.T) {
	src := &fakeSource{}
	c, view := newController(t, src, time.Hour)

	c.SetFilter(studies.Filter{Sort: studies.Ascending})
	assert.Zero(t, view.count("studies"))
	assert.Equal(t, studies.Ascending, c.Filter().Sort)
}

func TestAddRelatedToQuery(t *testing.T) {
	src := &fakeSource{studies: []studies.Record{{"title": "A"}}}
	c, view := newController(t, src, time.Hour)

	tests := []struct {
		current, term, want string
	}{
		{"", "fear", "fear"},
		{"pain", "fear", "pain AND fear"},
		{"pain OR ", "fear", "pain OR fear"},
	}
	for i, tt := range tests {
		got := c.AddRelatedToQuery(tt.current, tt.term)
		assert.Equal(t, tt.want, got)
		n := i + 1
		require.Eventually(t, func() bool { return view.count("studies") == n }, waitFor, tick)
	}
	assert.Equal(t, []string{"studies:fear", "studies:pain AND fear", "studies:pain OR fear"}, src.callLog())
}

func TestCloseStopsPendingWork(t *testing.T) {
	src := &fakeSource{
		gate:      func(string) <-chan struct{} { return make(chan struct{}) },
		honourCtx: true,
	}
	view := &fakeView{}
	c := New(src, view, types.ExplorerConfig{Debounce: 200 * time.Millisecond, RequestTimeout: time.Hour}, nil)

	c.QueryInput("memory")
	c.SubmitRelated("fear")
	require.Eventually(t, func() bool { return len(src.callLog()) == 1 }, waitFor, tick)
	c.Close()
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, []string{"related:fear"}, src.callLog(), "pending timer must not fire after Close")
	assert.Zero(t, view.count("error"), "cancelled work is not reported")

	c.SubmitQuery("pain")
	c.Close()
	assert.Len(t, src.callLog(), 1)
}

func TestPanelString(t *testing.T) {
	for p, want := range map[Panel]string{
		PanelTerms:   "terms",
		PanelRelated: "related",
		PanelStudies: "studies",
		Panel(9):     "unknown",
	} {
		assert.Equal(t, want, p.String(), fmt.Sprintf("panel %d", int(p)))
	}
}
