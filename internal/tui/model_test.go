// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

type fakeController struct {
	calls   []string
	filters []studies.Filter
}

func (f *fakeController) LoadTerms()               { f.calls = append(f.calls, "load") }
func (f *fakeController) RelatedInput(v string)    { f.calls = append(f.calls, "related-input:"+v) }
func (f *fakeController) SubmitRelated(v string)   { f.calls = append(f.calls, "submit-related:"+v) }
func (f *fakeController) SelectTerm(term string)   { f.calls = append(f.calls, "select:"+term) }
func (f *fakeController) QueryInput(v string)      { f.calls = append(f.calls, "query-input:"+v) }
func (f *fakeController) SubmitQuery(v string)     { f.calls = append(f.calls, "submit-query:"+v) }
func (f *fakeController) SetFilter(s studies.Filter) {
	f.calls = append(f.calls, "filter")
	f.filters = append(f.filters, s)
}
func (f *fakeController) AddRelatedToQuery(current, term string) string {
	f.calls = append(f.calls, "add:"+term)
	if current == "" {
		return term
	}
	return current + " AND " + term
}

func newModel() (Model, *fakeController) {
	ctl := &fakeController{}
	return New(ctl, render.PlainStyles()), ctl
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func TestInitLoadsTerms(t *testing.T) {
	m, ctl := newModel()
	m.Init()
	assert.Equal(t, []string{"load"}, ctl.calls)
}

func TestTypingForwardsInput(t *testing.T) {
	m, ctl := newModel()
	m = typeText(m, "fe")
	m = press(m, keyEnter)
	assert.Equal(t, []string{"related-input:f", "related-input:fe", "submit-related:fe"}, ctl.calls)

	ctl.calls = nil
	m = press(m, keyTab)
	m = typeText(m, "pain")
	press(m, keyEnter)
	assert.Equal(t, "query-input:pain", ctl.calls[3])
	assert.Equal(t, "submit-query:pain", ctl.calls[4])
}

func TestYearInputsSetFilter(t *testing.T) {
	m, ctl := newModel()
	m = press(m, keyTab, keyTab)
	m = typeText(m, "2000")
	m = press(m, keyTab)
	m = typeText(m, "x")

	require.NotEmpty(t, ctl.filters)
	last := ctl.filters[len(ctl.filters)-1]
	require.NotNil(t, last.From)
	assert.Equal(t, 2000, *last.From)
	assert.Nil(t, last.To, "text that is not a year leaves the bound unset")
	assert.Equal(t, studies.Descending, last.Sort)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, studies.Ascending, ctl.filters[len(ctl.filters)-1].Sort)
}

func TestOperatorKeysInsertIntoQuery(t *testing.T) {
	m, ctl := newModel()
	m = press(m, keyTab)
	m = typeText(m, "pain")
	m = press(m, altKey('a'))
	m = typeText(m, "fear")

	assert.Equal(t, "pain AND fear", m.inputs[fieldQuery].Value())
	assert.Contains(t, ctl.calls, "query-input:pain AND ")
}

func TestAppendRelated(t *testing.T) {
	m, ctl := newModel()
	m = send(m, relatedMsg{term: "fear", terms: []string{"anxiety", "amygdala"}})

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, "anxiety", m.inputs[fieldQuery].Value())
	m = press(m, altKey('2'))
	assert.Equal(t, "anxiety AND amygdala", m.inputs[fieldQuery].Value())
	m = press(m, altKey('9'))
	assert.Equal(t, []string{"add:anxiety", "add:amygdala"}, ctl.calls)
}

func TestPickTermFromList(t *testing.T) {
	m, ctl := newModel()
	m = send(m, termsMsg{terms: []string{"amygdala", "fear", "pain"}})
	m = press(m, keyDown, keyDown, keyDown)
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, "pain", m.inputs[fieldRelated].Value())
	assert.Equal(t, []string{"select:pain"}, ctl.calls)
}

func TestPanelStates(t *testing.T) {
	m, _ := newModel()

	m = send(m, loadingMsg{controller.PanelRelated})
	assert.Contains(t, m.View(), "Loading…")

	m = send(m, errorMsg{controller.PanelRelated, errors.New("HTTP 404 Not Found\nmissing")})
	v := m.View()
	assert.NotContains(t, v, "Loading…")
	assert.Contains(t, v, "HTTP 404 Not Found")

	m = send(m, noticeMsg{controller.PanelStudies, controller.NoticeEnterQuery})
	assert.Contains(t, m.View(), controller.NoticeEnterQuery)

	m = send(m, studiesMsg{shown: []studies.Record{{"title": "Fear circuits", "year": 2011.0}}, total: 3})
	v = m.View()
	assert.Contains(t, v, "Count: 1 (of 3)")
	assert.Contains(t, v, "Fear circuits")
	assert.NotContains(t, v, controller.NoticeEnterQuery)

	m = send(m, clearMsg{controller.PanelStudies})
	assert.NotContains(t, m.View(), "Fear circuits")
}

func TestTermsWindow(t *testing.T) {
	m, _ := newModel()
	terms := make([]string, 20)
	for i := range terms {
		terms[i] = "term" + string(rune('a'+i))
	}
	m = send(m, termsMsg{terms: terms})
	body := m.termsBody()
	assert.Equal(t, termRows+1, strings.Count(body, "\n")+1)
	assert.Contains(t, body, "› terma")
	assert.Contains(t, body, "12 more")
}

func TestQuitKeys(t *testing.T) {
	m, _ := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestOutboxDeliversInOrder(t *testing.T) {
	out := NewOutbox()
	out.Loading(controller.PanelStudies)
	out.Notice(controller.PanelRelated, "Enter a term")
	out.Terms([]string{"a"})

	var mu sync.Mutex
	var got []tea.Msg
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		out.Run(ctx, func(m tea.Msg) {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
		})
	}()

	out.Studies(nil, 0)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, loadingMsg{controller.PanelStudies}, got[0])
	assert.Equal(t, noticeMsg{controller.PanelRelated, "Enter a term"}, got[1])
	assert.Equal(t, termsMsg{[]string{"a"}}, got[2])
	assert.IsType(t, studiesMsg{}, got[3])
}
