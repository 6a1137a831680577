// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive terminal front end. It forwards
// keystrokes to a controller.Controller and renders the panels the
// controller reports through an Outbox.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

// Controller is the part of *controller.Controller the model drives.
type Controller interface {
	LoadTerms()
	RelatedInput(v string)
	SubmitRelated(v string)
	SelectTerm(term string)
	QueryInput(v string)
	SubmitQuery(v string)
	AddRelatedToQuery(current, term string) string
	SetFilter(f studies.Filter)
}

// Input fields in focus order.
const (
	fieldRelated = iota
	fieldQuery
	fieldFrom
	fieldTo
	fieldCount
)

// termRows is how many terms the term panel shows at once.
const termRows = 8

// operatorKeys insert boolean operators into the query at the cursor.
var operatorKeys = map[string]string{
	"alt+a": "AND",
	"alt+o": "OR",
	"alt+n": "NOT",
	"alt+(": "(",
	"alt+)": ")",
}

type panelState struct {
	loading bool
	notice  string
	err     error
	ready   bool
}

// Model is the bubbletea model of the explorer.
type Model struct {
	ctl     Controller
	styles  render.Styles
	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model
	sort    studies.Direction

	panels      [3]panelState
	terms       []string
	termCursor  int
	relatedTerm string
	related     []string
	shown       []studies.Record
	total       int

	width int
}

// New returns a Model driving ctl.
func New(ctl Controller, styles render.Styles) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 512
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldRelated].Prompt = "Term  › "
	inputs[fieldRelated].Placeholder = "amygdala"
	inputs[fieldQuery].Prompt = "Query › "
	inputs[fieldQuery].Placeholder = "pain AND NOT memory"
	inputs[fieldFrom].Prompt = "From  › "
	inputs[fieldFrom].Width = 6
	inputs[fieldTo].Prompt = "To    › "
	inputs[fieldTo].Width = 6
	inputs[fieldRelated].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Muted

	return Model{
		ctl:     ctl,
		styles:  styles,
		inputs:  inputs,
		spinner: sp,
		sort:    studies.Descending,
	}
}

// Init loads the term list and starts the spinner.
func (m Model) Init() tea.Cmd {
	m.ctl.LoadTerms()
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles key presses and controller messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadingMsg:
		m.panels[msg.panel] = panelState{loading: true}
	case noticeMsg:
		m.panels[msg.panel] = panelState{notice: msg.text}
	case clearMsg:
		m.panels[msg.panel] = panelState{}
	case errorMsg:
		m.panels[msg.panel] = panelState{err: msg.err}
	case termsMsg:
		m.panels[controller.PanelTerms] = panelState{ready: true}
		m.terms = msg.terms
		m.termCursor = 0
	case relatedMsg:
		m.panels[controller.PanelRelated] = panelState{ready: true}
		m.relatedTerm, m.related = msg.term, msg.terms
	case studiesMsg:
		m.panels[controller.PanelStudies] = panelState{ready: true}
		m.shown, m.total = msg.shown, msg.total
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		step := 1
		if key == "shift+tab" {
			step = fieldCount - 1
		}
		return m, m.setFocus((m.focus + step) % fieldCount)
	case "enter":
		m.submit()
		return m, nil
	case "ctrl+s":
		if m.sort == studies.Ascending {
			m.sort = studies.Descending
		} else {
			m.sort = studies.Ascending
		}
		m.ctl.SetFilter(m.filter())
		return m, nil
	case "up", "down":
		if m.focus == fieldRelated && len(m.terms) > 0 {
			if key == "up" && m.termCursor > 0 {
				m.termCursor--
			}
			if key == "down" && m.termCursor < len(m.terms)-1 {
				m.termCursor++
			}
			return m, nil
		}
	case "ctrl+l":
		if len(m.terms) > 0 {
			term := m.terms[m.termCursor]
			m.inputs[fieldRelated].SetValue(term)
			m.ctl.SelectTerm(term)
		}
		return m, nil
	case "ctrl+a":
		return m.appendRelated(0)
	}

	if n, ok := digitKey(key); ok {
		return m.appendRelated(n - 1)
	}
	if op, ok := operatorKeys[key]; ok && m.focus == fieldQuery {
		in := &m.inputs[fieldQuery]
		v, caret := query.InsertOperator(in.Value(), in.Position(), op)
		in.SetValue(v)
		in.SetCursor(caret)
		m.ctl.QueryInput(v)
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if v := m.inputs[m.focus].Value(); v != before {
		m.changed(v)
	}
	return m, cmd
}

// digitKey maps alt+1 … alt+9 to 1 … 9.
func digitKey(key string) (int, bool) {
	if len(key) == 5 && strings.HasPrefix(key, "alt+") && key[4] >= '1' && key[4] <= '9' {
		return int(key[4] - '0'), true
	}
	return 0, false
}

func (m Model) appendRelated(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.related) {
		return m, nil
	}
	q := m.ctl.AddRelatedToQuery(m.inputs[fieldQuery].Value(), m.related[i])
	m.inputs[fieldQuery].SetValue(q)
	m.inputs[fieldQuery].CursorEnd()
	return m, nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) changed(v string) {
	switch m.focus {
	case fieldRelated:
		m.termCursor = 0
		m.ctl.RelatedInput(v)
	case fieldQuery:
		m.ctl.QueryInput(v)
	case fieldFrom, fieldTo:
		m.ctl.SetFilter(m.filter())
	}
}

func (m *Model) submit() {
	switch m.focus {
	case fieldRelated:
		m.ctl.SubmitRelated(m.inputs[fieldRelated].Value())
	case fieldQuery:
		m.ctl.SubmitQuery(m.inputs[fieldQuery].Value())
	default:
		m.ctl.SetFilter(m.filter())
	}
}

// filter reads the year inputs. Text that is not a year leaves the bound
// unset.
func (m Model) filter() studies.Filter {
	f := studies.Filter{Sort: m.sort}
	if b, err := studies.ParseBound(m.inputs[fieldFrom].Value()); err == nil {
		f.From = b
	}
	if b, err := studies.ParseBound(m.inputs[fieldTo].Value()); err == nil {
		f.To = b
	}
	return f
}

// View renders the inputs and the three panels.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Neurosynth explorer"))
	b.WriteString("\n\n")

	b.WriteString(m.inputs[fieldRelated].View())
	b.WriteString("\n")
	b.WriteString(m.section("Terms", controller.PanelTerms, m.termsBody))
	b.WriteString(m.section("Related", controller.PanelRelated, m.relatedBody))

	b.WriteString(m.inputs[fieldQuery].View())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.inputs[fieldFrom].View(), "   ",
		m.inputs[fieldTo].View(), "   ",
		m.styles.Muted.Render("sort: "+string(m.sort))))
	b.WriteString("\n")
	b.WriteString(m.section("Studies", controller.PanelStudies, m.studiesBody))

	b.WriteString(m.styles.Muted.Render(
		"tab focus • enter search • ↑/↓ ctrl+l pick term • ctrl+a/alt+1-9 add related • alt+a/o/n operators • ctrl+s sort • esc quit"))
	return b.String()
}

func (m Model) section(title string, p controller.Panel, body func() string) string {
	st := m.panels[p]
	var content string
	switch {
	case st.loading:
		content = m.spinner.View() + " Loading…"
	case st.err != nil:
		content = m.styles.ErrorText(st.err)
	case st.notice != "":
		content = m.styles.NoticeText(st.notice)
	case st.ready:
		content = body()
	}
	return m.styles.Title.Render(title) + "\n" + content + "\n\n"
}

func (m Model) termsBody() string {
	if len(m.terms) == 0 {
		return m.styles.TermList(nil)
	}
	start := 0
	if m.termCursor >= termRows {
		start = m.termCursor - termRows + 1
	}
	end := min(start+termRows, len(m.terms))
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		marker := "  "
		if i == m.termCursor {
			marker = "› "
		}
		lines = append(lines, marker+m.terms[i])
	}
	if len(m.terms) > end {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("  … %d more", len(m.terms)-end)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) relatedBody() string {
	return m.styles.Muted.Render("for "+m.relatedTerm) + "\n" + m.styles.RelatedTags(m.related)
}

func (m Model) studiesBody() string {
	return m.styles.StudyTable(m.shown, m.total)
}
