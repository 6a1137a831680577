// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"html/template"

	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

var fragments = template.Must(template.New("fragments").Parse(`
{{define "terms"}}{{if not .}}<div class="empty">` + EmptyTerms + `</div>{{else}}<ul class="term-list">
{{range .}}<li><button type="button" class="term" data-term="{{.}}">{{.}}</button></li>
{{end}}</ul>{{end}}{{end}}

{{define "related"}}{{if not .}}<div class="empty">` + EmptyRelated + `</div>{{else}}<div class="tags">
{{range .}}<button type="button" class="tag" data-term="{{.}}">{{.}}</button>
{{end}}</div>{{end}}{{end}}

{{define "studies"}}{{if not .Items}}<div class="empty">` + EmptyStudies + `</div>{{else}}<div class="count">Count: {{len .Items}}</div>
<div class="studies">
{{range .Items}}<div class="study">
<button type="button" data-study-index="{{.Index}}">
<div class="study-head"><div class="title">{{.Title}}</div>{{if .Year}}<span class="year">{{.Year}}</span>{{end}}</div>
<div class="details hidden" data-study-details="{{.Index}}">
<div><span class="label">Authors:</span> {{.Authors}}</div>
<div><span class="label">Journal:</span> {{.Journal}}</div>
</div>
</button>
</div>
{{end}}</div>{{end}}{{end}}

{{define "notice"}}<div class="notice">{{.}}</div>{{end}}

{{define "error"}}<div class="error">
<div class="error-title">Error</div>
<pre>{{.}}</pre>
<div class="hint">` + ErrorHint + `</div>
</div>{{end}}

{{define "loading"}}<div class="loading"><span>Loading…</span></div>{{end}}
`))

type studiesData struct {
	Items []studies.Summary
	Total int
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// TermsHTML renders terms as a list of buttons carrying data-term.
func TermsHTML(terms []string) (template.HTML, error) {
	return execute("terms", terms)
}

// RelatedHTML renders related terms as tag buttons carrying data-term.
func RelatedHTML(terms []string) (template.HTML, error) {
	return execute("related", terms)
}

// StudiesHTML renders study cards with their count. Study indexes start at
// zero, matching data-study-details.
func StudiesHTML(shown []studies.Record, total int) (template.HTML, error) {
	items := make([]studies.Summary, len(shown))
	for i, r := range shown {
		items[i] = studies.Summarize(i, r)
	}
	return execute("studies", studiesData{Items: items, Total: total})
}

// NoticeHTML renders an informational message.
func NoticeHTML(msg string) (template.HTML, error) {
	return execute("notice", msg)
}

// ErrorHTML renders err in an error box.
func ErrorHTML(err error) (template.HTML, error) {
	return execute("error", err.Error())
}

// LoadingHTML renders the loading indicator.
func LoadingHTML() (template.HTML, error) {
	return execute("loading", nil)
}
