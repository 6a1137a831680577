// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

// Format selects the CLI output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value. Blank means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// RelatedResult is the related-terms lookup for one term. Error is set
// instead of Related when the lookup failed.
type RelatedResult struct {
	Term    string   `json:"term" yaml:"term"`
	Related []string `json:"related" yaml:"related"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// StudiesOutput is the structured form of a studies listing.
type StudiesOutput struct {
	Total   int              `json:"total" yaml:"total"`
	Shown   int              `json:"shown" yaml:"shown"`
	Studies []studies.Record `json:"studies" yaml:"studies"`
}

// Printer writes CLI results to W in the chosen Format.
type Printer struct {
	W      io.Writer
	Format Format
	Styles Styles
}

// Terms prints the term list.
func (p *Printer) Terms(terms []string) error {
	if p.Format != FormatTable {
		if terms == nil {
			terms = []string{}
		}
		return p.encode(terms)
	}
	_, err := fmt.Fprintln(p.W, p.Styles.TermList(terms))
	return err
}

// Related prints one block per looked-up term.
func (p *Printer) Related(results []RelatedResult) error {
	if p.Format != FormatTable {
		return p.encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(p.W)
		}
		fmt.Fprintln(p.W, p.Styles.Header.Render(r.Term))
		if r.Error != "" {
			fmt.Fprintln(p.W, p.Styles.Error.Render("Error")+"\n"+r.Error)
			continue
		}
		for j, t := range r.Related {
			fmt.Fprintf(p.W, "%3d  %s\n", j+1, t)
		}
		if len(r.Related) == 0 {
			fmt.Fprintln(p.W, p.Styles.Muted.Render(EmptyRelated))
		}
	}
	return nil
}

// Studies prints the filtered studies. total is the count before
// filtering.
func (p *Printer) Studies(shown []studies.Record, total int) error {
	if p.Format != FormatTable {
		if shown == nil {
			shown = []studies.Record{}
		}
		return p.encode(StudiesOutput{Total: total, Shown: len(shown), Studies: shown})
	}
	_, err := fmt.Fprintln(p.W, p.Styles.StudyTable(shown, total))
	return err
}

func (p *Printer) encode(v any) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.W)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.W)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", p.Format)
	}
}
