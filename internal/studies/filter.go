// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
)

// Direction orders studies by year.
type Direction string

const (
	Descending Direction = "desc"
	Ascending  Direction = "asc"
)

// ParseDirection maps "asc" (any case) to Ascending and everything else,
// including "", to Descending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Ascending)) {
		return Ascending
	}
	return Descending
}

// Filter selects and orders studies by publication year. Nil bounds are
// unset.
type Filter struct {
	From *int      `json:"from,omitempty" yaml:"from,omitempty"`
	To   *int      `json:"to,omitempty" yaml:"to,omitempty"`
	Sort Direction `json:"sort" yaml:"sort"`
}

// Bounded reports whether either year bound is set.
func (f Filter) Bounded() bool {
	return f.From != nil || f.To != nil
}

// ParseBound parses an optional year bound. Blank input is unset; like a
// number field in a form, "2001x" reads as 2001.
func ParseBound(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, ok := normalize.ParseInt(s)
	if !ok {
		return nil, fmt.Errorf("invalid year %q", s)
	}
	return &n, nil
}

// Apply returns the records that pass f, sorted by year in f.Sort order.
// When a bound is set, records without a parseable year are dropped;
// otherwise they are kept and placed after every dated record. recs is not
// modified.
func Apply(recs []Record, f Filter) []Record {
	type dated struct {
		rec   Record
		year  int
		valid bool
	}

	kept := make([]dated, 0, len(recs))
	for _, r := range recs {
		y, ok := Year(r)
		if f.Bounded() && !ok {
			continue
		}
		if f.From != nil && y < *f.From {
			continue
		}
		if f.To != nil && y > *f.To {
			continue
		}
		kept = append(kept, dated{rec: r, year: y, valid: ok})
	}

	asc := f.Sort == Ascending
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		switch {
		case !a.valid || !b.valid:
			return a.valid && !b.valid
		case asc:
			return a.year < b.year
		default:
			return a.year > b.year
		}
	})

	out := make([]Record, len(kept))
	for i, d := range kept {
		out[i] = d.rec
	}
	return out
}
