// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package studies reads, filters, and sorts the study records returned by
// the boolean query endpoint. Records have no fixed schema: the same field
// may appear under several names or in upper case, and any of them may be
// missing.
package studies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
)

// Record is one study as decoded from JSON.
type Record map[string]any

// Candidate key names for the fields shown for a study.
var (
	TitleKeys   = []string{"title", "name"}
	YearKeys    = []string{"year", "publication_year"}
	AuthorsKeys = []string{"authors", "author_list", "authors_list", "author"}
	JournalKeys = []string{"journal", "venue"}
)

// Field returns the value of the first key present on rec, trying each key
// as given and then upper-cased. A present key wins even when its value is
// null. It returns "" when no key is present.
func Field(rec Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v
		}
		if v, ok := rec[strings.ToUpper(k)]; ok {
			return v
		}
	}
	return ""
}

// FieldString is Field rendered as text; null renders as "".
func FieldString(rec Record, keys ...string) string {
	v := Field(rec, keys...)
	if v == nil {
		return ""
	}
	return normalize.Stringify(v)
}

// Year parses the record's year, if any.
func Year(rec Record) (int, bool) {
	return normalize.ParseInt(Field(rec, YearKeys...))
}

// Summary holds the display fields of one study.
type Summary struct {
	Index   int    `json:"index" yaml:"index"`
	Title   string `json:"title" yaml:"title"`
	Year    string `json:"year,omitempty" yaml:"year,omitempty"`
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// Summarize extracts the display fields of rec. Author arrays are joined
// with ", ".
func Summarize(index int, rec Record) Summary {
	s := Summary{
		Index:   index,
		Title:   FieldString(rec, TitleKeys...),
		Year:    FieldString(rec, YearKeys...),
		Journal: FieldString(rec, JournalKeys...),
	}
	switch a := Field(rec, AuthorsKeys...).(type) {
	case []any:
		names := make([]string, 0, len(a))
		for _, n := range a {
			if n == nil {
				names = append(names, "")
				continue
			}
			names = append(names, normalize.Stringify(n))
		}
		s.Authors = strings.Join(names, ", ")
	case nil:
	default:
		s.Authors = normalize.Stringify(a)
	}
	return s
}

// SummarizeAll summarizes records in order, numbering them from 1.
func SummarizeAll(recs []Record) []Summary {
	out := make([]Summary, len(recs))
	for i, r := range recs {
		out[i] = Summarize(i+1, r)
	}
	return out
}

// Decode extracts the study list from a query response: a bare array, or
// an array under "results" or "studies". Elements that are not objects
// become empty records. Any other shape yields no studies.
func Decode(raw []byte) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	var elems []json.RawMessage

	switch {
	case len(raw) > 0 && raw[0] == '[':
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("decoding studies: %w", err)
		}
	case len(raw) > 0 && raw[0] == '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decoding studies: %w", err)
		}
		for _, k := range []string{"results", "studies"} {
			if err := json.Unmarshal(obj[k], &elems); err == nil && elems != nil {
				break
			}
			elems = nil
		}
	default:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("decoding studies: invalid JSON")
		}
	}

	recs := make([]Record, len(elems))
	for i, e := range elems {
		var r Record
		if err := json.Unmarshal(e, &r); err != nil || r == nil {
			r = Record{}
		}
		recs[i] = r
	}
	return recs, nil
}
