// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studies

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// SavedSearch is the on-disk form of one study search: the query, the
// filter applied when it was saved, and every fetched record. Loading it
// lets the records be filtered again without re-querying the API.
type SavedSearch struct {
	Query   SavedQuery   `yaml:"query"`
	Filter  Filter       `yaml:"filter"`
	Studies []Record     `yaml:"studies"`
	Summary SavedSummary `yaml:"summary"`
}

// SavedQuery stores the query as typed and as sent.
type SavedQuery struct {
	Raw      string `yaml:"raw"`
	Prepared string `yaml:"prepared"`
}

// SavedSummary stores result counts and a timestamp.
type SavedSummary struct {
	Total     int       `yaml:"total"`
	Shown     int       `yaml:"shown"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteSavedSearch saves the fetched records of a search to a YAML file.
// shown is the number of records that passed f.
func WriteSavedSearch(path string, q SavedQuery, f Filter, recs []Record, shown int) error {
	if recs == nil {
		recs = []Record{}
	}
	ss := SavedSearch{
		Query:   q,
		Filter:  f,
		Studies: recs,
		Summary: SavedSummary{
			Total:     len(recs),
			Shown:     shown,
			Timestamp: time.Now().UTC(),
		},
	}
	data, err := yaml.Marshal(&ss)
	if err != nil {
		return fmt.Errorf("marshaling saved search: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSavedSearch loads a previously saved search from disk.
func ReadSavedSearch(path string) (*SavedSearch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading saved search: %w", err)
	}
	var ss SavedSearch
	if err := yaml.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("parsing saved search: %w", err)
	}
	if ss.Filter.Sort == "" {
		ss.Filter.Sort = Descending
	}
	return &ss, nil
}
