// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for neurosynth-explorer:
// scored terms produced by the related-terms normalizer and the
// configuration structs loaded by the CLI.
package types

// ScoredTerm is a related term with its similarity score. Valid is false
// when the API sent no score or one that does not parse as a number;
// such terms sort after every scored term.
type ScoredTerm struct {
	// Term is the related term as sent by the API.
	Term string `json:"term" yaml:"term"`

	// Score is the Jaccard similarity, meaningful only when Valid.
	Score float64 `json:"score" yaml:"score"`

	// Valid reports whether Score was parsed from the payload.
	Valid bool `json:"valid" yaml:"valid"`
}

// Less orders scored terms: valid scores descending, invalid scores last,
// and two invalid scores by ascending term.
func (s ScoredTerm) Less(o ScoredTerm) bool {
	switch {
	case !s.Valid && !o.Valid:
		return s.Term < o.Term
	case !s.Valid:
		return false
	case !o.Valid:
		return true
	default:
		return s.Score > o.Score
	}
}
