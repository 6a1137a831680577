// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns the loosely shaped JSON returned by the term
// endpoints into ordered term lists.
//
// The related-terms endpoint answers with one of several shapes: a plain
// array of terms, an array of {term, jaccard} objects, or an object mapping
// each term to its score, optionally wrapped in a container key.
// DecodeRelated classifies the payload into a Shape before ordering it.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

// ContainerKeys are the keys that may wrap a payload, in lookup order.
var ContainerKeys = []string{"related", "related_terms", "associations", "terms", "data"}

// Shape identifies which payload form a response used.
type Shape int

const (
	ShapeUnknown    Shape = iota // nothing usable; no terms
	ShapeTerms                   // ["a", "b"]
	ShapeScoredList              // [{"term": "a", "jaccard": 0.4}]
	ShapeScoreMap                // {"a": 0.4} or {"a": {"jaccard": 0.4}}
)

func (s Shape) String() string {
	switch s {
	case ShapeTerms:
		return "terms"
	case ShapeScoredList:
		return "scored-list"
	case ShapeScoreMap:
		return "score-map"
	default:
		return "unknown"
	}
}

// Payload is a decoded related-terms response. Terms is set for
// ShapeTerms; Scored is set, already ordered, for the two scored shapes.
type Payload struct {
	Shape  Shape
	Terms  []string
	Scored []types.ScoredTerm
}

// Ordered returns the payload's terms in display order.
func (p Payload) Ordered() []string {
	switch p.Shape {
	case ShapeTerms:
		return p.Terms
	case ShapeScoredList, ShapeScoreMap:
		out := make([]string, len(p.Scored))
		for i, s := range p.Scored {
			out[i] = s.Term
		}
		return out
	default:
		return []string{}
	}
}

// termKeys name the field of a scored object that holds its term.
var termKeys = []string{"term", "name", "id"}

const scoreKey = "jaccard"

// DecodeRelated decodes a related-terms response. Scored shapes are sorted
// by score descending; unscored entries go last, ordered by term. Equal
// scores keep the order they had in the response.
func DecodeRelated(raw []byte) (Payload, error) {
	payload, err := Unwrap(raw)
	if err != nil {
		return Payload{}, err
	}

	switch firstByte(payload) {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(payload, &elems); err != nil {
			return Payload{}, fmt.Errorf("decoding related terms: %w", err)
		}
		if len(elems) == 0 {
			return Payload{Shape: ShapeTerms, Terms: []string{}}, nil
		}
		switch firstByte(elems[0]) {
		case '"':
			terms, err := stringList(elems)
			if err != nil {
				return Payload{}, err
			}
			return Payload{Shape: ShapeTerms, Terms: terms}, nil
		case '{':
			return Payload{Shape: ShapeScoredList, Scored: scoredList(elems)}, nil
		}
	case '{':
		members, err := decodeMembers(payload)
		if err != nil {
			return Payload{}, fmt.Errorf("decoding related terms: %w", err)
		}
		return Payload{Shape: ShapeScoreMap, Scored: scoreMap(members)}, nil
	}
	return Payload{Shape: ShapeUnknown}, nil
}

// RelatedTerms decodes raw and returns its terms in display order. Invalid
// JSON yields an empty list.
func RelatedTerms(raw []byte) []string {
	p, err := DecodeRelated(raw)
	if err != nil {
		return []string{}
	}
	return p.Ordered()
}

// TermList decodes the term list endpoint: an array, or an array under one
// of the ContainerKeys. Anything else yields an empty list.
func TermList(raw []byte) []string {
	payload, err := Unwrap(raw)
	if err != nil || firstByte(payload) != '[' {
		return []string{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return []string{}
	}
	terms, err := stringList(elems)
	if err != nil {
		return []string{}
	}
	return terms
}

// Unwrap returns raw itself when it is not an object, otherwise the value
// of the first ContainerKeys entry that is present and not null, otherwise
// raw.
func Unwrap(raw []byte) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return nil, errors.New("invalid JSON payload")
	}
	if firstByte(raw) != '{' {
		return raw, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	for _, k := range ContainerKeys {
		v, ok := obj[k]
		if ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return bytes.TrimSpace(v), nil
		}
	}
	return raw, nil
}

func stringList(elems []json.RawMessage) ([]string, error) {
	out := make([]string, len(elems))
	for i, e := range elems {
		var v any
		if err := json.Unmarshal(e, &v); err != nil {
			return nil, fmt.Errorf("decoding term %d: %w", i, err)
		}
		out[i] = Stringify(v)
	}
	return out, nil
}

func scoredList(elems []json.RawMessage) []types.ScoredTerm {
	out := make([]types.ScoredTerm, len(elems))
	for i, e := range elems {
		var obj map[string]any
		if err := json.Unmarshal(e, &obj); err != nil {
			continue // not an object: no term, no score
		}
		for _, k := range termKeys {
			if v, ok := obj[k]; ok && v != nil {
				out[i].Term = Stringify(v)
				break
			}
		}
		out[i].Score, out[i].Valid = scoreOf(obj, scoreKey)
	}
	sortScored(out)
	return out
}

func scoreMap(members []member) []types.ScoredTerm {
	out := make([]types.ScoredTerm, len(members))
	for i, m := range members {
		out[i].Term = m.key
		switch v := m.value.(type) {
		case map[string]any:
			out[i].Score, out[i].Valid = scoreOf(v, scoreKey)
		case []any, nil:
			// no score
		default:
			out[i].Score, out[i].Valid = ParseFloat(v)
		}
	}
	sortScored(out)
	return out
}

func scoreOf(obj map[string]any, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	return ParseFloat(v)
}

func sortScored(s []types.ScoredTerm) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Less(s[j]) })
}

type member struct {
	key   string
	value any
}

// decodeMembers decodes a JSON object keeping member order. A repeated key
// keeps its first position and its last value.
func decodeMembers(raw []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected JSON object")
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		if i, dup := index[key]; dup {
			members[i].value = v
			continue
		}
		index[key] = len(members)
		members = append(members, member{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
