// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// FilterTerms returns the terms containing q, compared case-insensitively
// after trimming q. A blank q returns terms unchanged.
func FilterTerms(terms []string, q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return terms
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), q) {
			out = append(out, t)
		}
	}
	return out
}
