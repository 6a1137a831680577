// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedSearchRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pain.yaml")
	recs := []Record{
		{"title": "A", "year": 2001.0, "authors": []any{"Smith J"}},
		{"title": "B", "year": nil},
		{"title": "C", "publication_year": "1999"},
	}
	f := Filter{From: intp(2000), Sort: Ascending}

	require.NoError(t, WriteSavedSearch(path, SavedQuery{Raw: "pain", Prepared: "pain"}, f, recs, 1))

	ss, err := ReadSavedSearch(path)
	require.NoError(t, err)
	assert.Equal(t, "pain", ss.Query.Raw)
	assert.Equal(t, 3, ss.Summary.Total)
	assert.Equal(t, 1, ss.Summary.Shown)
	assert.False(t, ss.Summary.Timestamp.IsZero())
	require.NotNil(t, ss.Filter.From)
	assert.Equal(t, 2000, *ss.Filter.From)
	assert.Nil(t, ss.Filter.To)
	assert.Equal(t, Ascending, ss.Filter.Sort)
	require.Len(t, ss.Studies, 3)

	// Years survive the round trip whatever type YAML decodes them as.
	got := Apply(ss.Studies, Filter{Sort: Ascending})
	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = FieldString(r, TitleKeys...)
	}
	assert.Equal(t, []string{"C", "A", "B"}, titles)
	assert.Equal(t, "Smith J", Summarize(1, ss.Studies[0]).Authors)
}

func TestReadSavedSearchDefaultsSort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  raw: fear\nstudies: []\n"), 0o644))

	ss, err := ReadSavedSearch(path)
	require.NoError(t, err)
	assert.Equal(t, Descending, ss.Filter.Sort)
	assert.Empty(t, ss.Studies)
}

func TestReadSavedSearchErrors(t *testing.T) {
	_, err := ReadSavedSearch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading saved search")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("studies: [\n"), 0o644))
	_, err = ReadSavedSearch(path)
	assert.ErrorContains(t, err, "parsing saved search")
}
