// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/render"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
	"github.com/pdiddy/neurosynth-explorer/pkg/types"
)

func TestCheckQuery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, checkQuery(&buf, "a or b"))
	out := buf.String()
	assert.Contains(t, out, "runnable:   yes")
	assert.Contains(t, out, "normalized: (a) OR (b)")
	assert.Contains(t, out, "parse:      (a) OR (b)")

	buf.Reset()
	err := checkQuery(&buf, "pain AND")
	require.Error(t, err)
	assert.True(t, errors.Is(err, query.ErrIncompleteQuery))
	assert.Contains(t, buf.String(), "runnable:   no")
	assert.NotContains(t, buf.String(), "normalized:")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(types.LogConfig{Level: "loud"}, false, false)
	assert.Error(t, err)

	l, err := newLogger(types.LogConfig{Level: "warn"}, false, true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel), "quiet without a log file disables logging")

	path := filepath.Join(t.TempDir(), "explorer.log")
	l, err = newLogger(types.LogConfig{Level: "warn", File: path}, true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "verbose enables debug")
}

func TestStudiesReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	recs := []studies.Record{
		{"title": "A", "year": 2001},
		{"title": "B"},
		{"title": "C", "year": 1999},
	}
	q := studies.SavedQuery{Raw: "pain", Prepared: "pain"}
	require.NoError(t, studies.WriteSavedSearch(path, q, studies.Filter{Sort: studies.Descending}, recs, 3))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"studies", "--replay", path, "--from", "2000", "--format", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var got render.StudiesOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Shown)
	require.Len(t, got.Studies, 1)
	assert.Equal(t, "A", got.Studies[0]["title"])
}

func TestApplyFilterFlagsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad from", []string{"--from", "soon"}},
		{"bad sort", []string{"--sort", "newest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().String("from", "", "")
			cmd.Flags().String("to", "", "")
			cmd.Flags().String("sort", "desc", "")
			require.NoError(t, cmd.Flags().Parse(tt.args))

			var f studies.Filter
			assert.Error(t, applyFilterFlags(cmd, &f))
		})
	}
}

func TestPrintVersion(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
	}}
	var buf bytes.Buffer
	printVersion(&buf, info, "http://localhost:5000")
	out := buf.String()
	assert.Contains(t, out, "neurosynth-explorer "+version)
	assert.Contains(t, out, "revision: 0123456789ab (modified)")
	assert.Contains(t, out, "api:      http://localhost:5000")

	buf.Reset()
	printVersion(&buf, nil, types.DefaultBaseURL)
	assert.NotContains(t, buf.String(), "revision:")
}
