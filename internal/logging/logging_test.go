// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chronam/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInit_JSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Init(types.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("hello", "page", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "chronam", entry["name"])
	assert.EqualValues(t, 3, entry["page"])
}

func TestInit_AutoOnBufferIsJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(types.LoggingConfig{Format: "auto"}, &buf)
	slog.Info("via default")

	assert.True(t, strings.HasPrefix(buf.String(), "{"), "got %q", buf.String())
}

func TestInit_LevelFilters(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Init(types.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestErrorSampler(t *testing.T) {
	s := NewErrorSampler(3)

	var logged []int
	for i := 1; i <= 7; i++ {
		if s.ShouldLog("parse") {
			logged = append(logged, i)
		}
	}
	assert.Equal(t, []int{1, 3, 6}, logged)
	assert.Equal(t, 7, s.GetCount("parse"))
	assert.Equal(t, 0, s.GetCount("sink"))

	s.Reset("parse")
	assert.True(t, s.ShouldLog("parse"))
}

func TestNewErrorSampler_DefaultInterval(t *testing.T) {
	s := NewErrorSampler(0)
	assert.Equal(t, 10, s.interval)
}
