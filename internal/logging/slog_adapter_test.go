// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandlerRoutesLevels(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	slogger := NewSlogLogger()

	tests := []struct {
		name  string
		logFn func(msg string, args ...any)
		level string
	}{
		{"info", slogger.Info, `"level":"info"`},
		{"warn", slogger.Warn, `"level":"warn"`},
		{"error", slogger.Error, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFn("message via slog")
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected %s in output, got %q", tt.level, buf.String())
			}
		})
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	NewSlogLogger().Info("with fields",
		slog.String("service", "http"),
		slog.Int("port", 8080),
		slog.Bool("ready", true),
	)

	out := buf.String()
	for _, want := range []string{`"service":"http"`, `"port":8080`, `"ready":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in output %q", want, out)
		}
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(prev)

	NewSlogLogger().WithGroup("supervisor").Info("restarting", slog.String("service", "api"))

	if !strings.Contains(buf.String(), `"supervisor.service":"api"`) {
		t.Errorf("group prefix missing in output %q", buf.String())
	}
}
