/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CBD_LOG_LEVEL", "")
	t.Setenv("CBD_LOG_FORMAT", "")
	t.Setenv("CBD_LOG_SOURCE", "")
	t.Setenv("CBD_LOG_FILE", "")
	opts := FromEnv()
	if opts.Level != "info" {
		t.Fatalf("default level = %q, want info", opts.Level)
	}
	if opts.Format != "console" {
		t.Fatalf("default format = %q, want console", opts.Format)
	}
	if opts.AddSource {
		t.Fatalf("default AddSource = true, want false")
	}
	if opts.File != "" {
		t.Fatalf("default File = %q, want empty", opts.File)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CBD_LOG_LEVEL", "warn")
	t.Setenv("CBD_LOG_FORMAT", "json")
	t.Setenv("CBD_LOG_SOURCE", "true")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource {
		t.Fatalf("env overrides not applied: %+v", opts)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyHandlerWritesAttrs(t *testing.T) {
	var sb strings.Builder
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelInfo}, w: writerFunc(func(p []byte) (int, error) {
		sb.Write(p)
		return len(p), nil
	})}
	logger := slog.New(h).With(slog.String("component", "test"))
	logger.Info("hello", slog.Int("n", 3))
	out := sb.String()
	if !strings.Contains(out, "INF") || !strings.Contains(out, "hello") {
		t.Fatalf("missing level/message in %q", out)
	}
	if !strings.Contains(out, "component=test") || !strings.Contains(out, "n=3") {
		t.Fatalf("missing attrs in %q", out)
	}
}

func TestWithComponentAndOperation(t *testing.T) {
	Init(Options{Level: "error"})
	l := WithOperation(WithComponent("storage"), "save")
	if l == nil {
		t.Fatal("nil logger")
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
