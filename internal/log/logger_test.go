/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitAndStructuredLoggingToFile verifies that Init with a file handler writes JSON logs
// and that static and contextual attributes are present.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "svgdraw.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Output: &console})
	t.Cleanup(func() { Init(Options{Output: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("testcomp"), "op1")
	l.Info("hello world", slog.String("k", "v"))
	time.Sleep(20 * time.Millisecond)

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "svgdraw" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "testcomp" || m["op"] != "op1" || m["k"] != "v" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if m["msg"] != "hello world" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if !strings.Contains(console.String(), "INF hello world") {
		t.Fatalf("console output missing record: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "TRUE")
	t.Setenv(EnvFile, "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("SVD_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("s", "two words"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR boom", " k=v", " grp.n=42", " grp.pi=3.14", ` grp.s="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Options{Output: &bytes.Buffer{}}) })

	ctx := WithContextAttrs(context.Background(), slog.String("request_id", "abc"))
	L().InfoContext(ctx, "served")

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if m["request_id"] != "abc" {
		t.Fatalf("request_id missing: %v", m)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}
