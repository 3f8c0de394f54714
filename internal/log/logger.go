/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the process-wide slog logger. Records carry the
// static attributes app and ver; packages derive child loggers with
// WithComponent and WithOperation, and request handlers attach per-request
// attributes to a context with WithContextAttrs.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"svgdraw/internal/version"
)

const appName = "svgdraw"

// Environment variables read by FromEnv.
const (
	EnvLevel  = "SVD_LOG_LEVEL"  // debug|info|warn|error
	EnvFormat = "SVD_LOG_FORMAT" // console|json
	EnvFile   = "SVD_LOG_FILE"   // path, enables rotated JSON file output
	EnvSource = "SVD_LOG_SOURCE" // true|false
)

// Options controls logger initialization. Defaults: info level, console
// format on stderr, no source, no file.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	// Output replaces stderr for the console or JSON stream.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init builds the logger from opts and installs it as slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var stream slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		stream = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		stream = newConsoleHandler(out, lvl, opts.AddSource)
	}
	hs := []slog.Handler{stream}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = fanout(hs)
	if len(hs) == 1 {
		h = hs[0]
	}
	l := slog.New(contextHandler{next: h}).With(
		slog.String("app", appName),
		slog.String("ver", version.String()),
		slog.Time("ts_init", time.Now()),
	)

	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// FromEnv builds Options from the SVD_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv(EnvLevel, "info"),
		Format:    getenv(EnvFormat, "console"),
		AddSource: strings.EqualFold(getenv(EnvSource, "false"), "true"),
		File:      os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// WithContextAttrs returns a context whose records logged through the
// *Context methods (InfoContext etc.) carry attrs in addition to their own.
func WithContextAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	all := make([]slog.Attr, 0, len(prev)+len(attrs))
	all = append(all, prev...)
	all = append(all, attrs...)
	return context.WithValue(ctx, ctxKey{}, all)
}

// contextHandler copies attributes stored by WithContextAttrs into each record.
type contextHandler struct{ next slog.Handler }

func (c contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.next.Enabled(ctx, level)
}

func (c contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok && len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return c.next.Handle(ctx, r)
}

func (c contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: c.next.WithAttrs(attrs)}
}

func (c contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: c.next.WithGroup(name)}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
