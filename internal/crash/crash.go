/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a logged error, a report file and exit code 2.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "svgdraw/internal/log"
	"svgdraw/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Info describes what the process was doing. Fields may be filled in after
// Recover has been deferred.
type Info struct {
	Command string
	Scene   string
	// Dir receives the report; os.TempDir() if empty.
	Dir string
}

// Recover captures a panic, logs an error with stacktrace, writes a report
// file and exits with code 2.
//
// Usage: defer crash.Recover(&info)
func Recover(info *Info) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(info, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err), slog.String("path", reportPath))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func writeReport(info *Info, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if info != nil && info.Dir != "" {
		dir = info.Dir
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("svgdraw-crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "svgdraw Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if info != nil {
		if info.Command != "" {
			_, _ = fmt.Fprintf(&buf, "Command: %s\n", info.Command)
		}
		if info.Scene != "" {
			_, _ = fmt.Fprintf(&buf, "Scene: %s\n", info.Scene)
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
