/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	if filepath.Dir(path) != filepath.Clean(os.TempDir()) {
		t.Fatalf("report should be in the temp dir, got %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "svgdraw-crash-") || !strings.HasSuffix(path, ".log") {
		t.Fatalf("unexpected report name %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "svgdraw Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "Command:") {
		t.Fatalf("no command was given: %s", s)
	}
}

func TestWriteReportIncludesInfo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := writeReport(&Info{Command: "render", Scene: "a.yaml", Dir: dir}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected report under %s, got %s", dir, path)
	}
	b, _ := os.ReadFile(path)
	for _, want := range []string{"Command: render", "Scene: a.yaml", "Panic: kaboom", "Stack:\nstack"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("report missing %q:\n%s", want, b)
		}
	}
}

// Recover handles a panic, writes a report and calls exitFn instead of terminating the test.
func TestRecoverPanic(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	info := &Info{Dir: dir}
	func() {
		defer Recover(info)
		info.Scene = "late.yaml"
		panic("boom")
	}()

	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Fatalf("expected one crash report in %s, got %d", dir, len(files))
	}
	b, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "Scene: late.yaml") {
		t.Fatalf("report content: %s", b)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverNoPanic(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}
