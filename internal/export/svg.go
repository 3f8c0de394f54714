/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes drawings as SVG, PNG and PDF files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	applog "svgdraw/internal/log"
	"svgdraw/internal/vector"
)

// EncodeSVG writes the SVG text of d to w.
func EncodeSVG(w io.Writer, d *vector.Drawing) error {
	s, err := d.SVG()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// WriteSVG creates the parent directory of path and writes the SVG text
// there. Errors from the write itself are returned unchanged.
func WriteSVG(d *vector.Drawing, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := d.WriteFile(path); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("export"), "svg").Debug("written", "path", path)
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
