/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"svgdraw/internal/vector"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts svg, png or pdf in any case. The empty string means svg.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSVG, nil
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/svg+xml"
	}
}

// Options bundles the per-format settings used by Encode and Write.
type Options struct {
	PNG PNGOptions
	PDF PDFOptions
}

// Encode writes d to w in format f.
func Encode(w io.Writer, d *vector.Drawing, f Format, opts Options) error {
	switch f {
	case FormatSVG:
		return EncodeSVG(w, d)
	case FormatPNG:
		return EncodePNG(w, d, opts.PNG)
	case FormatPDF:
		return RenderPDF(w, d, opts.PDF)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Write stores d at path in format f.
func Write(d *vector.Drawing, path string, f Format, opts Options) error {
	switch f {
	case FormatSVG:
		return WriteSVG(d, path)
	case FormatPNG:
		return WritePNG(d, path, opts.PNG)
	case FormatPDF:
		return WritePDF(d, path, opts.PDF)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
