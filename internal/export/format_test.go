/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatSVG, "svg": FormatSVG, " PNG ": FormatPNG, "Pdf": FormatPDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/drawing.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	_, err = FormatFromPath("drawing")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestEncodeDispatch(t *testing.T) {
	d := twoCircles(t)

	var svgBuf bytes.Buffer
	require.NoError(t, Encode(&svgBuf, d, FormatSVG, Options{}))
	assert.True(t, strings.HasPrefix(svgBuf.String(), "<?xml"))

	var pngBuf bytes.Buffer
	require.NoError(t, Encode(&pngBuf, d, FormatPNG, Options{}))
	cfg, err := png.DecodeConfig(&pngBuf)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)

	var pdfBuf bytes.Buffer
	require.NoError(t, Encode(&pdfBuf, d, FormatPDF, Options{}))
	assert.True(t, strings.HasPrefix(pdfBuf.String(), "%PDF-"))

	assert.ErrorIs(t, Encode(&pdfBuf, d, Format("gif"), Options{}), ErrUnknownFormat)
}

func TestWriteDispatch(t *testing.T) {
	d := twoCircles(t)
	dir := t.TempDir()
	for _, f := range []Format{FormatSVG, FormatPNG, FormatPDF} {
		path := filepath.Join(dir, "out."+string(f))
		require.NoError(t, Write(d, path, f, Options{}))
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}
}
