/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgdraw/internal/config"
)

const twoCircles = `
canvas: {width: 100, height: 100}
shapes:
  - {id: a, kind: circle}
  - {id: b, kind: circle, right_of: a}
`

type result struct {
	code   int
	stdout string
	stderr string
}

// cli runs the command with an isolated, absent config file.
func cli(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "absent", "config.yaml"))
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeScene(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	r := cli(t, "", "version")
	require.Equal(t, 0, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "svgdraw "))
}

func TestRenderToStdout(t *testing.T) {
	r := cli(t, "", "render", writeScene(t, twoCircles))
	require.Equal(t, 0, r.code, r.stderr)
	want := `<?xml version="1.0" standalone="no"?>` +
		`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">` +
		`<circle cx="25" cy="50" r="25" fill="none" stroke="#000000" stroke-width="1"/>` +
		`<circle cx="75" cy="50" r="25" fill="none" stroke="#000000" stroke-width="1"/>` +
		`</svg>`
	assert.Equal(t, want, r.stdout)
}

func TestRenderFromStdinWithSize(t *testing.T) {
	r := cli(t, twoCircles, "render", "-", "--width", "200", "--height", "100")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `width="200" height="100"`)
	assert.Contains(t, r.stdout, `<circle cx="150" cy="50" r="50"`)
}

func TestRenderUsesConfiguredCanvas(t *testing.T) {
	r := cli(t, "shapes: [{kind: rectangle, width: 4, height: 3}]", "render", "-")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `width="800" height="600"`)
	assert.Contains(t, r.stdout, `<rect x="0" y="0" width="800" height="600"`)
}

func TestRenderFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "drawing.png")
	r := cli(t, "", "render", writeScene(t, twoCircles), "-o", out)
	require.Equal(t, 0, r.code, r.stderr)
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestPNGAndPDFCommands(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeScene(t, twoCircles)

	pngOut := filepath.Join(dir, "x.bin")
	r := cli(t, "", "png", scenePath, "-o", pngOut, "--scale", "2", "--background", "#ffffff")
	require.Equal(t, 0, r.code, r.stderr)
	f, err := os.Open(pngOut)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(f)
	_ = f.Close()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)

	pdfOut := filepath.Join(dir, "x.pdf")
	r = cli(t, "", "pdf", scenePath, "-o", pdfOut, "--title", "Two circles")
	require.Equal(t, 0, r.code, r.stderr)
	b, err := os.ReadFile(pdfOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestRenderErrors(t *testing.T) {
	scenePath := writeScene(t, twoCircles)
	cases := map[string][]string{
		"width alone":    {"render", scenePath, "--width", "10"},
		"zero height":    {"render", scenePath, "--width", "10", "--height", "0"},
		"unknown format": {"render", scenePath, "--format", "gif"},
		"missing file":   {"render", filepath.Join(t.TempDir(), "nope.yaml")},
		"bad color":      {"png", scenePath, "--background", "chartreuse"},
		"no args":        {"render"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			r := cli(t, "", args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, "Error:")
		})
	}
}

func TestValidate(t *testing.T) {
	good := writeScene(t, twoCircles)
	bad := writeScene(t, "shapes: [{kind: circle, below: ghost}]")

	r := cli(t, "", "validate", good)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "ok   "+good+" (2 shapes)")

	r = cli(t, "", "validate", good, bad)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "FAIL "+bad)
	assert.Contains(t, r.stdout, "unknown shape reference")
	assert.Contains(t, r.stderr, "1 of 2 scenes invalid")
}

func TestConfigInitAndPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	r := cli(t, "", "--config", p, "config", "path")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, p+"\n", r.stdout)

	r = cli(t, "", "--config", p, "config", "init")
	require.Equal(t, 0, r.code, r.stderr)
	loaded, err := config.LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, 800, loaded.Canvas.Width)

	r = cli(t, "", "--config", p, "config", "init")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "--force")

	r = cli(t, "", "--config", p, "config", "init", "--force")
	assert.Equal(t, 0, r.code, r.stderr)
}

func TestConfigDrivesCanvas(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("canvas: {width: 50, height: 20}\n"), 0o644))
	r := cli(t, "shapes: [{kind: circle}]", "--config", p, "render", "-")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, `width="50" height="20"`)
}

func TestMalformedConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("canvas: [not, a, map"), 0o644))
	r := cli(t, "", "--config", p, "version")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "parse config")
}
