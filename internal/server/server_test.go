/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgdraw/internal/decimal"
	"svgdraw/internal/storage"
)

const twoCircles = `
canvas: {width: 100, height: 100}
shapes:
  - {id: a, kind: circle}
  - {id: b, kind: circle, right_of: a}
`

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, 10*time.Second)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func post(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	return req
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal(body, &m), string(body))
	return m["error"]
}

func TestHealthLiveAndRequestID(t *testing.T) {
	s := New(Options{})
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, string(body))
	_, err := uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err, "generated request id should be a UUID")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, _ = do(t, s, req)
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
}

func TestHealthReady(t *testing.T) {
	resp, body := do(t, New(Options{}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready","cache":"disabled"}`, string(body))
}

func TestRenderSVG(t *testing.T) {
	resp, body := do(t, New(Options{}), post("/render", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get(HeaderCache))
	s := string(body)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" standalone="no"?>`))
	assert.Contains(t, s, `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">`)
	assert.Contains(t, s, `<circle cx="25" cy="50" r="25"`)
	assert.Contains(t, s, `<circle cx="75" cy="50" r="25"`)
}

func TestRenderQueryOverridesCanvas(t *testing.T) {
	resp, body := do(t, New(Options{}), post("/render?width=200&height=100", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	s := string(body)
	assert.Contains(t, s, `width="200" height="100"`)
	assert.Contains(t, s, `<circle cx="50" cy="50" r="50"`)
	assert.Contains(t, s, `<circle cx="150" cy="50" r="50"`)
}

func TestRenderPNGAndPDF(t *testing.T) {
	s := New(Options{})
	resp, body := do(t, s, post("/render?format=png", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	cfg, err := png.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	resp, body = do(t, s, post("/render?format=PDF", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestRenderBadRequests(t *testing.T) {
	s := New(Options{})
	cases := []struct {
		name, target, body, want string
	}{
		{"empty body", "/render", "  \n", "scene body required"},
		{"unknown format", "/render?format=gif", twoCircles, "unknown output format"},
		{"width alone", "/render?width=10", twoCircles, "together"},
		{"bad width", "/render?width=x&height=10", twoCircles, "width"},
		{"negative height", "/render?width=10&height=-1", twoCircles, "positive"},
		{"schema violation", "/render", "shapes: [{kind: hexagon}]", "invalid scene"},
		{"unknown reference", "/render", "canvas: {width: 10, height: 10}\nshapes: [{kind: circle, right_of: nope}]", "unknown shape reference"},
		{"no canvas", "/render", "shapes: [{kind: circle}]", "explicit dimensions are not set"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, s, post(tc.target, tc.body))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, errorOf(t, body), tc.want)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	resp, body := do(t, New(Options{}), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, errorOf(t, body))
}

func TestRenderCache(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cache, err := storage.Open(ctx, filepath.Join(t.TempDir(), "render.db"), 1<<20)
	require.NoError(t, err)
	defer cache.Close()
	s := New(Options{Cache: cache})

	resp, first := do(t, s, post("/render", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(first))
	assert.Equal(t, "MISS", resp.Header.Get(HeaderCache))

	resp, second := do(t, s, post("/render", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get(HeaderCache))
	assert.Equal(t, first, second)

	resp, _ = do(t, s, post("/render?format=png", twoCircles))
	assert.Equal(t, "MISS", resp.Header.Get(HeaderCache), "format is part of the key")

	resp, _ = do(t, s, post("/render", "shapes: [{kind: hexagon}]"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ready struct {
		Status string
		Cache  struct{ Entries, Hits int64 }
	}
	require.NoError(t, json.Unmarshal(body, &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.EqualValues(t, 2, ready.Cache.Entries)
	assert.EqualValues(t, 1, ready.Cache.Hits)
}

func TestRenderDefaultCanvas(t *testing.T) {
	s := New(Options{DefaultWidth: decimal.New(40), DefaultHeight: decimal.New(20)})
	resp, body := do(t, s, post("/render", "shapes: [{kind: circle}]"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `width="40" height="20"`)
	assert.Contains(t, string(body), `<circle cx="20" cy="10" r="10"`)

	// a canvas in the scene wins over the default
	resp, body = do(t, s, post("/render", twoCircles))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `width="100" height="100"`)
}
