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
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"svgdraw/internal/decimal"
	"svgdraw/internal/export"
	"svgdraw/internal/scene"
	"svgdraw/internal/storage"
	"svgdraw/internal/vector"
)

// HeaderCache reports HIT or MISS when the render cache is enabled.
const HeaderCache = "X-Cache"

// badRequest marks errors caused by the request itself.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func isBadRequest(err error) bool {
	var br badRequest
	if errors.As(err, &br) {
		return true
	}
	for _, target := range []error{
		vector.ErrDimensionsUnset,
		vector.ErrDegenerateContent,
		vector.ErrInvalidDimension,
		export.ErrEmptyCanvas,
		export.ErrUnknownFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type renderRequest struct {
	width, height decimal.Decimal
	format        export.Format
}

func parseRenderRequest(c fiber.Ctx) (renderRequest, error) {
	var rr renderRequest
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return rr, badRequest{err}
	}
	rr.format = f

	ws, hs := c.Query("width"), c.Query("height")
	if (ws == "") != (hs == "") {
		return rr, badRequest{errors.New("width and height must be given together")}
	}
	if ws == "" {
		return rr, nil
	}
	if rr.width, err = positive("width", ws); err != nil {
		return rr, err
	}
	if rr.height, err = positive("height", hs); err != nil {
		return rr, err
	}
	return rr, nil
}

func positive(name, s string) (decimal.Decimal, error) {
	d, err := decimal.Parse(s)
	if err != nil {
		return decimal.Zero, badRequest{fmt.Errorf("%s: %w", name, err)}
	}
	if d.Sign() <= 0 {
		return decimal.Zero, badRequest{fmt.Errorf("%s must be positive, got %s", name, s)}
	}
	return d, nil
}

func (s *Server) render(c fiber.Ctx) error {
	rr, err := parseRenderRequest(c)
	if err != nil {
		return err
	}
	// fiber reuses the body buffer after the handler returns
	body := bytes.Clone(c.Body())
	if len(bytes.TrimSpace(body)) == 0 {
		return badRequest{errors.New("scene body required")}
	}

	ctx := c.UserContext()
	gen := func(context.Context) ([]byte, error) { return s.renderScene(body, rr) }

	var out []byte
	if s.opts.Cache == nil {
		if out, err = gen(ctx); err != nil {
			return err
		}
	} else {
		key := storage.Key(body, rr.width, rr.height, string(rr.format))
		hit := true
		var genErr error
		out, err = s.opts.Cache.GetOrCreate(ctx, key, string(rr.format), func(ctx context.Context) ([]byte, error) {
			hit = false
			b, err := gen(ctx)
			genErr = err
			return b, err
		})
		switch {
		case genErr != nil:
			return genErr
		case err != nil:
			s.log.WarnContext(ctx, "render cache unavailable", slog.Any("err", err))
			hit = false
			if out, err = gen(ctx); err != nil {
				return err
			}
		}
		if hit {
			c.Set(HeaderCache, "HIT")
		} else {
			c.Set(HeaderCache, "MISS")
		}
	}

	c.Set(fiber.HeaderContentType, rr.format.ContentType())
	return c.Send(out)
}

func (s *Server) renderScene(body []byte, rr renderRequest) ([]byte, error) {
	doc, err := scene.Parse(body)
	if err != nil {
		return nil, badRequest{err}
	}
	w, h := rr.width, rr.height
	if w.Sign() == 0 && doc.Canvas == nil {
		w, h = s.opts.DefaultWidth, s.opts.DefaultHeight
	}
	d, err := scene.Build(doc, scene.Options{
		Context:  s.opts.Context,
		Provider: s.opts.Provider,
		Width:    w,
		Height:   h,
	})
	if err != nil {
		return nil, badRequest{err}
	}
	opts := export.Options{PNG: s.opts.PNG}
	if opts.PNG.Provider == nil {
		opts.PNG.Provider = s.opts.Provider
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, d, rr.format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
