/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes scene rendering over HTTP.
//
//	POST /render?width=&height=&format=svg|png|pdf   scene document in the body
//	GET  /health/live
//	GET  /health/ready
//
// Every drawing is built from scratch for its request; nothing but the
// optional render cache is shared between requests.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"svgdraw/internal/decimal"
	"svgdraw/internal/export"
	applog "svgdraw/internal/log"
	"svgdraw/internal/storage"
	"svgdraw/internal/textlayout"
	"svgdraw/internal/version"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// Options configure a Server. Zero durations and limits fall back to fiber's defaults.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int

	// DefaultWidth and DefaultHeight, when both positive, size scenes that
	// carry no canvas and get no width/height query.
	DefaultWidth, DefaultHeight decimal.Decimal

	// Context is the decimal context for layout arithmetic.
	Context decimal.Context
	// Provider measures text; textlayout.Default() if nil.
	Provider textlayout.Provider
	// PNG tunes PNG responses.
	PNG export.PNGOptions
	// Cache, when set, stores rendered responses.
	Cache *storage.Cache
}

type Server struct {
	app  *fiber.App
	opts Options
	log  *slog.Logger
}

// New builds the fiber app with its middleware and routes.
func New(opts Options) *Server {
	s := &Server{opts: opts, log: applog.WithComponent("server")}
	s.app = fiber.New(fiber.Config{
		AppName:      "svgdraw " + version.String(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: s.handleError,
	})

	s.app.Use(requestID())
	s.app.Use(accessLog(s.log))
	s.app.Use(recover.New())

	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.Get("/health/ready", s.ready)
	s.app.Post("/render", s.render)
	return s
}

// App exposes the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Run serves on opts.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", addr))
		errc <- s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func (s *Server) ready(c fiber.Ctx) error {
	if s.opts.Cache == nil {
		return c.JSON(fiber.Map{"status": "ready", "cache": "disabled"})
	}
	st, err := s.opts.Cache.Stats(c.UserContext())
	if err != nil {
		s.log.WarnContext(c.UserContext(), "cache not ready", slog.Any("err", err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ready", "cache": fiber.Map{"entries": st.Entries, "bytes": st.Bytes, "hits": st.Hits}})
}

// handleError turns handler errors into JSON bodies. Input problems map to 400,
// fiber errors keep their code, everything else is a 500.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case isBadRequest(err):
		code = fiber.StatusBadRequest
	}
	if code >= fiber.StatusInternalServerError {
		s.log.ErrorContext(c.UserContext(), "request failed", slog.Any("err", err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
