/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	applog "svgdraw/internal/log"
)

const maxRequestIDLen = 128

// requestID reuses an incoming X-Request-ID or generates a UUID, echoes it on
// the response and attaches it to the request context for logging.
func requestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.SetUserContext(applog.WithContextAttrs(c.UserContext(), slog.String("request_id", id)))
		return c.Next()
	}
}

// accessLog writes one record per request after the handler chain has run.
// Errors are rendered by the app error handler before logging.
func accessLog(l *slog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		// Run the error handler here so the logged status is the one sent.
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		lvl := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			lvl = slog.LevelWarn
		}
		l.Log(c.UserContext(), lvl, "request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Int("bytes", len(c.Response().Body())),
			slog.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
