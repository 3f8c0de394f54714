/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"svgdraw/internal/config"
	"svgdraw/internal/decimal"
	"svgdraw/internal/export"
	applog "svgdraw/internal/log"
	"svgdraw/internal/scene"
	"svgdraw/internal/server"
	"svgdraw/internal/storage"
	"svgdraw/internal/vector"
	"svgdraw/internal/version"
)

type renderFlags struct {
	output     string
	format     string
	width      string
	height     string
	scale      float64
	background string
	title      string
}

// newRenderCommand builds render, png and pdf. A non-empty fixed format
// pins the output format; otherwise it comes from --format or the -o extension.
func newRenderCommand(a *app, use, fixed string) *cobra.Command {
	var f renderFlags
	short := "Render a scene to SVG, PNG or PDF"
	if fixed != "" {
		short = "Render a scene to " + fixed
	}
	cmd := &cobra.Command{
		Use:   use + " <scene|->",
		Short: short,
		Example: fmt.Sprintf(`  svgdraw %s scene.yaml -o out.%s
  cat scene.yaml | svgdraw %[1]s - --width 400 --height 300 > out.%[2]s`, use, orDefault(fixed, "svg")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.info.Scene = args[0]
			format, err := f.resolveFormat(fixed)
			if err != nil {
				return err
			}
			d, err := a.buildDrawing(cmd, args[0], f.width, f.height)
			if err != nil {
				return err
			}
			opts, err := f.exportOptions(a)
			if err != nil {
				return err
			}
			if f.output == "" || f.output == "-" {
				return export.Encode(cmd.OutOrStdout(), d, format, opts)
			}
			if err := export.Write(d, f.output, format, opts); err != nil {
				return err
			}
			applog.WithComponent("cli").Info("rendered",
				slog.String("scene", args[0]), slog.String("out", f.output), slog.String("format", string(format)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	if fixed == "" {
		cmd.Flags().StringVar(&f.format, "format", "", "svg|png|pdf (default: from the output extension, else svg)")
	}
	cmd.Flags().StringVar(&f.width, "width", "", "canvas width in pixels (overrides the scene)")
	cmd.Flags().StringVar(&f.height, "height", "", "canvas height in pixels (overrides the scene)")
	if fixed == "" || fixed == "png" {
		cmd.Flags().Float64Var(&f.scale, "scale", 1, "PNG pixel scale")
		cmd.Flags().StringVar(&f.background, "background", "", "PNG background color, e.g. #ffffff (default: transparent)")
	}
	if fixed == "" || fixed == "pdf" {
		cmd.Flags().StringVar(&f.title, "title", "", "PDF document title")
	}
	return cmd
}

func (f renderFlags) resolveFormat(fixed string) (export.Format, error) {
	switch {
	case fixed != "":
		return export.ParseFormat(fixed)
	case f.format != "":
		return export.ParseFormat(f.format)
	case f.output != "" && f.output != "-":
		return export.FormatFromPath(f.output)
	default:
		return export.FormatSVG, nil
	}
}

func (f renderFlags) exportOptions(a *app) (export.Options, error) {
	opts := export.Options{
		PNG: export.PNGOptions{Scale: f.scale, Provider: a.provider},
		PDF: export.PDFOptions{Title: f.title, Author: "svgdraw " + version.String()},
	}
	if f.background != "" {
		c, err := vector.ParseColor(f.background)
		if err != nil {
			return opts, fmt.Errorf("background: %w", err)
		}
		opts.PNG.Background = color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return opts, nil
}

// readScene reads path, or stdin for "-".
func (a *app) readScene(cmd *cobra.Command, path string) (*scene.Document, error) {
	if path != "-" {
		return scene.Load(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return scene.Parse(data)
}

// buildDrawing loads the scene and fits it to, in order of preference, the
// flags, the scene canvas or the configured default canvas.
func (a *app) buildDrawing(cmd *cobra.Command, path, width, height string) (*vector.Drawing, error) {
	doc, err := a.readScene(cmd, path)
	if err != nil {
		return nil, err
	}
	opts := scene.Options{Context: a.cfg.Decimal.Context(), Provider: a.provider}
	switch {
	case width != "" || height != "":
		if width == "" || height == "" {
			return nil, errors.New("--width and --height must be given together")
		}
		if opts.Width, err = decimal.Parse(width); err != nil {
			return nil, fmt.Errorf("--width: %w", err)
		}
		if opts.Height, err = decimal.Parse(height); err != nil {
			return nil, fmt.Errorf("--height: %w", err)
		}
		if opts.Width.Sign() <= 0 || opts.Height.Sign() <= 0 {
			return nil, fmt.Errorf("%w: canvas must be positive", vector.ErrInvalidDimension)
		}
	case doc.Canvas == nil && a.cfg.Canvas.Width > 0 && a.cfg.Canvas.Height > 0:
		opts.Width = decimal.New(int64(a.cfg.Canvas.Width))
		opts.Height = decimal.New(int64(a.cfg.Canvas.Height))
	}
	return scene.Build(doc, opts)
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene>...",
		Short: "Check scene files against the schema and resolve their relations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, p := range args {
				a.info.Scene = p
				doc, err := a.readScene(cmd, p)
				if err == nil {
					_, err = scene.Build(doc, scene.Options{Context: a.cfg.Decimal.Context(), Provider: a.provider})
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", p, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d shapes)\n", p, len(doc.Shapes))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenes invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /render over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc := a.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}
			opts := server.Options{
				Addr:          sc.Addr,
				ReadTimeout:   sc.ReadTimeout(),
				WriteTimeout:  sc.WriteTimeout(),
				BodyLimit:     sc.BodyLimitBytes,
				DefaultWidth:  decimal.New(int64(a.cfg.Canvas.Width)),
				DefaultHeight: decimal.New(int64(a.cfg.Canvas.Height)),
				Context:       a.cfg.Decimal.Context(),
				Provider:      a.provider,
			}
			if a.cfg.Cache.Enabled {
				cache, err := openCache(ctx, a.cfg.Cache)
				if err != nil {
					return err
				}
				defer cache.Close()
				opts.Cache = cache
			}
			return server.New(opts).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}

func openCache(ctx context.Context, cc config.CacheConfig) (*storage.Cache, error) {
	path := cc.Path
	if path == "" {
		path = config.DefaultCachePath()
	}
	return storage.Open(ctx, path, cc.MaxBytes)
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the defaults to the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(p); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", p)
			}
			if err := config.Save(p, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", p)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPath()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "svgdraw %s (go: %s)\n", version.String(), runtime.Version())
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
