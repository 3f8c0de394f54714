/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"svgdraw/internal/config"
	"svgdraw/internal/crash"
	applog "svgdraw/internal/log"
	"svgdraw/internal/textlayout"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	info := &crash.Info{}
	defer crash.Recover(info)

	root := newRootCommand(info)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// app carries the state shared by all subcommands once the root has loaded
// the configuration.
type app struct {
	cfg        config.AppConfig
	configPath string
	logLevel   string
	info       *crash.Info
	provider   textlayout.Provider
}

func newRootCommand(info *crash.Info) *cobra.Command {
	a := &app{info: info}

	rootCmd := &cobra.Command{
		Use:   "svgdraw",
		Short: "Lay out shapes by adjacency and render them to SVG, PNG or PDF",
		Long: `svgdraw reads scene files describing circles, rectangles, lines and text
placed relative to each other, fits them into a canvas and writes the result.

Scenes are YAML (or JSON). Sizes are abstract units; the canvas is in pixels.`,
		Example: `  svgdraw render scene.yaml -o out.svg
  svgdraw png scene.yaml -o out.png --width 640 --height 480
  svgdraw serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			info.Command = cmd.Name()
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: per-user config location or $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")

	rootCmd.AddCommand(newRenderCommand(a, "render", ""))
	rootCmd.AddCommand(newRenderCommand(a, "png", "png"))
	rootCmd.AddCommand(newRenderCommand(a, "pdf", "pdf"))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// setup loads the configuration, initialises logging from it and installs the
// configured font as the default text provider.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	opts := a.cfg.Logging.Options()
	if a.logLevel != "" {
		opts.Level = a.logLevel
	}
	opts.Output = cmd.ErrOrStderr()
	applog.Init(opts)

	l := applog.WithComponent("cli")
	a.provider = textlayout.BasicProvider{}
	if f := strings.TrimSpace(a.cfg.Text.FontFile); f != "" {
		lib := textlayout.NewFontLibrary()
		if err := lib.LoadFile(a.cfg.Text.FontFamily, f); err != nil {
			l.Warn("font not loaded, using built-in face", slog.String("file", f), slog.Any("err", err))
		} else {
			a.provider = textlayout.OTProvider{Lib: lib, DPI: a.cfg.Text.DPI, Fallback: textlayout.BasicProvider{}}
		}
	}
	textlayout.SetDefault(a.provider)
	l.Debug("start", slog.String("command", cmd.Name()))
	return nil
}
