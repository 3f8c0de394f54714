/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Single-line text measurement. A Text shape is one line tall in implicit
// units, so all the drawing engine needs from a font is the ratio of a
// string's advance to its line height.

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"svgdraw/internal/decimal"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float32
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// LineHeight is the height of one line without the gap.
func (m Metrics) LineHeight() float32 { return m.Ascent + m.Descent }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13; every glyph advances 7px on
// a 13px line, which keeps measurements deterministic.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

var (
	defMu sync.RWMutex
	def   Provider = BasicProvider{}
)

// Default returns the provider used by shapes that are not given one.
func Default() Provider {
	defMu.RLock()
	defer defMu.RUnlock()
	return def
}

// SetDefault replaces the default provider; nil restores BasicProvider.
func SetDefault(p Provider) {
	if p == nil {
		p = BasicProvider{}
	}
	defMu.Lock()
	def = p
	defMu.Unlock()
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s) >> 6) // fixed.Int26_6 to px
}

// Measure returns the advance width and line height of s on a single line.
func Measure(provider Provider, spec FontSpec, s string) (w, h float32) {
	if provider == nil {
		provider = Default()
	}
	face, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	return advance(d, s), met.LineHeight()
}

// Aspect returns width/height of s set on one line, the implicit width of a
// text shape whose implicit height is 1. An empty string has aspect zero.
func Aspect(provider Provider, spec FontSpec, s string) decimal.Decimal {
	w, h := Measure(provider, spec, s)
	if w <= 0 || h <= 0 {
		return decimal.Zero
	}
	r, err := decimal.DefaultContext.Div(decimal.NewFromFloat(float64(w)), decimal.NewFromFloat(float64(h)))
	if err != nil {
		return decimal.Zero
	}
	return r
}
