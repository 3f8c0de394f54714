/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import (
	"fmt"
	"strconv"
	"strings"

	"svgdraw/internal/decimal"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

var namedColors = map[string]Color{
	"black": Black,
	"white": White,
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

// Hex returns the color as #rrggbb; alpha is emitted separately as an opacity.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa and a few color keywords.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	h := s[1:]
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

type Fill struct {
	Color   Color
	Enabled bool
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return "butt"
	}
}

// Stroke width is in output pixels and is not scaled by the fit.
type Stroke struct {
	Color   Color
	Width   decimal.Decimal
	Cap     LineCap
	Enabled bool
}

// DefaultStroke is a 1px black outline.
func DefaultStroke() Stroke { return Stroke{Color: Black, Width: decimal.One, Enabled: true} }

// NoFill leaves the interior transparent.
func NoFill() Fill { return Fill{} }
