/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"

	"svgdraw/internal/decimal"
)

// Line runs corner to corner across its bounding box. The signs of dx and dy
// choose the diagonal: the line starts at center-(dx,dy)/2 and ends at
// center+(dx,dy)/2 in implicit space. A zero component gives a horizontal or
// vertical line.
type Line struct {
	Shape
	sx, sy int
}

// NewLine returns a line spanning dx by dy implicit units.
func NewLine(dx, dy decimal.Decimal) *Line {
	l := &Line{Shape: newShape(), sx: dx.Sign(), sy: dy.Sign()}
	l.iw, l.ih = dx.Abs(), dy.Abs()
	return l
}

func (l *Line) Kind() string { return "line" }

// Direction returns the signs of the line's x and y components.
func (l *Line) Direction() (sx, sy int) { return l.sx, l.sy }

// Endpoints returns the explicit start and end points. Explicit space is
// y-down, so an upward line has y2 < y1.
func (l *Line) Endpoints() (x1, y1, x2, y2 decimal.Decimal, err error) {
	if _, err = l.explicit(); err != nil {
		return
	}
	hw, hh := l.ew.Half(), l.eh.Half()
	x1, x2 = l.ex, l.ex
	y1, y2 = l.ey, l.ey
	switch {
	case l.sx > 0:
		x1, x2 = l.ex.Sub(hw), l.ex.Add(hw)
	case l.sx < 0:
		x1, x2 = l.ex.Add(hw), l.ex.Sub(hw)
	}
	switch {
	case l.sy > 0:
		y1, y2 = l.ey.Add(hh), l.ey.Sub(hh)
	case l.sy < 0:
		y1, y2 = l.ey.Sub(hh), l.ey.Add(hh)
	}
	return
}

func (l *Line) SVG() (string, error) {
	x1, y1, x2, y2, err := l.Endpoints()
	if err != nil {
		return "", fmt.Errorf("line: %w", err)
	}
	return newElement("line").
		num("x1", x1).
		num("y1", y1).
		num("x2", x2).
		num("y2", y2).
		style(&l.Shape).
		close(), nil
}
