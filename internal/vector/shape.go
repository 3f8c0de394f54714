/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Shapes live in two coordinate spaces. Implicit coordinates are unit based,
// centered on the origin and y-up; shapes are positioned there relative to
// each other. Explicit coordinates are output pixels, y-down and non-negative;
// a Drawing assigns them when its dimensions are set.

import (
	"errors"
	"fmt"

	"svgdraw/internal/decimal"
)

var (
	ErrNilShape        = errors.New("shape is nil")
	ErrSelfAdjacent    = errors.New("shape cannot be adjacent to itself")
	ErrNegativeSize    = errors.New("implicit size must not be negative")
	ErrDimensionsUnset = errors.New("explicit dimensions are not set")
)

// Node is a drawable shape. Every concrete shape embeds Shape, which
// provides Base and the geometry; the concrete type adds Kind and SVG.
type Node interface {
	Base() *Shape
	Kind() string
	SVG() (string, error)
}

// Shape is the bounding box every drawable shares: an implicit center and
// size, an optional adjacency to one neighbour, and the explicit geometry
// assigned by the owning Drawing.
type Shape struct {
	id string

	iw, ih decimal.Decimal
	ix, iy decimal.Decimal
	adj    *Adjacency

	ew, eh     decimal.Decimal
	ex, ey     decimal.Decimal
	hasX, hasY bool

	fill   Fill
	stroke Stroke
	owner  *Drawing
}

func newShape() Shape {
	return Shape{iw: decimal.One, ih: decimal.One, stroke: DefaultStroke()}
}

func (s *Shape) Base() *Shape { return s }

// ID is an optional name emitted as the SVG id attribute.
func (s *Shape) ID() string      { return s.id }
func (s *Shape) SetID(id string) { s.id = id }

func (s *Shape) Fill() Fill          { return s.fill }
func (s *Shape) Stroke() Stroke      { return s.stroke }
func (s *Shape) SetFill(f Fill)      { s.fill = f }
func (s *Shape) SetStroke(st Stroke) { s.stroke = st }

// SetImplicitSize changes the implicit width and height. Neighbours already
// placed against this shape keep their positions.
func (s *Shape) SetImplicitSize(w, h decimal.Decimal) error {
	if w.IsNegative() || h.IsNegative() {
		return fmt.Errorf("%w: %s x %s", ErrNegativeSize, w, h)
	}
	s.iw, s.ih = w, h
	return nil
}

// SetImplicitPosition moves the implicit center.
func (s *Shape) SetImplicitPosition(x, y decimal.Decimal) { s.ix, s.iy = x, y }

func (s *Shape) ImplicitWidth() decimal.Decimal      { return s.iw }
func (s *Shape) ImplicitHeight() decimal.Decimal     { return s.ih }
func (s *Shape) ImplicitHalfWidth() decimal.Decimal  { return s.iw.Half() }
func (s *Shape) ImplicitHalfHeight() decimal.Decimal { return s.ih.Half() }
func (s *Shape) ImplicitX() decimal.Decimal          { return s.ix }
func (s *Shape) ImplicitY() decimal.Decimal          { return s.iy }

func (s *Shape) ImplicitXMin() decimal.Decimal { return s.ix.Sub(s.ImplicitHalfWidth()) }
func (s *Shape) ImplicitXMax() decimal.Decimal { return s.ix.Add(s.ImplicitHalfWidth()) }
func (s *Shape) ImplicitYMin() decimal.Decimal { return s.iy.Sub(s.ImplicitHalfHeight()) }
func (s *Shape) ImplicitYMax() decimal.Decimal { return s.iy.Add(s.ImplicitHalfHeight()) }

// ImplicitBounds returns the implicit extents (y-up).
func (s *Shape) ImplicitBounds() Box {
	return Box{XMin: s.ImplicitXMin(), XMax: s.ImplicitXMax(), YMin: s.ImplicitYMin(), YMax: s.ImplicitYMax()}
}

func (s *Shape) SetRightOf(other Node) error { return s.setAdjacent(RightOf, other) }
func (s *Shape) SetLeftOf(other Node) error  { return s.setAdjacent(LeftOf, other) }
func (s *Shape) SetAbove(other Node) error   { return s.setAdjacent(Above, other) }
func (s *Shape) SetBelow(other Node) error   { return s.setAdjacent(Below, other) }

// SetAdjacent places s on side dir of other.
//
// The position is resolved now, from other's current extents, and only along
// the axis of dir. Later changes to other do not move s. The relation replaces
// any earlier one.
func (s *Shape) SetAdjacent(dir Direction, other Node) error { return s.setAdjacent(dir, other) }

func (s *Shape) setAdjacent(dir Direction, other Node) error {
	if other == nil {
		return ErrNilShape
	}
	o := other.Base()
	if o == s {
		return fmt.Errorf("%w: %s", ErrSelfAdjacent, dir)
	}
	switch dir {
	case RightOf:
		s.ix = o.ImplicitXMax().Add(s.ImplicitHalfWidth())
	case LeftOf:
		s.ix = o.ImplicitXMin().Sub(s.ImplicitHalfWidth())
	case Above:
		s.iy = o.ImplicitYMax().Add(s.ImplicitHalfHeight())
	case Below:
		s.iy = o.ImplicitYMin().Sub(s.ImplicitHalfHeight())
	default:
		return fmt.Errorf("invalid direction %s", dir)
	}
	s.adj = &Adjacency{Dir: dir, Target: other}
	return nil
}

// Adjacency returns the current relation, or nil.
func (s *Shape) Adjacency() *Adjacency { return s.adj }

func (s *Shape) RightOf() Node { return s.neighbour(RightOf) }
func (s *Shape) LeftOf() Node  { return s.neighbour(LeftOf) }
func (s *Shape) Above() Node   { return s.neighbour(Above) }
func (s *Shape) Below() Node   { return s.neighbour(Below) }

func (s *Shape) neighbour(dir Direction) Node {
	if s.adj == nil || s.adj.Dir != dir {
		return nil
	}
	return s.adj.Target
}

// Explicit geometry. The boolean result is false until the owning Drawing
// has set the dimension of that axis.

func (s *Shape) ExplicitWidth() (decimal.Decimal, bool)  { return s.ew, s.hasX }
func (s *Shape) ExplicitHeight() (decimal.Decimal, bool) { return s.eh, s.hasY }
func (s *Shape) ExplicitX() (decimal.Decimal, bool)      { return s.ex, s.hasX }
func (s *Shape) ExplicitY() (decimal.Decimal, bool)      { return s.ey, s.hasY }

func (s *Shape) ExplicitLeft() (decimal.Decimal, bool)  { return s.ex.Sub(s.ew.Half()), s.hasX }
func (s *Shape) ExplicitRight() (decimal.Decimal, bool) { return s.ex.Add(s.ew.Half()), s.hasX }

// ExplicitTop is the smaller y value, since explicit space is y-down.
func (s *Shape) ExplicitTop() (decimal.Decimal, bool)    { return s.ey.Sub(s.eh.Half()), s.hasY }
func (s *Shape) ExplicitBottom() (decimal.Decimal, bool) { return s.ey.Add(s.eh.Half()), s.hasY }

// ExplicitBounds returns the pixel extents; YMin is the top edge.
func (s *Shape) ExplicitBounds() (Box, bool) {
	if !s.hasX || !s.hasY {
		return Box{}, false
	}
	return Box{
		XMin: s.ex.Sub(s.ew.Half()), XMax: s.ex.Add(s.ew.Half()),
		YMin: s.ey.Sub(s.eh.Half()), YMax: s.ey.Add(s.eh.Half()),
	}, true
}

func (s *Shape) setExplicitX(w, x decimal.Decimal) { s.ew, s.ex, s.hasX = w, x, true }
func (s *Shape) setExplicitY(h, y decimal.Decimal) { s.eh, s.ey, s.hasY = h, y, true }

// explicit returns the explicit bounds or ErrDimensionsUnset. Used by SVG.
func (s *Shape) explicit() (Box, error) {
	b, ok := s.ExplicitBounds()
	if !ok {
		return Box{}, ErrDimensionsUnset
	}
	return b, nil
}
