/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"svgdraw/internal/decimal"
	applog "svgdraw/internal/log"
)

var (
	ErrForeignShape      = errors.New("shape belongs to another drawing")
	ErrDegenerateContent = errors.New("contents have zero implicit width or height")
	ErrInvalidDimension  = errors.New("invalid explicit dimension")
	ErrInvariant         = errors.New("layout invariant violated")
)

// Drawing owns a set of shapes and maps their implicit layout onto an
// explicit canvas.
//
// SetExplicitDimensions fits the contents into the requested canvas keeping
// the implicit aspect ratio, and centers the fitted box; the unused space on
// the unconstrained axis becomes a margin on both sides. SetExplicitWidth and
// SetExplicitHeight scale one axis to exactly the given size with no margin.
//
// A Drawing is not safe for concurrent use.
type Drawing struct {
	ctx decimal.Context

	shapes  []Node
	members map[*Shape]struct{}

	ew, eh     decimal.Decimal
	hasW, hasH bool
	mx, my     decimal.Decimal

	// fit is the last SetExplicitDimensions request; nil once an axis was set
	// directly.
	fit *[2]decimal.Decimal
}

func NewDrawing() *Drawing { return NewDrawingContext(decimal.DefaultContext) }

// NewDrawingContext uses ctx for every division and fuzzy comparison.
func NewDrawingContext(ctx decimal.Context) *Drawing {
	return &Drawing{ctx: ctx.Normalize(), members: make(map[*Shape]struct{})}
}

func (d *Drawing) Context() decimal.Context { return d.ctx }

// Add appends shapes in order. Adding a member again is a no-op. When the
// drawing already has explicit dimensions, the layout is recomputed so the
// new shapes take part in the fit. On error the drawing is left as it was.
func (d *Drawing) Add(nodes ...Node) error {
	var fresh []Node
	seen := make(map[*Shape]struct{}, len(nodes))
	for _, n := range nodes {
		if n == nil || n.Base() == nil {
			return ErrNilShape
		}
		s := n.Base()
		if s.owner != nil && s.owner != d {
			return fmt.Errorf("%w: %s", ErrForeignShape, n.Kind())
		}
		if _, ok := d.members[s]; ok {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return nil
	}

	prev := len(d.shapes)
	for _, n := range fresh {
		s := n.Base()
		s.owner = d
		d.members[s] = struct{}{}
		d.shapes = append(d.shapes, n)
	}
	err := d.relayout()
	if err == nil {
		return nil
	}
	for _, n := range fresh {
		s := n.Base()
		s.owner = nil
		s.hasX, s.hasY = false, false
		delete(d.members, s)
	}
	clear(d.shapes[prev:])
	d.shapes = d.shapes[:prev]
	if rerr := d.relayout(); rerr != nil {
		applog.WithComponent("vector").Warn("restore layout after failed add", "err", rerr)
	}
	return err
}

// Shapes returns the members in insertion order.
func (d *Drawing) Shapes() []Node {
	out := make([]Node, len(d.shapes))
	copy(out, d.shapes)
	return out
}

func (d *Drawing) Len() int { return len(d.shapes) }

// ImplicitBounds is the union of the member extents; zero when empty.
func (d *Drawing) ImplicitBounds() Box {
	if len(d.shapes) == 0 {
		return Box{}
	}
	b := d.shapes[0].Base().ImplicitBounds()
	for _, n := range d.shapes[1:] {
		b = b.Union(n.Base().ImplicitBounds())
	}
	return b
}

func (d *Drawing) ImplicitXMin() decimal.Decimal   { return d.ImplicitBounds().XMin }
func (d *Drawing) ImplicitXMax() decimal.Decimal   { return d.ImplicitBounds().XMax }
func (d *Drawing) ImplicitYMin() decimal.Decimal   { return d.ImplicitBounds().YMin }
func (d *Drawing) ImplicitYMax() decimal.Decimal   { return d.ImplicitBounds().YMax }
func (d *Drawing) ImplicitWidth() decimal.Decimal  { return d.ImplicitBounds().Width() }
func (d *Drawing) ImplicitHeight() decimal.Decimal { return d.ImplicitBounds().Height() }

// ExplicitWidth is the fitted content width, without margins.
func (d *Drawing) ExplicitWidth() (decimal.Decimal, bool)  { return d.ew, d.hasW }
func (d *Drawing) ExplicitHeight() (decimal.Decimal, bool) { return d.eh, d.hasH }

// CanvasWidth is the width reported by the SVG root: the fitted width plus
// both margins.
func (d *Drawing) CanvasWidth() (decimal.Decimal, bool) {
	return d.ew.Add(d.mx).Add(d.mx), d.hasW
}

func (d *Drawing) CanvasHeight() (decimal.Decimal, bool) {
	return d.eh.Add(d.my).Add(d.my), d.hasH
}

// SetExplicitDimensions fits the contents into a w by h canvas. Calling it
// again with the same arguments reproduces the same geometry.
func (d *Drawing) SetExplicitDimensions(w, h decimal.Decimal) error {
	if w.IsNegative() || h.IsNegative() {
		return fmt.Errorf("%w: %s x %s", ErrInvalidDimension, w, h)
	}
	l := applog.WithOperation(applog.WithComponent("vector"), "fit")
	if len(d.shapes) == 0 {
		d.ew, d.eh, d.hasW, d.hasH = w, h, true, true
		d.mx, d.my = decimal.Zero, decimal.Zero
		d.fit = &[2]decimal.Decimal{w, h}
		l.Debug("empty drawing", "width", w.String(), "height", h.String())
		return nil
	}
	if w.IsZero() || h.IsZero() {
		return fmt.Errorf("%w: %s x %s", ErrInvalidDimension, w, h)
	}
	b := d.ImplicitBounds()
	iw, ih := b.Width(), b.Height()
	if iw.IsZero() || ih.IsZero() {
		return fmt.Errorf("%w: %s x %s", ErrDegenerateContent, iw, ih)
	}
	iar, err := d.ctx.Div(iw, ih)
	if err != nil {
		return err
	}
	ear, err := d.ctx.Div(w, h)
	if err != nil {
		return err
	}

	var fw, fh decimal.Decimal
	if iar.CmpFuzzy(ear, d.ctx) > 0 {
		fw = w
		if fh, err = d.ctx.MulDiv(w, ih, iw); err != nil {
			return err
		}
	} else {
		fh = h
		if fw, err = d.ctx.MulDiv(h, iw, ih); err != nil {
			return err
		}
	}
	mx := decimal.Max(decimal.Zero, w.Sub(fw).Half())
	my := decimal.Max(decimal.Zero, h.Sub(fh).Half())

	if err := d.propagateX(b, fw, mx); err != nil {
		return err
	}
	if err := d.propagateY(b, fh, my); err != nil {
		return err
	}
	d.ew, d.eh, d.mx, d.my = fw, fh, mx, my
	d.hasW, d.hasH = true, true
	d.fit = &[2]decimal.Decimal{w, h}
	l.Debug("fitted",
		"shapes", len(d.shapes),
		"implicit_ar", iar.RoundSignificant(8).String(),
		"width", fw.String(), "height", fh.String(),
		"margin_x", mx.String(), "margin_y", my.String())
	return nil
}

// SetExplicitWidth scales the x axis so the contents are exactly w wide.
func (d *Drawing) SetExplicitWidth(w decimal.Decimal) error {
	if w.IsNegative() {
		return fmt.Errorf("%w: width %s", ErrInvalidDimension, w)
	}
	if err := d.propagateX(d.ImplicitBounds(), w, decimal.Zero); err != nil {
		return err
	}
	d.ew, d.hasW, d.mx, d.fit = w, true, decimal.Zero, nil
	return nil
}

// SetExplicitHeight scales the y axis so the contents are exactly h tall.
func (d *Drawing) SetExplicitHeight(h decimal.Decimal) error {
	if h.IsNegative() {
		return fmt.Errorf("%w: height %s", ErrInvalidDimension, h)
	}
	if err := d.propagateY(d.ImplicitBounds(), h, decimal.Zero); err != nil {
		return err
	}
	d.eh, d.hasH, d.my, d.fit = h, true, decimal.Zero, nil
	return nil
}

// relayout reapplies the current dimensions after the contents changed.
func (d *Drawing) relayout() error {
	if d.fit != nil {
		return d.SetExplicitDimensions(d.fit[0], d.fit[1])
	}
	b := d.ImplicitBounds()
	if d.hasW {
		if err := d.propagateX(b, d.ew, d.mx); err != nil {
			return err
		}
	}
	if d.hasH {
		if err := d.propagateY(b, d.eh, d.my); err != nil {
			return err
		}
	}
	return nil
}

// propagateX maps implicit x onto [margin, margin+ew]: the leftmost content
// edge lands on the margin.
func (d *Drawing) propagateX(b Box, ew, margin decimal.Decimal) error {
	iw := b.Width()
	for _, n := range d.shapes {
		s := n.Base()
		if iw.IsZero() {
			s.setExplicitX(decimal.Zero, decimal.Zero)
			continue
		}
		w, err := d.ctx.MulDiv(s.iw, ew, iw)
		if err != nil {
			return err
		}
		x, err := d.ctx.MulDiv(s.ix.Sub(b.XMin), ew, iw)
		if err != nil {
			return err
		}
		s.setExplicitX(w, x.Add(margin))
	}
	return nil
}

// propagateY maps implicit y onto [margin, margin+eh], inverting the axis so
// the topmost content edge lands on the margin.
func (d *Drawing) propagateY(b Box, eh, margin decimal.Decimal) error {
	ih := b.Height()
	for _, n := range d.shapes {
		s := n.Base()
		if ih.IsZero() {
			s.setExplicitY(decimal.Zero, decimal.Zero)
			continue
		}
		h, err := d.ctx.MulDiv(s.ih, eh, ih)
		if err != nil {
			return err
		}
		y, err := d.ctx.MulDiv(b.YMax.Sub(s.iy), eh, ih)
		if err != nil {
			return err
		}
		if y.IsNegative() {
			return fmt.Errorf("%w: explicit y %s for %s", ErrInvariant, y, n.Kind())
		}
		s.setExplicitY(h, y.Add(margin))
	}
	return nil
}

// SVG renders the drawing. Both explicit dimensions must be set.
func (d *Drawing) SVG() (string, error) {
	if !d.hasW || !d.hasH {
		return "", ErrDimensionsUnset
	}
	cw, _ := d.CanvasWidth()
	ch, _ := d.CanvasHeight()
	var sb strings.Builder
	sb.WriteString(svgProlog)
	sb.WriteString(newElement("svg").attr("xmlns", svgNS).num("width", cw).num("height", ch).open())
	for _, n := range d.shapes {
		frag, err := n.SVG()
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}

// SVGSized sets the dimensions and renders.
func (d *Drawing) SVGSized(w, h decimal.Decimal) (string, error) {
	if err := d.SetExplicitDimensions(w, h); err != nil {
		return "", err
	}
	return d.SVG()
}

// WriteFile writes the SVG text to path. Errors from the file system are
// returned as is.
func (d *Drawing) WriteFile(path string) error {
	s, err := d.SVG()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}
