/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"fmt"
	"strings"

	"svgdraw/internal/decimal"
	applog "svgdraw/internal/log"
	"svgdraw/internal/textlayout"
	"svgdraw/internal/vector"
)

var (
	ErrUnknownShape      = errors.New("unknown shape reference")
	ErrDuplicateID       = errors.New("duplicate shape id")
	ErrMultipleRelations = errors.New("more than one relation on a shape")
	ErrUnknownKind       = errors.New("unknown shape kind")
)

// Options tune Build. The zero value uses the default decimal context and
// text provider and keeps the document's canvas.
type Options struct {
	Context  decimal.Context
	Provider textlayout.Provider
	// Width and Height, when both positive, replace the document canvas.
	Width, Height decimal.Decimal
}

func (o Options) canvas(doc *Document) (w, h decimal.Decimal, ok bool) {
	if o.Width.Sign() > 0 && o.Height.Sign() > 0 {
		return o.Width, o.Height, true
	}
	if doc.Canvas != nil {
		return doc.Canvas.Width, doc.Canvas.Height, true
	}
	return decimal.Zero, decimal.Zero, false
}

// Build creates the shapes of doc in order, resolves their relations and adds
// them to a new Drawing. The canvas, when known, is applied last.
func Build(doc *Document, opts Options) (*vector.Drawing, error) {
	if doc == nil {
		return nil, &ValidationError{Problems: []string{"empty document"}}
	}
	p := opts.Provider
	if p == nil {
		p = textlayout.Default()
	}
	d := vector.NewDrawingContext(opts.Context)

	declared := make(map[string]bool, len(doc.Shapes))
	for _, s := range doc.Shapes {
		if s.ID != "" {
			declared[s.ID] = true
		}
	}

	byID := make(map[string]vector.Node, len(doc.Shapes))
	for i, spec := range doc.Shapes {
		where := fmt.Sprintf("shapes[%d]", i)
		if spec.ID != "" {
			where = fmt.Sprintf("shapes[%d] %q", i, spec.ID)
			if _, dup := byID[spec.ID]; dup {
				return nil, fmt.Errorf("%s: %w", where, ErrDuplicateID)
			}
		}
		n, err := newNode(spec, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		if spec.ID != "" {
			byID[spec.ID] = n
		}
		if err := relate(n, spec, byID, declared); err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		if err := d.Add(n); err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
	}

	if w, h, ok := opts.canvas(doc); ok {
		if err := d.SetExplicitDimensions(w, h); err != nil {
			return nil, fmt.Errorf("canvas: %w", err)
		}
	}
	applog.WithOperation(applog.WithComponent("scene"), "build").
		Debug("scene built", "shapes", d.Len(), "ids", len(byID))
	return d, nil
}

func newNode(spec ShapeSpec, p textlayout.Provider) (vector.Node, error) {
	var n vector.Node
	switch spec.Kind {
	case "circle":
		if spec.Radius != nil {
			c, err := vector.NewCircleRadius(*spec.Radius)
			if err != nil {
				return nil, err
			}
			n = c
		} else {
			n = vector.NewCircle()
		}
	case "rectangle":
		r, err := vector.NewRectangleSized(orOne(spec.Width), orOne(spec.Height))
		if err != nil {
			return nil, err
		}
		n = r
	case "line":
		n = vector.NewLine(orOne(spec.DX), orOne(spec.DY))
	case "text":
		n = vector.NewTextWith(p, textlayout.FontSpec{Family: spec.Font}, spec.Text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}

	s := n.Base()
	s.SetID(spec.ID)
	if f := strings.TrimSpace(spec.Fill); f != "" {
		if strings.EqualFold(f, "none") {
			s.SetFill(vector.NoFill())
		} else {
			c, err := vector.ParseColor(f)
			if err != nil {
				return nil, fmt.Errorf("fill: %w", err)
			}
			s.SetFill(vector.Fill{Color: c, Enabled: true})
		}
	}
	if spec.Stroke != nil {
		st, err := strokeOf(s.Stroke(), *spec.Stroke)
		if err != nil {
			return nil, err
		}
		s.SetStroke(st)
	}
	return n, nil
}

func strokeOf(base vector.Stroke, spec StrokeSpec) (vector.Stroke, error) {
	st := base
	st.Enabled = true
	if spec.Enabled != nil {
		st.Enabled = *spec.Enabled
	}
	if spec.Color != "" {
		c, err := vector.ParseColor(spec.Color)
		if err != nil {
			return st, fmt.Errorf("stroke: %w", err)
		}
		st.Color = c
	}
	if spec.Width != nil {
		st.Width = *spec.Width
	}
	switch spec.Cap {
	case "", "butt":
		st.Cap = vector.CapButt
	case "round":
		st.Cap = vector.CapRound
	case "square":
		st.Cap = vector.CapSquare
	default:
		return st, fmt.Errorf("stroke: unknown cap %q", spec.Cap)
	}
	return st, nil
}

func relate(n vector.Node, spec ShapeSpec, byID map[string]vector.Node, declared map[string]bool) error {
	type rel struct {
		dir vector.Direction
		ref string
	}
	var rels []rel
	for _, r := range []rel{
		{vector.RightOf, spec.RightOf},
		{vector.LeftOf, spec.LeftOf},
		{vector.Above, spec.Above},
		{vector.Below, spec.Below},
	} {
		if r.ref != "" {
			rels = append(rels, r)
		}
	}
	switch len(rels) {
	case 0:
		return nil
	case 1:
	default:
		return ErrMultipleRelations
	}
	r := rels[0]
	target, ok := byID[r.ref]
	if !ok {
		if declared[r.ref] {
			return fmt.Errorf("%w: %s %q is declared later", ErrUnknownShape, r.dir, r.ref)
		}
		return fmt.Errorf("%w: %s %q", ErrUnknownShape, r.dir, r.ref)
	}
	return n.Base().SetAdjacent(r.dir, target)
}

func orOne(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.One
	}
	return *d
}
