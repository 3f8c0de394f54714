/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"svgdraw/internal/decimal"
	applog "svgdraw/internal/log"
	"svgdraw/internal/vector"
)

// PDFOptions sets document metadata.
type PDFOptions struct {
	Title  string
	Author string
}

// RenderPDF draws d on a single page the size of its canvas, one PDF point
// per pixel. Text uses the built-in Helvetica face.
func RenderPDF(w io.Writer, d *vector.Drawing, opt PDFOptions) error {
	cw, okw := d.CanvasWidth()
	ch, okh := d.CanvasHeight()
	if !okw || !okh {
		return vector.ErrDimensionsUnset
	}
	pw, ph := px(cw), px(ch)
	if pw <= 0 || ph <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrEmptyCanvas, pw, ph)
	}
	size := gofpdf.SizeType{Wd: pw, Ht: ph}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetCreator("svgdraw", false)
	pdf.AddPageFormat("", size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, n := range d.Shapes() {
		b, ok := n.Base().ExplicitBounds()
		if !ok {
			continue
		}
		s := n.Base()
		style := applyStyle(pdf, s.Fill(), s.Stroke())
		switch v := n.(type) {
		case *vector.Circle:
			r, _ := v.Radius()
			cx, _ := v.ExplicitX()
			cy, _ := v.ExplicitY()
			if style != "" {
				pdf.Circle(px(cx), px(cy), px(r), style)
			}
		case *vector.Rectangle:
			if style != "" {
				pdf.Rect(px(b.XMin), px(b.YMin), px(b.Width()), px(b.Height()), style)
			}
		case *vector.Line:
			x1, y1, x2, y2, err := v.Endpoints()
			if err == nil && s.Stroke().Enabled {
				pdf.Line(px(x1), px(y1), px(x2), px(y2))
			}
		case *vector.Text:
			size, _ := v.FontSize()
			x, _ := v.ExplicitX()
			y, _ := v.ExplicitY()
			c := s.Fill().Color
			pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
			pdf.SetFont("Helvetica", "", px(size))
			txt := tr(v.Content())
			tw := pdf.GetStringWidth(txt)
			// Helvetica cap height is about 0.7 em; shift the baseline so the
			// glyphs are vertically centered on y.
			pdf.Text(px(x)-tw/2, px(y)+px(size)*0.35, txt)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// applyStyle sets pdf colors and line attributes and returns the gofpdf
// style string: "D", "F", "FD" or "" when nothing is painted.
func applyStyle(pdf *gofpdf.Fpdf, f vector.Fill, st vector.Stroke) string {
	style := ""
	if f.Enabled {
		pdf.SetFillColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
		style = "F"
	}
	if st.Enabled {
		pdf.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
		pdf.SetLineWidth(px(st.Width))
		pdf.SetLineCapStyle(st.Cap.String())
		style += "D"
	}
	return style
}

// WritePDF renders d into the file at path.
func WritePDF(d *vector.Drawing, path string, opt PDFOptions) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderPDF(&buf, d, opt); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("export"), "pdf").Debug("written", "path", path, "bytes", buf.Len())
	return nil
}

func px(d decimal.Decimal) float64 { return d.Float64() }
