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
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	applog "svgdraw/internal/log"
	"svgdraw/internal/textlayout"
	"svgdraw/internal/vector"
)

var ErrEmptyCanvas = errors.New("canvas has no area")

// PNGOptions controls raster output.
type PNGOptions struct {
	// Scale multiplies the canvas size; 1 if zero.
	Scale float64
	// Background fills the image before drawing; transparent if nil.
	Background color.Color
	// Provider draws text elements, which the SVG rasterizer skips.
	// textlayout.Default() if nil.
	Provider textlayout.Provider
}

func (o PNGOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// RasterizeSVG renders SVG text into a w by h image. Elements the rasterizer
// does not support, such as text, are skipped.
func RasterizeSVG(svg []byte, w, h int, bg color.Color) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyCanvas, w, h)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		draw.Draw(rgba, rgba.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

// RenderPNG rasterizes d at its canvas size times opts.Scale and draws its
// text elements with the text provider.
func RenderPNG(d *vector.Drawing, opts PNGOptions) (*image.RGBA, error) {
	s, err := d.SVG()
	if err != nil {
		return nil, err
	}
	cw, _ := d.CanvasWidth()
	ch, _ := d.CanvasHeight()
	k := opts.scale()
	w := int(math.Ceil(cw.Float64() * k))
	h := int(math.Ceil(ch.Float64() * k))
	img, err := RasterizeSVG([]byte(s), w, h, opts.Background)
	if err != nil {
		return nil, err
	}
	p := opts.Provider
	if p == nil {
		p = textlayout.Default()
	}
	for _, n := range d.Shapes() {
		if t, ok := n.(*vector.Text); ok {
			drawText(img, t, p, k)
		}
	}
	return img, nil
}

// drawText centers the label on the shape's explicit position, matching
// text-anchor="middle" and dominant-baseline="central". The line is scaled so
// its height equals the explicit height; faces that ignore the requested size,
// such as the built-in bitmap face, are enlarged or shrunk to fit.
func drawText(img *image.RGBA, t *vector.Text, p textlayout.Provider, k float64) {
	x, okx := t.ExplicitX()
	y, oky := t.ExplicitY()
	size, _ := t.FontSize()
	if !okx || !oky || t.Content() == "" {
		return
	}
	want := size.Float64() * k
	spec := t.Font()
	spec.SizePt = float32(want)
	face, met := p.Resolve(spec)
	src := image.NewUniform(rgba(t.Fill().Color))
	dr := &font.Drawer{Src: src, Face: face}
	adv := float64(dr.MeasureString(t.Content())) / 64
	lh := float64(met.LineHeight())
	cx, cy := x.Float64()*k, y.Float64()*k

	r := 1.0
	if lh > 0 {
		r = want / lh
	}
	if math.Abs(r-1) < 0.01 {
		dr.Dst = img
		px := cx - adv/2
		py := cy + float64(met.Ascent-met.Descent)/2
		dr.Dot = fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(py * 64)}
		dr.DrawString(t.Content())
		return
	}

	// Set the line at native size, then scale it into place.
	line := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(adv)), int(math.Ceil(lh))))
	dr.Dst = line
	dr.Dot = fixed.P(0, int(met.Ascent))
	dr.DrawString(t.Content())
	w, h := adv*r, lh*r
	dst := image.Rect(
		int(math.Round(cx-w/2)), int(math.Round(cy-h/2)),
		int(math.Round(cx+w/2)), int(math.Round(cy+h/2)))
	xdraw.BiLinear.Scale(img, dst, line, line.Bounds(), xdraw.Over, nil)
}

func rgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// EncodePNG renders d and writes it to w as PNG.
func EncodePNG(w io.Writer, d *vector.Drawing, opts PNGOptions) error {
	img, err := RenderPNG(d, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG renders d into the file at path.
func WritePNG(d *vector.Drawing, path string, opts PNGOptions) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, d, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("export"), "png").Debug("written", "path", path, "bytes", buf.Len())
	return nil
}
