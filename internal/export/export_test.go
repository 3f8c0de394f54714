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
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyoz/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgdraw/internal/decimal"
	"svgdraw/internal/textlayout"
	"svgdraw/internal/vector"
)

// twoCircles is the fitted drawing of two unit circles side by side in a
// 100x100 canvas.
func twoCircles(t *testing.T) *vector.Drawing {
	t.Helper()
	d := vector.NewDrawing()
	a, b := vector.NewCircle(), vector.NewCircle()
	a.SetID("a")
	b.SetID("b")
	b.SetFill(vector.Fill{Color: vector.Color{R: 255, A: 255}, Enabled: true})
	require.NoError(t, b.SetRightOf(a))
	require.NoError(t, d.Add(a, b))
	require.NoError(t, d.SetExplicitDimensions(decimal.New(100), decimal.New(100)))
	return d
}

func TestWriteSVG_ParsesBack(t *testing.T) {
	d := twoCircles(t)
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.svg")
	require.NoError(t, WriteSVG(d, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	parsed, err := svg.ParseSvg(string(data), "out", 1.0)
	require.NoError(t, err)

	var circles []*svg.Circle
	for _, el := range parsed.Elements {
		if c, ok := el.(*svg.Circle); ok {
			circles = append(circles, c)
		}
	}
	require.Len(t, circles, 2)
	assert.Equal(t, "a", circles[0].ID)
	assert.Equal(t, 25.0, circles[0].Cx)
	assert.Equal(t, 50.0, circles[0].Cy)
	assert.Equal(t, 25.0, circles[0].Radius)
	assert.Equal(t, 75.0, circles[1].Cx)
}

func TestEncodeSVG_RequiresDimensions(t *testing.T) {
	d := vector.NewDrawing()
	require.NoError(t, d.Add(vector.NewCircle()))
	var buf bytes.Buffer
	assert.ErrorIs(t, EncodeSVG(&buf, d), vector.ErrDimensionsUnset)
	assert.Zero(t, buf.Len())
}

func TestRenderPNG(t *testing.T) {
	d := twoCircles(t)
	img, err := RenderPNG(d, PNGOptions{Scale: 2, Background: color.White})
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	// Inside the filled circle b, outside both circles.
	r, g, b, _ := img.At(150, 100).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	r, g, b, _ = img.At(100, 10).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestRenderPNG_DrawsText(t *testing.T) {
	d := vector.NewDrawing()
	require.NoError(t, d.Add(vector.NewText("HHHH")))
	require.NoError(t, d.SetExplicitDimensions(decimal.New(56), decimal.New(13)))
	img, err := RenderPNG(d, PNGOptions{Background: color.White})
	require.NoError(t, err)

	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "text glyphs should be drawn")
}

// inkRows counts image rows holding at least one dark pixel.
func inkRows(img *image.RGBA) int {
	rows := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				rows++
				break
			}
		}
	}
	return rows
}

func TestRenderPNG_TextFollowsFontSize(t *testing.T) {
	render := func(w, h int64) *image.RGBA {
		d := vector.NewDrawing()
		require.NoError(t, d.Add(vector.NewText("HHHH")))
		require.NoError(t, d.SetExplicitDimensions(decimal.New(w), decimal.New(h)))
		img, err := RenderPNG(d, PNGOptions{Background: color.White, Provider: textlayout.BasicProvider{}})
		require.NoError(t, err)
		return img
	}
	small := inkRows(render(56, 13))
	large := inkRows(render(224, 52))
	require.Greater(t, small, 0)
	assert.GreaterOrEqual(t, large, 3*small, "glyphs at four times the font size should be about four times as tall")
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WritePNG(twoCircles(t), path, PNGOptions{}))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestRasterizeSVG_EmptyCanvas(t *testing.T) {
	_, err := RasterizeSVG([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 0, 10, nil)
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestWritePDF(t *testing.T) {
	d := twoCircles(t)
	txt := vector.NewText("Grüße")
	require.NoError(t, txt.SetBelow(d.Shapes()[0]))
	line := vector.NewLine(decimal.One, decimal.New(-1))
	require.NoError(t, line.SetRightOf(d.Shapes()[1]))
	rect := vector.NewRectangle()
	require.NoError(t, rect.SetAbove(d.Shapes()[0]))
	require.NoError(t, d.Add(txt, line, rect))

	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, WritePDF(d, path, PDFOptions{Title: "Circles", Author: "tests"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"), "missing PDF header")
	assert.Greater(t, len(data), 200)
}

func TestRenderPDF_RequiresDimensions(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPDF(&buf, vector.NewDrawing(), PDFOptions{}), vector.ErrDimensionsUnset)
}
