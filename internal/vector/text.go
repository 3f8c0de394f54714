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
	"svgdraw/internal/textlayout"
)

// Text is a single line of text. Its implicit height is one unit and its
// implicit width is the measured advance relative to the line height, so the
// explicit height doubles as the font size.
type Text struct {
	Shape
	content string
	font    textlayout.FontSpec
}

// NewText measures content with the default text provider.
func NewText(content string) *Text {
	return NewTextWith(textlayout.Default(), textlayout.FontSpec{}, content)
}

// NewTextWith measures content with p in the given font.
func NewTextWith(p textlayout.Provider, font textlayout.FontSpec, content string) *Text {
	t := &Text{Shape: newShape(), content: content, font: font}
	t.fill = Fill{Color: Black, Enabled: true}
	t.stroke.Enabled = false
	t.iw = textlayout.Aspect(p, font, content)
	return t
}

func (t *Text) Kind() string { return "text" }
func (t *Text) Content() string { return t.content }
func (t *Text) Font() textlayout.FontSpec { return t.font }

// FontSize is the explicit height.
func (t *Text) FontSize() (decimal.Decimal, bool) { return t.ExplicitHeight() }

func (t *Text) SVG() (string, error) {
	if _, err := t.explicit(); err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	e := newElement("text").
		num("x", t.ex).
		num("y", t.ey).
		num("font-size", t.eh)
	if t.font.Family != "" {
		e.attr("font-family", t.font.Family)
	}
	return e.attr("text-anchor", "middle").
		attr("dominant-baseline", "central").
		style(&t.Shape).
		closeWithText("text", t.content), nil
}
