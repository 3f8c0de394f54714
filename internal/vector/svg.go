/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"strconv"
	"strings"

	"svgdraw/internal/decimal"
)

const (
	svgProlog = `<?xml version="1.0" standalone="no"?>`
	svgNS     = "http://www.w3.org/2000/svg"
)

// Num formats a value for an SVG attribute: integers print without a
// fraction, anything else at float32 precision, which is what SVG viewers use.
func Num(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.FixedString(0)
	}
	return strconv.FormatFloat(float64(float32(d.Float64())), 'f', -1, 32)
}

// element accumulates one self-closing or text-bearing SVG element.
type element struct {
	b strings.Builder
}

func newElement(tag string) *element {
	e := &element{}
	e.b.Grow(128)
	e.b.WriteByte('<')
	e.b.WriteString(tag)
	return e
}

func (e *element) attr(name, value string) *element {
	e.b.WriteByte(' ')
	e.b.WriteString(name)
	e.b.WriteString(`="`)
	e.b.WriteString(escAttr(value))
	e.b.WriteByte('"')
	return e
}

func (e *element) num(name string, v decimal.Decimal) *element { return e.attr(name, Num(v)) }

// style writes id, fill and stroke attributes for s.
func (e *element) style(s *Shape) *element {
	if s.id != "" {
		e.attr("id", s.id)
	}
	if s.fill.Enabled {
		e.attr("fill", s.fill.Color.Hex())
		if s.fill.Color.A < 255 {
			e.attr("fill-opacity", opacity(s.fill.Color.A))
		}
	} else {
		e.attr("fill", "none")
	}
	if s.stroke.Enabled {
		e.attr("stroke", s.stroke.Color.Hex())
		e.num("stroke-width", s.stroke.Width)
		if s.stroke.Color.A < 255 {
			e.attr("stroke-opacity", opacity(s.stroke.Color.A))
		}
		if s.stroke.Cap != CapButt {
			e.attr("stroke-linecap", s.stroke.Cap.String())
		}
	}
	return e
}

func (e *element) open() string {
	e.b.WriteByte('>')
	return e.b.String()
}

func (e *element) close() string {
	e.b.WriteString("/>")
	return e.b.String()
}

func (e *element) closeWithText(tag, text string) string {
	e.b.WriteByte('>')
	e.b.WriteString(escText(text))
	e.b.WriteString("</")
	e.b.WriteString(tag)
	e.b.WriteByte('>')
	return e.b.String()
}

func opacity(a uint8) string {
	return strconv.FormatFloat(float64(a)/255, 'f', 3, 64)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
