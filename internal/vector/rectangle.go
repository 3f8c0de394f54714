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

type Rectangle struct {
	Shape
}

// NewRectangle returns a unit square at the origin.
func NewRectangle() *Rectangle { return &Rectangle{Shape: newShape()} }

// NewRectangleSized returns a rectangle with the given implicit size.
func NewRectangleSized(w, h decimal.Decimal) (*Rectangle, error) {
	r := NewRectangle()
	if err := r.SetImplicitSize(w, h); err != nil {
		return nil, fmt.Errorf("rectangle: %w", err)
	}
	return r, nil
}

func (r *Rectangle) Kind() string { return "rectangle" }

func (r *Rectangle) SVG() (string, error) {
	b, err := r.explicit()
	if err != nil {
		return "", fmt.Errorf("rectangle: %w", err)
	}
	return newElement("rect").
		num("x", b.XMin).
		num("y", b.YMin).
		num("width", r.ew).
		num("height", r.eh).
		style(&r.Shape).
		close(), nil
}
