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

// Circle is inscribed in its bounding box; when the box is not square the
// radius follows the shorter side.
type Circle struct {
	Shape
}

// NewCircle returns a circle of unit diameter at the origin.
func NewCircle() *Circle { return &Circle{Shape: newShape()} }

// NewCircleRadius returns a circle whose implicit diameter is 2r.
func NewCircleRadius(r decimal.Decimal) (*Circle, error) {
	c := NewCircle()
	d := r.Add(r)
	if err := c.SetImplicitSize(d, d); err != nil {
		return nil, fmt.Errorf("circle radius: %w", err)
	}
	return c, nil
}

func (c *Circle) Kind() string { return "circle" }

// Radius is half the smaller explicit side.
func (c *Circle) Radius() (decimal.Decimal, bool) {
	w, okw := c.ExplicitWidth()
	h, okh := c.ExplicitHeight()
	if !okw || !okh {
		return decimal.Zero, false
	}
	return decimal.Min(w, h).Half(), true
}

func (c *Circle) SVG() (string, error) {
	if _, err := c.explicit(); err != nil {
		return "", fmt.Errorf("circle: %w", err)
	}
	r, _ := c.Radius()
	return newElement("circle").
		num("cx", c.ex).
		num("cy", c.ey).
		num("r", r).
		style(&c.Shape).
		close(), nil
}
