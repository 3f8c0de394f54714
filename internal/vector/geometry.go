/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Axis-aligned extents in decimal coordinates. The same type serves the
// implicit (y-up) and explicit (y-down) spaces; only the meaning of YMin and
// YMax as "bottom" or "top" changes.

import "svgdraw/internal/decimal"

// Box is an axis-aligned bounding box given by its extents.
type Box struct {
	XMin, XMax decimal.Decimal
	YMin, YMax decimal.Decimal
}

func (b Box) Width() decimal.Decimal  { return b.XMax.Sub(b.XMin) }
func (b Box) Height() decimal.Decimal { return b.YMax.Sub(b.YMin) }

// Union returns the minimal box containing both.
func (b Box) Union(o Box) Box {
	return Box{
		XMin: decimal.Min(b.XMin, o.XMin),
		XMax: decimal.Max(b.XMax, o.XMax),
		YMin: decimal.Min(b.YMin, o.YMin),
		YMax: decimal.Max(b.YMax, o.YMax),
	}
}

// Contains reports whether o lies inside b, edges included.
func (b Box) Contains(o Box) bool {
	return b.XMin.Cmp(o.XMin) <= 0 && b.YMin.Cmp(o.YMin) <= 0 &&
		b.XMax.Cmp(o.XMax) >= 0 && b.YMax.Cmp(o.YMax) >= 0
}

// AspectRatio returns width/height under ctx.
func (b Box) AspectRatio(ctx decimal.Context) (decimal.Decimal, error) {
	return ctx.Div(b.Width(), b.Height())
}
