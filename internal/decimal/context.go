/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package decimal

// Context is the precision policy for derived values.
//
// Precision is the number of significant digits kept by division.
// FuzzyScale is the number of fractional digits both operands are rounded to
// before a fuzzy comparison; it must stay well below the digits lost to
// chained division, otherwise fuzzy comparison degrades to exact comparison.
type Context struct {
	Precision  int32
	FuzzyScale int32
}

// DefaultContext keeps 34 significant digits (IEEE 754 decimal128) and
// compares fuzzily at 10 fractional digits.
var DefaultContext = Context{Precision: 34, FuzzyScale: 10}

// Div divides a by b at the context precision.
func (c Context) Div(a, b Decimal) (Decimal, error) {
	return a.Div(b, c.precision())
}

// MulDiv returns a*b/c, multiplying first so that exact products are not
// disturbed by an early rounding.
func (c Context) MulDiv(a, b, d Decimal) (Decimal, error) {
	return a.Mul(b).Div(d, c.precision())
}

func (c Context) precision() int32 {
	if c.Precision <= 0 {
		return DefaultContext.Precision
	}
	return c.Precision
}

// Normalize fills zero fields from DefaultContext.
func (c Context) Normalize() Context {
	if c.Precision <= 0 {
		c.Precision = DefaultContext.Precision
	}
	if c.FuzzyScale <= 0 {
		c.FuzzyScale = DefaultContext.FuzzyScale
	}
	return c
}
