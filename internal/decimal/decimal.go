/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package decimal provides the arbitrary-precision number type used for every
// coordinate and size in the layout engine. Addition, subtraction and
// multiplication are exact; division rounds to a caller-chosen number of
// significant digits. A Context carries the precision policy so that a single
// type serves every use.
package decimal

import (
	"errors"
	"fmt"
	"strings"

	sd "github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by Div and Pow when the divisor is zero.
var ErrDivisionByZero = errors.New("decimal: division by zero")

// Decimal is an immutable arbitrary-precision decimal value.
// The zero value is 0.
type Decimal struct {
	v sd.Decimal
}

var (
	Zero = Decimal{}
	One  = New(1)
	half = Decimal{v: sd.New(5, -1)}
)

// New returns the integer value n.
func New(n int64) Decimal { return Decimal{v: sd.NewFromInt(n)} }

// NewFromFloat converts f using the shortest decimal representation that
// round-trips to the same float64.
func NewFromFloat(f float64) Decimal { return Decimal{v: sd.NewFromFloat(f)} }

// Parse reads a decimal from its string form, e.g. "12.5", "-0.001" or "1e3".
func Parse(s string) (Decimal, error) {
	v, err := sd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("decimal: parse %q: %w", s, err)
	}
	return Decimal{v: v}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for literals.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (x Decimal) Add(y Decimal) Decimal { return Decimal{v: x.v.Add(y.v)} }
func (x Decimal) Sub(y Decimal) Decimal { return Decimal{v: x.v.Sub(y.v)} }
func (x Decimal) Mul(y Decimal) Decimal { return Decimal{v: x.v.Mul(y.v)} }
func (x Decimal) Abs() Decimal          { return Decimal{v: x.v.Abs()} }
func (x Decimal) Neg() Decimal          { return Decimal{v: x.v.Neg()} }

// Half returns x/2. It is exact.
func (x Decimal) Half() Decimal { return x.Mul(half) }

// Div returns x/y rounded half-up to precision significant digits.
func (x Decimal) Div(y Decimal, precision int32) (Decimal, error) {
	if y.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	if x.IsZero() {
		return Zero, nil
	}
	if precision <= 0 {
		precision = DefaultContext.Precision
	}
	// The quotient's magnitude is m or m+1; settle it exactly so that the
	// quotient is rounded only once.
	m := x.magnitude() - y.magnitude()
	if x.v.Abs().Cmp(y.v.Abs().Mul(sd.New(1, m))) >= 0 {
		m++
	}
	// DivRound accepts negative places, which round left of the point.
	return Decimal{v: x.v.DivRound(y.v, precision-m)}, nil
}

// Pow raises x to the integer power n. Negative exponents divide under ctx.
func (x Decimal) Pow(n int, ctx Context) (Decimal, error) {
	neg := n < 0
	if neg {
		n = -n
	}
	result, base := One, x
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	if !neg {
		return result, nil
	}
	return ctx.Div(One, result)
}

// Round rounds half-up (away from zero) to the given number of fractional
// digits. Negative places round to tens, hundreds, and so on.
func (x Decimal) Round(places int32) Decimal { return Decimal{v: x.v.Round(places)} }

// RoundSignificant rounds half-up to the given number of significant digits.
func (x Decimal) RoundSignificant(digits int32) Decimal {
	if x.IsZero() || digits <= 0 {
		return x
	}
	return x.Round(digits - x.magnitude())
}

// magnitude is the position of the most significant digit relative to the
// decimal point: 123.4 -> 3, 0.05 -> -1. Zero has magnitude 0.
func (x Decimal) magnitude() int32 {
	if x.IsZero() {
		return 0
	}
	c := x.v.Coefficient()
	c.Abs(c)
	return int32(len(c.String())) + x.v.Exponent()
}

// Cmp compares numeric values: -1 if x < y, 0 if equal, +1 if x > y.
// Scale is ignored, so 2.0 and 2.00 compare equal.
func (x Decimal) Cmp(y Decimal) int { return x.v.Cmp(y.v) }

func (x Decimal) Equal(y Decimal) bool { return x.Cmp(y) == 0 }

// CmpFuzzy compares x and y after rounding both to ctx.FuzzyScale fractional
// digits.
func (x Decimal) CmpFuzzy(y Decimal, ctx Context) int {
	return x.Round(ctx.FuzzyScale).Cmp(y.Round(ctx.FuzzyScale))
}

func (x Decimal) EqualFuzzy(y Decimal, ctx Context) bool { return x.CmpFuzzy(y, ctx) == 0 }

func (x Decimal) IsZero() bool     { return x.v.IsZero() }
func (x Decimal) IsNegative() bool { return x.v.Sign() < 0 }
func (x Decimal) Sign() int        { return x.v.Sign() }

// IsInteger reports whether x has no fractional part.
func (x Decimal) IsInteger() bool { return x.v.IsInteger() }

// String returns the full representation. Parse(x.String()) equals x.
func (x Decimal) String() string { return x.v.String() }

// FixedString returns x with exactly n fractional digits, truncating extra
// digits toward zero and padding with zeros.
func (x Decimal) FixedString(n int) string {
	if n < 0 {
		n = 0
	}
	return x.v.Truncate(int32(n)).StringFixed(int32(n))
}

// Float64 returns the nearest float64.
func (x Decimal) Float64() float64 {
	f, _ := x.v.Float64()
	return f
}

// MarshalText implements encoding.TextMarshaler.
func (x Decimal) MarshalText() ([]byte, error) { return []byte(x.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Decimal) UnmarshalText(b []byte) error {
	d, err := Parse(string(b))
	if err != nil {
		return err
	}
	*x = d
	return nil
}

// Min returns the smaller of a and b.
func Min(a, b Decimal) Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Decimal) Decimal {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
