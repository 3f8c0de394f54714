/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "fmt"

// Direction is the side of a neighbour a shape is placed on.
type Direction uint8

const (
	RightOf Direction = iota
	Above
	LeftOf
	Below
)

// Angle returns the direction as a counter-clockwise angle in degrees,
// measured from the positive x axis: RightOf 0, Above 90, LeftOf 180, Below 270.
func (d Direction) Angle() int { return int(d) * 90 }

func (d Direction) String() string {
	switch d {
	case RightOf:
		return "right_of"
	case Above:
		return "above"
	case LeftOf:
		return "left_of"
	case Below:
		return "below"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection maps the names returned by String back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "right_of":
		return RightOf, nil
	case "above":
		return Above, nil
	case "left_of":
		return LeftOf, nil
	case "below":
		return Below, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Adjacency links a shape to the neighbour it was placed against.
// Target is not owned by the shape; the Drawing owns every shape.
type Adjacency struct {
	Dir    Direction
	Target Node
}
