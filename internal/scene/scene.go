/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene reads declarative drawing descriptions (YAML, or JSON as its
// subset) and builds vector drawings from them.
package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"svgdraw/internal/decimal"
)

//go:embed scene.schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

var ErrInvalidScene = errors.New("invalid scene")

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidScene, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidScene }

// Document is a parsed scene file.
type Document struct {
	Canvas *Canvas     `yaml:"canvas,omitempty" json:"canvas,omitempty"`
	Shapes []ShapeSpec `yaml:"shapes" json:"shapes"`
}

type Canvas struct {
	Width  decimal.Decimal `yaml:"width" json:"width"`
	Height decimal.Decimal `yaml:"height" json:"height"`
}

// ShapeSpec describes one shape. Sizes are implicit units; which fields apply
// depends on Kind. At most one of the four relation fields may be set, and it
// must name a shape declared earlier in the document.
type ShapeSpec struct {
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Kind string `yaml:"kind" json:"kind"`

	Width  *decimal.Decimal `yaml:"width,omitempty" json:"width,omitempty"`
	Height *decimal.Decimal `yaml:"height,omitempty" json:"height,omitempty"`
	Radius *decimal.Decimal `yaml:"radius,omitempty" json:"radius,omitempty"`
	DX     *decimal.Decimal `yaml:"dx,omitempty" json:"dx,omitempty"`
	DY     *decimal.Decimal `yaml:"dy,omitempty" json:"dy,omitempty"`
	Text   string           `yaml:"text,omitempty" json:"text,omitempty"`
	Font   string           `yaml:"font,omitempty" json:"font,omitempty"`

	Fill   string      `yaml:"fill,omitempty" json:"fill,omitempty"`
	Stroke *StrokeSpec `yaml:"stroke,omitempty" json:"stroke,omitempty"`

	RightOf string `yaml:"right_of,omitempty" json:"right_of,omitempty"`
	LeftOf  string `yaml:"left_of,omitempty" json:"left_of,omitempty"`
	Above   string `yaml:"above,omitempty" json:"above,omitempty"`
	Below   string `yaml:"below,omitempty" json:"below,omitempty"`
}

type StrokeSpec struct {
	Enabled *bool            `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Color   string           `yaml:"color,omitempty" json:"color,omitempty"`
	Width   *decimal.Decimal `yaml:"width,omitempty" json:"width,omitempty"`
	Cap     string           `yaml:"cap,omitempty" json:"cap,omitempty"`
}

// Validate checks raw scene bytes against the embedded JSON schema.
func Validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return ve
}

// Parse validates data and decodes it into a Document.
func Parse(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	return &doc, nil
}

// Load reads and parses the scene file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return doc, nil
}
