// Copyright 2023 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query builds request URLs for SDMX-style REST APIs.
//
// Besides the usual path segments and query parameters, SDMX encodes a filter
// over several dimensions as a single "positional argument" path segment: the
// dimensions appear in their declaration order separated by '.', and
// alternative codes for the same dimension are separated by '+'. For example,
// "frequency is A or M, country is US" is encoded as "A+M.US", and "any
// frequency, country US" is ".US".
package query


import (
	"strings"
)

// Arg is one element of a positional argument block: the alternative codes
// for a single dimension. An empty Arg means no constraint.
type Arg []string

// Codes is a convenience constructor for Arg.
func Codes(codes ...string) Arg {
	return Arg(codes)
}

// String renders the alternatives joined with '+'. Empty codes are skipped.
func (a Arg) String() string {
	codes := make([]string, 0, len(a))
	for _, c := range a {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return strings.Join(codes, "+")
}

// Block renders a positional argument block.
func Block(args ...Arg) string {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = a.String()
	}
	return strings.Join(strs, ".")
}

type param struct {
	Key   string
	Value string
}

// Builder accumulates a URL. All the methods modify the builder in place and
// return it for chaining; use Copy to reuse a builder as a template.
type Builder struct {
	base     string
	segments []string
	open     bool // the last segment is a positional block accepting more args
	params   []param
}

// New creates a Builder for the base URL. A trailing '/' in base is dropped.
func New(base string) *Builder {
	return &Builder{base: strings.TrimRight(base, "/")}
}

// Copy creates a deep copy of the builder.
func (b *Builder) Copy() *Builder {
	b2 := Builder{base: b.base, open: b.open}
	b2.segments = make([]string, len(b.segments))
	copy(b2.segments, b.segments)
	b2.params = make([]param, len(b.params))
	copy(b2.params, b.params)
	return &b2
}

// Path appends path segments and closes the positional block, if any. Empty
// segments are ignored.
func (b *Builder) Path(segments ...string) *Builder {
	b.open = false
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			b.segments = append(b.segments, s)
		}
	}
	return b
}

// Args appends elements to the positional argument block, starting a new path
// segment unless the last one is an open block. Consecutive calls extend the
// same block, so chained single-element calls render the same as one call
// with all the elements. An unconstrained element still occupies its slot:
// three of them render as "..".
func (b *Builder) Args(args ...Arg) *Builder {
	for _, a := range args {
		if b.open {
			b.segments[len(b.segments)-1] += "." + a.String()
			continue
		}
		b.segments = append(b.segments, a.String())
		b.open = true
	}
	return b
}

// Query appends a query parameter and closes the positional block, if any.
// Parameters are rendered in the order they were added.
func (b *Builder) Query(key, value string) *Builder {
	b.open = false
	b.params = append(b.params, param{Key: key, Value: value})
	return b
}

// String renders the URL.
func (b *Builder) String() string {
	var sb strings.Builder
	sb.WriteString(b.base)
	for _, s := range b.segments {
		sb.WriteByte('/')
		sb.WriteString(s)
	}
	for i, p := range b.params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// Len is the length of the rendered URL.
func (b *Builder) Len() int {
	return len(b.String())
}
