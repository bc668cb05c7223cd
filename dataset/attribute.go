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

package dataset

import (
	"strings"

	"github.com/stockparfait/errors"
)

// ValueType is the scalar type of a typed attribute.
type ValueType string

// Values of ValueType.
const (
	TypeText      ValueType = "text"
	TypeNumeric   ValueType = "numeric"
	TypeTimestamp ValueType = "timestamp"
)

func (t ValueType) valid() bool {
	switch t {
	case TypeText, TypeNumeric, TypeTimestamp:
		return true
	}
	return false
}

// typeOf maps a declared SDMX text type to a ValueType.
func typeOf(textType string) ValueType {
	switch strings.ToLower(textType) {
	case "double", "float", "decimal", "integer", "long", "short":
		return TypeNumeric
	case "datetime", "date", "time", "timeperiod", "observationaltimeperiod":
		return TypeTimestamp
	}
	return TypeText
}

// Code is a permitted value of a coded attribute.
type Code struct {
	Value       string
	Description string
}

// Attribute is a parameter (dimension) or an attribute of a dataset. It is
// either coded, with an ordered list of permitted codes, or typed.
type Attribute struct {
	name        string
	description string
	codes       []Code // non-nil iff coded
	valueType   ValueType
}

// NewCodedAttribute creates an attribute whose values are restricted to codes.
func NewCodedAttribute(name, description string, codes ...Code) *Attribute {
	cs := make([]Code, len(codes))
	copy(cs, codes)
	return &Attribute{name: name, description: description, codes: cs}
}

// NewTypedAttribute creates an attribute holding scalar values of type t.
func NewTypedAttribute(name, description string, t ValueType) *Attribute {
	return &Attribute{name: name, description: description, valueType: t}
}

func (a *Attribute) Name() string { return a.name }
func (a *Attribute) Description() string { return a.description }
func (a *Attribute) IsCoded() bool { return a.codes != nil }

// Type of a typed attribute, and "" for a coded one.
func (a *Attribute) Type() ValueType { return a.valueType }

// Codes returns a copy of the permitted codes in declaration order.
func (a *Attribute) Codes() []Code {
	if a.codes == nil {
		return nil
	}
	res := make([]Code, len(a.codes))
	copy(res, a.codes)
	return res
}

// Values returns the permitted code values of a coded attribute, or the type
// name as a single element for a typed one.
func (a *Attribute) Values() []string {
	if !a.IsCoded() {
		return []string{string(a.valueType)}
	}
	res := make([]string, len(a.codes))
	for i, c := range a.codes {
		res[i] = c.Value
	}
	return res
}

// Code finds the description of a permitted code.
func (a *Attribute) Code(value string) (string, bool) {
	for _, c := range a.codes {
		if c.Value == value {
			return c.Description, true
		}
	}
	return "", false
}

// Validate checks that the attribute has exactly one value domain.
func (a *Attribute) Validate() error {
	if a.name == "" {
		return errors.Reason("attribute has no name")
	}
	coded := a.codes != nil
	typed := a.valueType != ""
	if coded && typed {
		return errors.Reason("attribute %s is both coded and typed", a.name)
	}
	if !coded && !typed {
		return errors.Reason("attribute %s has no value domain", a.name)
	}
	if typed && !a.valueType.valid() {
		return errors.Reason("attribute %s has unsupported type '%s'",
			a.name, a.valueType)
	}
	return nil
}
