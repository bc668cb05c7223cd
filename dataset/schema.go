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
	"github.com/stockparfait/imf/sdmx"
)

// Schema of a dataset: its parameters, series and observation attributes, and
// the dataset level annotations. Immutable after construction.
type Schema struct {
	parameters            []*Attribute
	seriesAttributes      []*Attribute
	observationAttributes []*Attribute
	annotations           map[string]string
	timeName              string
	valueName             string
}

// NewSchema validates and creates a Schema. Parameters and series attributes
// must be coded, observation attributes must be typed, and each name must be
// used only once across all three lists, ignoring case.
func NewSchema(parameters, seriesAttrs, obsAttrs []*Attribute, annotations map[string]string) (*Schema, error) {
	seen := make(map[string]struct{})
	check := func(kind string, attrs []*Attribute, coded bool) error {
		for _, a := range attrs {
			if err := a.Validate(); err != nil {
				return errors.Annotate(err, "invalid %s", kind)
			}
			if a.IsCoded() != coded {
				return errors.Reason("%s %s must be %s", kind, a.Name(),
					map[bool]string{true: "coded", false: "typed"}[coded])
			}
			key := strings.ToLower(a.Name())
			if _, ok := seen[key]; ok {
				return errors.Reason("duplicate component name: %s", a.Name())
			}
			seen[key] = struct{}{}
		}
		return nil
	}
	if err := check("parameter", parameters, true); err != nil {
		return nil, err
	}
	if err := check("series attribute", seriesAttrs, true); err != nil {
		return nil, err
	}
	if err := check("observation attribute", obsAttrs, false); err != nil {
		return nil, err
	}
	s := &Schema{
		parameters:            append([]*Attribute{}, parameters...),
		seriesAttributes:      append([]*Attribute{}, seriesAttrs...),
		observationAttributes: append([]*Attribute{}, obsAttrs...),
		annotations:           make(map[string]string, len(annotations)),
	}
	for k, v := range annotations {
		s.annotations[k] = v
	}
	return s, nil
}

func schemaError(format string, args ...interface{}) error {
	return errors.Annotate(sdmx.ErrSchemaParse, format, args...)
}

// NewSchemaFromStructure resolves the references of a parsed DataStructure
// against its concepts and code lists.
func NewSchemaFromStructure(d *sdmx.DataStructure) (*Schema, error) {
	concept := func(id string) (*sdmx.Concept, error) {
		c, ok := d.Concept(id)
		if !ok {
			return nil, schemaError("unknown concept %s", id)
		}
		return c, nil
	}
	coded := func(conceptID, codeListID string) (*Attribute, error) {
		c, err := concept(conceptID)
		if err != nil {
			return nil, err
		}
		cl, ok := d.CodeList(codeListID)
		if !ok {
			return nil, schemaError("unknown code list '%s' for %s", codeListID, conceptID)
		}
		codes := make([]Code, len(cl.Codes))
		for i, v := range cl.Codes {
			codes[i] = Code{Value: v.Value, Description: v.Description}
		}
		return NewCodedAttribute(c.ID, c.Description, codes...), nil
	}

	var params, series, obs []*Attribute
	for _, p := range d.Parameters {
		a, err := coded(p.Concept, p.CodeList)
		if err != nil {
			return nil, errors.Annotate(err, "parameter %s", p.Concept)
		}
		params = append(params, a)
	}
	for _, r := range d.Attributes {
		if r.Level == sdmx.LevelSeries {
			a, err := coded(r.Concept, r.CodeList)
			if err != nil {
				return nil, errors.Annotate(err, "series attribute %s", r.Concept)
			}
			series = append(series, a)
			continue
		}
		c, err := concept(r.Concept)
		if err != nil {
			return nil, errors.Annotate(err, "observation attribute %s", r.Concept)
		}
		obs = append(obs, NewTypedAttribute(c.ID, c.Description, typeOf(c.TextType)))
	}
	s, err := NewSchema(params, series, obs, d.AnnotationMap())
	if err != nil {
		return nil, errors.Annotate(err, "invalid schema of %s", d.ID)
	}
	s.timeName = d.TimeDimension
	s.valueName = d.PrimaryMeasure
	return s, nil
}

func copyAttrs(attrs []*Attribute) []*Attribute {
	return append([]*Attribute{}, attrs...)
}

func (s *Schema) Parameters() []*Attribute { return copyAttrs(s.parameters) }
func (s *Schema) SeriesAttributes() []*Attribute { return copyAttrs(s.seriesAttributes) }
func (s *Schema) ObservationAttributes() []*Attribute { return copyAttrs(s.observationAttributes) }

// Annotations returns a copy of the dataset annotations keyed by the
// normalized title.
func (s *Schema) Annotations() map[string]string {
	res := make(map[string]string, len(s.annotations))
	for k, v := range s.annotations {
		res[k] = v
	}
	return res
}

// TimeName is the name of the time period observation attribute, if known.
func (s *Schema) TimeName() string { return s.timeName }

// ValueName is the name of the observation value attribute, if known.
func (s *Schema) ValueName() string { return s.valueName }
