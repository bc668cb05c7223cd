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
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/sdmx"
	"github.com/stockparfait/imf/table"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Value of an observation field. Number is set only for a non-empty value of
// a numeric attribute.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// Observation maps an attribute name to its value.
type Observation map[string]Value

// Series of observations with its series level values. Keys use the
// canonical names of the schema; undeclared fields keep their original names.
type Series struct {
	Attributes   map[string]string
	Observations []Observation
	Undeclared   []string // sorted names of fields not in the schema
}

// DecodeSeries decodes a CompactData response, checking the values against the
// schema. Fields absent from the schema are kept without checks.
func (d *Dataset) DecodeSeries(data []byte) ([]*Series, error) {
	cd, err := sdmx.ParseCompactData(data)
	if err != nil {
		return nil, err
	}
	res := make([]*Series, len(cd.Series))
	for i, s := range cd.Series {
		if res[i], err = d.decodeSeries(s); err != nil {
			return nil, errors.Annotate(err, "series %d", i)
		}
	}
	return res, nil
}

func (d *Dataset) decodeSeries(s sdmx.Series) (*Series, error) {
	undeclared := make(map[string]struct{})
	res := &Series{Attributes: make(map[string]string, len(s.Attributes))}
	for k, v := range s.Attributes {
		c, ok := d.components[strings.ToLower(k)]
		if !ok || c.kind == kindObservationAttribute {
			undeclared[k] = struct{}{}
			res.Attributes[k] = v
			continue
		}
		if _, ok := c.attr.Code(v); !ok {
			return nil, errors.Annotate(sdmx.ErrSchemaParse,
				"%s = '%s' is not a permitted code", c.attr.Name(), v)
		}
		res.Attributes[c.attr.Name()] = v
	}
	for j, o := range s.Observations {
		obs := make(Observation, len(o))
		for k, v := range o {
			c, ok := d.components[strings.ToLower(k)]
			if !ok || c.kind != kindObservationAttribute {
				undeclared[k] = struct{}{}
				obs[k] = Value{Text: v}
				continue
			}
			val := Value{Text: v}
			if c.attr.Type() == TypeNumeric && v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, errors.Annotate(sdmx.ErrSchemaParse,
						"observation %d: %s = '%s' is not a number", j, c.attr.Name(), v)
				}
				val.Number = f
				val.Numeric = true
			}
			obs[c.attr.Name()] = val
		}
		res.Observations = append(res.Observations, obs)
	}
	if len(undeclared) > 0 {
		res.Undeclared = maps.Keys(undeclared)
		slices.Sort(res.Undeclared)
	}
	return res, nil
}

// Table converts the series into a table. The columns are the given
// observation attributes followed by the sorted undeclared observation fields.
// Series attributes become the table's metadata.
func (s *Series) Table(columns []string) *table.Table {
	header := append([]string{}, columns...)
	declared := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		declared[c] = struct{}{}
	}
	extra := make(map[string]struct{})
	for _, o := range s.Observations {
		for k := range o {
			if _, ok := declared[k]; !ok {
				extra[k] = struct{}{}
			}
		}
	}
	extraCols := maps.Keys(extra)
	slices.Sort(extraCols)
	header = append(header, extraCols...)

	t := table.NewTable(header...)
	for k, v := range s.Attributes {
		t.SetMetadata(k, v)
	}
	for _, o := range s.Observations {
		row := make(table.Strings, len(header))
		for i, h := range header {
			row[i] = o[h].Text
		}
		t.AddRow(row)
	}
	return t
}
