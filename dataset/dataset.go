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
	"context"
	"regexp"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/query"
	"github.com/stockparfait/imf/table"
	"github.com/stockparfait/logging"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Defaults of Options.
const (
	DefaultBaseURL      = "https://dataservices.imf.org/REST/SDMX_JSON.svc"
	DefaultMaxURLLength = 356
	DefaultStartPeriod  = "1900"
	DefaultEndPeriod    = "2100"
)

var (
	ErrUnknownComponent      = errors.Reason("unknown component")
	ErrUnknownParameter      = errors.Reason("unknown parameter")
	ErrInvalidParameterValue = errors.Reason("invalid parameter value")
	ErrRequestTooLarge       = errors.Reason("request too large")
)

// Fetcher retrieves the JSON body of a GET request.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) ([]byte, error)
}

// Options of a Dataset. Zero values are replaced by defaults.
type Options struct {
	Fetcher      Fetcher
	BaseURL      string
	MaxURLLength int // maximum length of a data request URL, including the query
	StartPeriod  string
	EndPeriod    string
}

func (o *Options) setDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.MaxURLLength <= 0 {
		o.MaxURLLength = DefaultMaxURLLength
	}
	if o.StartPeriod == "" {
		o.StartPeriod = DefaultStartPeriod
	}
	if o.EndPeriod == "" {
		o.EndPeriod = DefaultEndPeriod
	}
}

// Selection of parameter values: parameter name to alternative codes. An
// omitted parameter, an empty list or an empty code means no constraint.
type Selection map[string][]string

// Period is the inclusive range of years to query. Empty values use the
// defaults of the Dataset.
type Period struct {
	Start string
	End   string
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

type componentKind int

const (
	kindParameter componentKind = iota
	kindSeriesAttribute
	kindObservationAttribute
)

type component struct {
	attr *Attribute
	kind componentKind
}

// Dataset binds the schema of a dataset to a validated query interface.
type Dataset struct {
	id         string
	schema     *Schema
	opts       Options
	components map[string]component // keyed by lower case name
}

// New creates a Dataset.
func New(id string, schema *Schema, opts Options) *Dataset {
	opts.setDefaults()
	d := &Dataset{
		id:         id,
		schema:     schema,
		opts:       opts,
		components: make(map[string]component),
	}
	add := func(attrs []*Attribute, kind componentKind) {
		for _, a := range attrs {
			d.components[strings.ToLower(a.Name())] = component{attr: a, kind: kind}
		}
	}
	add(schema.parameters, kindParameter)
	add(schema.seriesAttributes, kindSeriesAttribute)
	add(schema.observationAttributes, kindObservationAttribute)
	return d
}

func (d *Dataset) ID() string { return d.id }
func (d *Dataset) Schema() *Schema { return d.schema }
func (d *Dataset) Annotations() map[string]string { return d.schema.Annotations() }
func (d *Dataset) Parameters() []string { return names(d.schema.parameters) }
func (d *Dataset) SeriesAttributes() []string { return names(d.schema.seriesAttributes) }
func (d *Dataset) ObservationAttributes() []string { return names(d.schema.observationAttributes) }

func names(attrs []*Attribute) []string {
	res := make([]string, len(attrs))
	for i, a := range attrs {
		res[i] = a.Name()
	}
	return res
}

func (d *Dataset) lookup(name string) (component, error) {
	c, ok := d.components[strings.ToLower(name)]
	if !ok {
		return component{}, errors.Annotate(ErrUnknownComponent,
			"'%s' in dataset %s", name, d.id)
	}
	return c, nil
}

// ValuesOf returns the permitted codes of a coded component, or the type name
// of a typed one.
func (d *Dataset) ValuesOf(name string) ([]string, error) {
	c, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	return c.attr.Values(), nil
}

// DescriptionOf returns the description of a component.
func (d *Dataset) DescriptionOf(name string) (string, error) {
	c, err := d.lookup(name)
	if err != nil {
		return "", err
	}
	return c.attr.Description(), nil
}

// CodeDescription returns the description of a code of a coded component.
func (d *Dataset) CodeDescription(name, code string) (string, error) {
	c, err := d.lookup(name)
	if err != nil {
		return "", err
	}
	desc, ok := c.attr.Code(code)
	if !ok {
		return "", errors.Annotate(ErrInvalidParameterValue,
			"%s has no code '%s'", c.attr.Name(), code)
	}
	return desc, nil
}

func (d *Dataset) period(p Period) (start, end string, err error) {
	start, end = p.Start, p.End
	if start == "" {
		start = d.opts.StartPeriod
	}
	if end == "" {
		end = d.opts.EndPeriod
	}
	if !yearRe.MatchString(start) {
		return "", "", errors.Annotate(ErrInvalidParameterValue,
			"startPeriod = '%s' is not a 4-digit year", start)
	}
	if !yearRe.MatchString(end) {
		return "", "", errors.Annotate(ErrInvalidParameterValue,
			"endPeriod = '%s' is not a 4-digit year", end)
	}
	return
}

// URL validates the selection and builds the data request URL. Nothing is
// sent over the network.
func (d *Dataset) URL(sel Selection, p Period) (string, error) {
	codes := make(map[string][]string) // canonical parameter name -> codes
	keys := maps.Keys(sel)
	slices.Sort(keys)
	for _, k := range keys {
		c, ok := d.components[strings.ToLower(k)]
		if !ok || c.kind != kindParameter {
			return "", errors.Annotate(ErrUnknownParameter,
				"'%s' in dataset %s", k, d.id)
		}
		name := c.attr.Name()
		for _, v := range sel[k] {
			if v != "" {
				codes[name] = append(codes[name], v)
			}
		}
	}
	var args []query.Arg
	for _, param := range d.schema.parameters {
		vs := codes[param.Name()]
		for _, v := range vs {
			if _, ok := param.Code(v); !ok {
				return "", errors.Annotate(ErrInvalidParameterValue,
					"%s = '%s'", param.Name(), v)
			}
		}
		args = append(args, query.Codes(vs...))
	}
	start, end, err := d.period(p)
	if err != nil {
		return "", err
	}
	b := query.New(d.opts.BaseURL).Path("CompactData", d.id).Args(args...).
		Query("startPeriod", start).Query("endPeriod", end)
	if n := b.Len(); n > d.opts.MaxURLLength {
		return "", errors.Annotate(ErrRequestTooLarge,
			"URL length %d exceeds the limit of %d", n, d.opts.MaxURLLength)
	}
	return b.String(), nil
}

// QueryData fetches the observations for the selected parameter values and
// returns one table per series. The series attribute values are stored in the
// table's metadata. Every call issues a new request.
func (d *Dataset) QueryData(ctx context.Context, sel Selection, p Period) ([]*table.Table, error) {
	url, err := d.URL(sel, p)
	if err != nil {
		return nil, err
	}
	if d.opts.Fetcher == nil {
		return nil, errors.Reason("no fetcher for dataset %s", d.id)
	}
	body, err := d.opts.Fetcher.FetchJSON(ctx, url)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch data of %s", d.id)
	}
	series, err := d.DecodeSeries(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to decode data of %s", d.id)
	}
	res := make([]*table.Table, len(series))
	for i, s := range series {
		if len(s.Undeclared) > 0 {
			logging.Warningf(ctx, "%s: series %d has undeclared fields: %s",
				d.id, i, strings.Join(s.Undeclared, ", "))
		}
		res[i] = s.Table(d.ObservationAttributes())
	}
	return res, nil
}
