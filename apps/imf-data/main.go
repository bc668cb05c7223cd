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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/config"
	"github.com/stockparfait/imf/dataset"
	"github.com/stockparfait/imf/imf"
	"github.com/stockparfait/imf/table"
	"github.com/stockparfait/logging"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// selectionFlag accumulates repeated -p NAME=CODE+CODE arguments.
type selectionFlag dataset.Selection

var _ flag.Value = selectionFlag{}

func (s selectionFlag) String() string {
	var parts []string
	for _, k := range maps.Keys(s) {
		parts = append(parts, k+"="+strings.Join(s[k], "+"))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}

func (s selectionFlag) Set(v string) error {
	name, codes, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return errors.Reason("expected NAME=CODE[+CODE...], got '%s'", v)
	}
	if codes == "" {
		s[name] = nil
		return nil
	}
	s[name] = append(s[name], strings.Split(codes, "+")...)
	return nil
}

func parseDateFilter(s string) (imf.DateFilter, error) {
	switch s {
	case "exclude":
		return imf.ExcludeDated, nil
	case "only":
		return imf.OnlyDated, nil
	case "all":
		return imf.AllDatasets, nil
	}
	return 0, errors.Reason("-dated must be one of exclude, only, all; got '%s'", s)
}

type Flags struct {
	Config   string // default: ~/.imfdata/config.toml
	LogLevel logging.Level
	// Exactly one of List, Dataset or Bulk must be present.
	List     bool
	Dated    imf.DateFilter
	Dataset  string // dataset ID to describe or query
	Describe bool   // print the components of Dataset
	Values   string // print the values of this component of Dataset
	Params   dataset.Selection
	Start    string // start year of the query; default: from config
	End      string // end year of the query; default: from config
	Bulk     []string
	CSV      bool // dump CSV format; default: text.
}

func parseFlags(args []string) (*Flags, error) {
	flags := Flags{Params: make(dataset.Selection)}
	var dated, bulk string
	fs := flag.NewFlagSet("imf-data", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config",
		filepath.Join(os.Getenv("HOME"), ".imfdata", "config.toml"),
		"path to the config file")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.List, "list", false, "list datasets")
	fs.StringVar(&dated, "dated", "exclude",
		"datasets with a year in the description: exclude, only, all")
	fs.StringVar(&flags.Dataset, "dataset", "", "dataset ID")
	fs.BoolVar(&flags.Describe, "describe", false, "print the dataset components")
	fs.StringVar(&flags.Values, "values", "", "print the values of the dataset component")
	fs.Var(selectionFlag(flags.Params), "p",
		"query parameter NAME=CODE+CODE; repeatable, an omitted name is unconstrained")
	fs.StringVar(&flags.Start, "start", "", "start year of the query")
	fs.StringVar(&flags.End, "end", "", "end year of the query")
	fs.StringVar(&bulk, "bulk", "", "comma-separated dataset IDs to fetch schemas for")
	fs.BoolVar(&flags.CSV, "csv", false, "print tables in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Dated, err = parseDateFilter(dated); err != nil {
		return nil, err
	}
	if bulk != "" {
		for _, id := range strings.Split(bulk, ",") {
			if id = strings.TrimSpace(id); id != "" {
				flags.Bulk = append(flags.Bulk, id)
			}
		}
		if len(flags.Bulk) == 0 {
			return nil, errors.Reason("-bulk has no dataset IDs")
		}
	}
	kinds := 0
	if flags.List {
		kinds++
	}
	if flags.Dataset != "" {
		kinds++
	}
	if len(flags.Bulk) > 0 {
		kinds++
	}
	if kinds != 1 {
		return nil, errors.Reason("expected exactly one of -list, -dataset or -bulk")
	}
	if flags.Dataset == "" && (flags.Describe || flags.Values != "" || len(flags.Params) > 0) {
		return nil, errors.Reason("-describe, -values and -p require -dataset")
	}
	if flags.Describe && flags.Values != "" {
		return nil, errors.Reason("-describe and -values are mutually exclusive")
	}
	return &flags, nil
}

func listTable(c *imf.Client, f imf.DateFilter) *table.Table {
	datasets := c.Datasets(f)
	tbl := table.NewTable("ID", "Description")
	for _, id := range c.DatasetIDs(f) {
		tbl.AddRow(table.Strings{id, datasets[id]})
	}
	return tbl
}

func valueDomain(a *dataset.Attribute) string {
	if a.IsCoded() {
		return fmt.Sprintf("%d codes", len(a.Codes()))
	}
	return string(a.Type())
}

func describeTable(d *dataset.Dataset) *table.Table {
	s := d.Schema()
	role := func(name string) string {
		switch name {
		case s.TimeName():
			return "time"
		case s.ValueName():
			return "value"
		}
		return ""
	}
	tbl := table.NewTable("Name", "Kind", "Role", "Values", "Description")
	add := func(kind string, attrs []*dataset.Attribute) {
		for _, a := range attrs {
			tbl.AddRow(table.Strings{
				a.Name(), kind, role(a.Name()), valueDomain(a), a.Description()})
		}
	}
	add("parameter", s.Parameters())
	add("series", s.SeriesAttributes())
	add("observation", s.ObservationAttributes())
	for k, v := range d.Annotations() {
		tbl.SetMetadata(k, v)
	}
	return tbl
}

func valuesTable(d *dataset.Dataset, name string) (*table.Table, error) {
	values, err := d.ValuesOf(name)
	if err != nil {
		return nil, err
	}
	desc, err := d.DescriptionOf(name)
	if err != nil {
		return nil, err
	}
	tbl := table.NewTable("Value", "Description")
	tbl.SetMetadata("component", name)
	tbl.SetMetadata("description", desc)
	for _, v := range values {
		// A typed component has no codes, only its type name.
		cd, err := d.CodeDescription(name, v)
		if err != nil {
			cd = ""
		}
		tbl.AddRow(table.Strings{v, cd})
	}
	return tbl, nil
}

func bulkTable(ctx context.Context, c *imf.Client, ids []string) (*table.Table, error) {
	schemas, err := c.FetchSchemas(ctx, ids)
	if err != nil {
		return nil, err
	}
	tbl := table.NewTable("ID", "Parameters", "Series attributes", "Observation attributes")
	sorted := maps.Keys(schemas)
	slices.Sort(sorted)
	for _, id := range sorted {
		s := schemas[id]
		tbl.AddRow(table.Strings{
			id,
			strconv.Itoa(len(s.Parameters())),
			strconv.Itoa(len(s.SeriesAttributes())),
			strconv.Itoa(len(s.ObservationAttributes())),
		})
	}
	return tbl, nil
}

func writeTables(w io.Writer, tables []*table.Table, csv bool) error {
	for i, tbl := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return errors.Annotate(err, "failed to write separator")
			}
		}
		if csv {
			if err := tbl.WriteCSV(w, table.Params{Metadata: true}); err != nil {
				return errors.Annotate(err, "failed to print CSV")
			}
			continue
		}
		if err := tbl.WriteText(w, table.Params{Metadata: true}); err != nil {
			return errors.Annotate(err, "failed to print text")
		}
	}
	return nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	c := imf.GetClient(ctx)
	if c == nil {
		return errors.Reason("no IMF client in context")
	}
	var tables []*table.Table
	switch {
	case flags.List:
		tables = append(tables, listTable(c, flags.Dated))
	case len(flags.Bulk) > 0:
		tbl, err := bulkTable(ctx, c, flags.Bulk)
		if err != nil {
			return errors.Annotate(err, "failed to fetch schemas")
		}
		tables = append(tables, tbl)
	default:
		d, err := c.Dataset(ctx, flags.Dataset)
		if err != nil {
			return errors.Annotate(err, "failed to load dataset %s", flags.Dataset)
		}
		switch {
		case flags.Describe:
			tables = append(tables, describeTable(d))
		case flags.Values != "":
			tbl, err := valuesTable(d, flags.Values)
			if err != nil {
				return errors.Annotate(err, "failed to list values")
			}
			tables = append(tables, tbl)
		default:
			p := dataset.Period{Start: flags.Start, End: flags.End}
			if tables, err = d.QueryData(ctx, flags.Params, p); err != nil {
				return errors.Annotate(err, "failed to query %s", flags.Dataset)
			}
			if len(tables) == 0 {
				logging.Warningf(ctx, "no data in %s for the query", flags.Dataset)
			}
		}
	}
	return writeTables(w, tables, flags.CSV)
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	cfg, err := config.Load(flags.Config)
	if err != nil {
		logging.Errorf(ctx, "failed to load config: %s", err.Error())
		os.Exit(1)
	}
	c, err := imf.Open(ctx, cfg)
	if err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
	ctx = imf.UseClient(ctx, c)
	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
