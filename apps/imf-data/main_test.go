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
	"bytes"
	"context"
	"testing"

	"github.com/stockparfait/imf/config"
	"github.com/stockparfait/imf/dataset"
	"github.com/stockparfait/imf/imf"
	"github.com/stockparfait/imf/sdmx"
	"github.com/stockparfait/logging"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(t *testing.T) {
	t.Parallel()

	Convey("parseFlags", t, func() {
		Convey("query", func() {
			flags, err := parseFlags([]string{
				"-config", "path/to/config.toml", "-log-level", "warning",
				"-dataset", "PCPS", "-p", "FREQ=M", "-p", "REF_AREA=US+W00",
				"-p", "REF_AREA=GB", "-p", "COMMODITY=", "-start", "2000", "-csv"})
			So(err, ShouldBeNil)
			So(flags.Config, ShouldEqual, "path/to/config.toml")
			So(flags.LogLevel, ShouldEqual, logging.Warning)
			So(flags.Dataset, ShouldEqual, "PCPS")
			So(flags.Params, ShouldResemble, dataset.Selection{
				"FREQ":      {"M"},
				"REF_AREA":  {"US", "W00", "GB"},
				"COMMODITY": nil,
			})
			So(flags.Start, ShouldEqual, "2000")
			So(flags.End, ShouldEqual, "")
			So(flags.Dated, ShouldEqual, imf.ExcludeDated)
			So(flags.CSV, ShouldBeTrue)
		})

		Convey("list", func() {
			flags, err := parseFlags([]string{"-list", "-dated", "only"})
			So(err, ShouldBeNil)
			So(flags.List, ShouldBeTrue)
			So(flags.Dated, ShouldEqual, imf.OnlyDated)
		})

		Convey("bulk", func() {
			flags, err := parseFlags([]string{"-bulk", "PCPS, IFS,,DOT"})
			So(err, ShouldBeNil)
			So(flags.Bulk, ShouldResemble, []string{"PCPS", "IFS", "DOT"})
		})

		Convey("errors", func() {
			_, err := parseFlags([]string{})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-list", "-dataset", "PCPS"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-list", "-dated", "some"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-list", "-describe"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-dataset", "PCPS", "-describe", "-values", "FREQ"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-bulk", ","})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("selectionFlag", t, func() {
		s := selectionFlag{"B": {"X", "Y"}, "A": {"Z"}}
		So(s.String(), ShouldEqual, "A=Z B=X+Y")
		So(s.Set("FREQ"), ShouldNotBeNil)
		So(s.Set("=M"), ShouldNotBeNil)
		So(s.Set("A=W"), ShouldBeNil)
		So(s["A"], ShouldResemble, []string{"Z", "W"})
	})

	Convey("printData works", t, func() {
		ctx := context.Background()
		server := imf.NewTestServer()
		defer server.Close()

		dataflow, err := sdmx.TestDataflow(
			sdmx.DataflowItem{ID: "PCPS", Description: "Primary Commodity Prices"},
			sdmx.DataflowItem{ID: "IFS", Description: "International Financial Statistics"},
			sdmx.DataflowItem{ID: "FAS_2015", Description: "Financial Access Survey 2015"},
		)
		So(err, ShouldBeNil)
		structure, err := sdmx.TestDataStructure(&sdmx.DataStructure{
			ID:   "PCPS",
			Name: "Primary Commodity Prices",
			CodeLists: []sdmx.CodeList{
				{ID: "CL_FREQ", Name: "Frequency", Codes: []sdmx.CodeValue{
					{Value: "A", Description: "Annual"},
					{Value: "M", Description: "Monthly"},
				}},
			},
			Concepts: []sdmx.Concept{
				{ID: "FREQ", Description: "Frequency"},
				{ID: "TIME_PERIOD", Description: "Date", TextType: "DateTime"},
				{ID: "OBS_VALUE", Description: "Value", TextType: "Double"},
			},
			Parameters: []sdmx.ParameterRef{{Concept: "FREQ", CodeList: "CL_FREQ"}},
			Attributes: []sdmx.AttributeRef{
				{Concept: "TIME_PERIOD", Level: sdmx.LevelObservation},
				{Concept: "OBS_VALUE", Level: sdmx.LevelObservation},
			},
			TimeDimension:  "TIME_PERIOD",
			PrimaryMeasure: "OBS_VALUE",
		})
		So(err, ShouldBeNil)
		data, err := sdmx.TestCompactData(sdmx.Series{
			Attributes: map[string]string{"FREQ": "A"},
			Observations: []sdmx.Observation{
				{"TIME_PERIOD": "2020", "OBS_VALUE": "1.5"},
				{"TIME_PERIOD": "2021", "OBS_VALUE": "2.5"},
			},
		})
		So(err, ShouldBeNil)

		run := func(args []string, bodies ...string) (string, error) {
			server.ResponseBody = append([]string{dataflow}, bodies...)
			cfg := config.Default()
			cfg.BaseURL = server.URL() + "/api"
			c, err := imf.Open(ctx, cfg, imf.WithHTTPClient(server.Client()))
			So(err, ShouldBeNil)
			flags, err := parseFlags(args)
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			err = printData(imf.UseClient(ctx, c), flags, &buf)
			return buf.String(), err
		}

		Convey("list", func() {
			out, err := run([]string{"-list", "-csv"})
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `ID,Description
IFS,International Financial Statistics
PCPS,Primary Commodity Prices
`)
		})

		Convey("list dated", func() {
			out, err := run([]string{"-list", "-dated", "only", "-csv"})
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `ID,Description
FAS_2015,Financial Access Survey 2015
`)
		})

		Convey("describe", func() {
			out, err := run([]string{"-dataset", "PCPS", "-describe", "-csv"}, structure)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `Name,Kind,Role,Values,Description
FREQ,parameter,,2 codes,Frequency
TIME_PERIOD,observation,time,timestamp,Date
OBS_VALUE,observation,value,numeric,Value
`)
		})

		Convey("values", func() {
			out, err := run([]string{"-dataset", "PCPS", "-values", "freq", "-csv"}, structure)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `# component: freq
# description: Frequency
Value,Description
A,Annual
M,Monthly
`)
		})

		Convey("values of unknown component", func() {
			_, err := run([]string{"-dataset", "PCPS", "-values", "NOPE"}, structure)
			So(err, ShouldNotBeNil)
		})

		Convey("query", func() {
			out, err := run([]string{"-dataset", "PCPS", "-p", "FREQ=A",
				"-start", "2020", "-end", "2021", "-csv"}, structure, data)
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/api/CompactData/PCPS/A")
			So(server.RequestQuery.Get("startPeriod"), ShouldEqual, "2020")
			So(server.RequestQuery.Get("endPeriod"), ShouldEqual, "2021")
			So(out, ShouldEqual, `# FREQ: A
TIME_PERIOD,OBS_VALUE
2020,1.5
2021,2.5
`)
		})

		Convey("several series in CSV keep their attributes", func() {
			two, err := sdmx.TestCompactData(
				sdmx.Series{
					Attributes:   map[string]string{"FREQ": "A"},
					Observations: []sdmx.Observation{{"TIME_PERIOD": "2020", "OBS_VALUE": "1.5"}},
				},
				sdmx.Series{
					Attributes:   map[string]string{"FREQ": "M"},
					Observations: []sdmx.Observation{{"TIME_PERIOD": "2020-01", "OBS_VALUE": "0.5"}},
				})
			So(err, ShouldBeNil)
			out, err := run([]string{"-dataset", "PCPS", "-p", "FREQ=A+M", "-csv"}, structure, two)
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/api/CompactData/PCPS/A+M")
			So(out, ShouldEqual, `# FREQ: A
TIME_PERIOD,OBS_VALUE
2020,1.5

# FREQ: M
TIME_PERIOD,OBS_VALUE
2020-01,0.5
`)
		})

		Convey("query as text with metadata", func() {
			out, err := run([]string{"-dataset", "PCPS", "-p", "FREQ=A"}, structure, data)
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "FREQ: A\n")
			So(out, ShouldContainSubstring, "TIME_PERIOD | OBS_VALUE")
		})

		Convey("unknown dataset", func() {
			_, err := run([]string{"-dataset", "NOPE", "-describe"})
			So(err, ShouldNotBeNil)
		})

		Convey("no client", func() {
			flags, err := parseFlags([]string{"-list"})
			So(err, ShouldBeNil)
			So(printData(ctx, flags, &bytes.Buffer{}), ShouldNotBeNil)
		})
	})
}
