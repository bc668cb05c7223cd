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

package sdmx

import (
	"encoding/json"
	"strings"

	"github.com/stockparfait/errors"
)

// Observation is a single data point: a map of attribute name (without '@')
// to its raw value.
type Observation map[string]string

// Series is a time series with its series-level attribute values, which
// include the values of the dataset's dimensions.
type Series struct {
	Attributes   map[string]string
	Observations []Observation
}

// CompactData is the response of the CompactData endpoint.
type CompactData struct {
	Series []Series
}

// valuesOf extracts the '@'-prefixed scalar values of a JSON object.
func valuesOf(obj map[string]json.RawMessage) map[string]string {
	res := make(map[string]string)
	for k, v := range obj {
		if !strings.HasPrefix(k, "@") {
			continue
		}
		if s, ok := scalar(v); ok {
			res[strings.TrimPrefix(k, "@")] = s
		}
	}
	return res
}

type rawCompactData struct {
	CompactData *struct {
		DataSet *struct {
			Series oneOrMany[map[string]json.RawMessage] `json:"Series"`
		} `json:"DataSet"`
	} `json:"CompactData"`
}

// ParseCompactData parses the response of the CompactData endpoint. A data set
// without any series is valid and results in no series.
func ParseCompactData(data []byte) (*CompactData, error) {
	var raw rawCompactData
	if err := unmarshal(data, &raw, "CompactData"); err != nil {
		return nil, err
	}
	if raw.CompactData == nil || raw.CompactData.DataSet == nil {
		return nil, parseError("missing CompactData.DataSet")
	}
	var res CompactData
	for i, s := range raw.CompactData.DataSet.Series {
		series := Series{Attributes: valuesOf(s)}
		if obsJSON, ok := s["Obs"]; ok {
			var obs oneOrMany[map[string]json.RawMessage]
			if err := unmarshal(obsJSON, &obs, "Obs"); err != nil {
				return nil, errors.Annotate(err, "series %d", i)
			}
			for _, o := range obs {
				series.Observations = append(series.Observations, Observation(valuesOf(o)))
			}
		}
		res.Series = append(res.Series, series)
	}
	return &res, nil
}
