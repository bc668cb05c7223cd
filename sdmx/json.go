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
	"bytes"
	"encoding/json"
	"strings"

	"github.com/stockparfait/errors"
)

// ErrSchemaParse is the cause of all the errors caused by a response which
// does not have the expected structure.
var ErrSchemaParse = errors.Reason("unexpected SDMX response format")

func parseError(format string, args ...interface{}) error {
	return errors.Annotate(ErrSchemaParse, format, args...)
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// oneOrMany decodes either a JSON list of T or a single T as a slice.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		*o = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*o = list
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = oneOrMany[T]{v}
	return nil
}

// localized is a text element with an optional language tag.
type localized struct {
	Lang string `json:"@xml:lang"`
	Text string `json:"#text"`
}

// text decodes a text element given as a bare string, a localized object, or a
// list of localized objects. The English version is preferred in a list.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) || len(data) == 0 {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case '{':
		var l localized
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*t = text(l.Text)
	case '[':
		var ls []localized
		if err := json.Unmarshal(data, &ls); err != nil {
			return err
		}
		*t = ""
		for i, l := range ls {
			if i == 0 || strings.HasPrefix(strings.ToLower(l.Lang), "en") {
				*t = text(l.Text)
			}
			if strings.HasPrefix(strings.ToLower(l.Lang), "en") {
				break
			}
		}
	default:
		return errors.Reason("unsupported text element: %s", string(data))
	}
	return nil
}

// scalar converts a JSON string, number or boolean to its string form.
func scalar(data json.RawMessage) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return "", false
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	}
	return string(data), true
}

// unmarshal decodes data into v reporting any JSON error as ErrSchemaParse.
func unmarshal(data []byte, v interface{}, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return parseError("failed to decode %s: %s", what, err.Error())
	}
	return nil
}
