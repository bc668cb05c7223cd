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
)

// DataflowItem is a dataset available from the service.
type DataflowItem struct {
	ID          string
	Description string
}

// keyFamilyRef is either {"KeyFamilyID": "..."} or a bare ID string.
type keyFamilyRef string

func (k *keyFamilyRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var ref struct {
			ID string `json:"KeyFamilyID"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*k = keyFamilyRef(ref.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = keyFamilyRef(s)
	return nil
}

type rawDataflow struct {
	ID           string       `json:"@id"`
	KeyFamilyRef keyFamilyRef `json:"KeyFamilyRef"`
	Name         text         `json:"Name"`
}

type rawDataflowResponse struct {
	Structure *struct {
		Dataflows *struct {
			Dataflow *oneOrMany[rawDataflow] `json:"Dataflow"`
		} `json:"Dataflows"`
	} `json:"Structure"`
}

// ParseDataflow parses the response of the Dataflow endpoint listing all the
// datasets. The dataset ID is the key family ID, which is what the other
// endpoints accept.
func ParseDataflow(data []byte) ([]DataflowItem, error) {
	var raw rawDataflowResponse
	if err := unmarshal(data, &raw, "Dataflow"); err != nil {
		return nil, err
	}
	if raw.Structure == nil || raw.Structure.Dataflows == nil || raw.Structure.Dataflows.Dataflow == nil {
		return nil, parseError("missing Structure.Dataflows.Dataflow")
	}
	var res []DataflowItem
	for i, d := range *raw.Structure.Dataflows.Dataflow {
		if d.KeyFamilyRef == "" {
			return nil, parseError("dataflow %d (%s) has no KeyFamilyRef", i, d.ID)
		}
		res = append(res, DataflowItem{
			ID:          string(d.KeyFamilyRef),
			Description: string(d.Name),
		})
	}
	return res, nil
}
