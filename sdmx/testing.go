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
)

type obj = map[string]interface{}

func textJSON(s string) obj {
	return obj{"@xml:lang": "en", "#text": s}
}

// TestDataflow generates the JSON string in the format returned by the
// Dataflow endpoint. For use in tests.
func TestDataflow(items ...DataflowItem) (string, error) {
	flows := make([]obj, len(items))
	for i, it := range items {
		flows[i] = obj{
			"@id":          "DS-" + it.ID,
			"KeyFamilyRef": obj{"KeyFamilyID": it.ID, "KeyFamilyAgencyID": "IMF"},
			"Name":         textJSON(it.Description),
		}
	}
	bytes, err := json.Marshal(obj{
		"Structure": obj{"Dataflows": obj{"Dataflow": flows}},
	})
	return string(bytes), err
}

// TestDataStructure generates the JSON string in the format returned by the
// DataStructure endpoint. The first two Attributes are rendered as the time
// dimension and the primary measure. For use in tests.
func TestDataStructure(d *DataStructure) (string, error) {
	codeLists := make([]obj, len(d.CodeLists))
	for i, cl := range d.CodeLists {
		codes := make([]obj, len(cl.Codes))
		for j, c := range cl.Codes {
			codes[j] = obj{"@value": c.Value, "Description": textJSON(c.Description)}
		}
		codeLists[i] = obj{"@id": cl.ID, "Name": textJSON(cl.Name), "Code": codes}
	}
	concepts := make([]obj, len(d.Concepts))
	for i, c := range d.Concepts {
		concepts[i] = obj{"@id": c.ID, "Name": textJSON(c.Description)}
		if c.TextType != "" {
			concepts[i]["TextFormat"] = obj{"@textType": c.TextType}
		}
	}
	dims := make([]obj, len(d.Parameters))
	for i, p := range d.Parameters {
		dims[i] = obj{"@conceptRef": p.Concept, "@codelist": p.CodeList}
	}
	component := func(a AttributeRef) obj {
		o := obj{"@conceptRef": a.Concept}
		if a.CodeList != "" {
			o["@codelist"] = a.CodeList
		}
		if a.Level != "" {
			o["@attachmentLevel"] = string(a.Level)
		}
		return o
	}
	components := obj{"Dimension": dims, "Attribute": []obj{}}
	var attrs []obj
	for i, a := range d.Attributes {
		switch i {
		case 0:
			components["TimeDimension"] = component(a)
		case 1:
			components["PrimaryMeasure"] = component(a)
		default:
			attrs = append(attrs, component(a))
		}
	}
	if attrs != nil {
		components["Attribute"] = attrs
	}
	annotations := make([]obj, len(d.Annotations))
	for i, a := range d.Annotations {
		annotations[i] = obj{"AnnotationTitle": a.Title, "AnnotationText": textJSON(a.Text)}
	}
	bytes, err := json.Marshal(obj{"Structure": obj{
		"CodeLists": obj{"CodeList": codeLists},
		"Concepts":  obj{"ConceptScheme": obj{"@id": "CS_" + d.ID, "Concept": concepts}},
		"KeyFamilies": obj{"KeyFamily": obj{
			"@id":         d.ID,
			"Name":        textJSON(d.Name),
			"Components":  components,
			"Annotations": obj{"Annotation": annotations},
		}},
	}})
	return string(bytes), err
}

// TestCompactData generates the JSON string in the format returned by the
// CompactData endpoint. For use in tests.
func TestCompactData(series ...Series) (string, error) {
	ss := make([]obj, len(series))
	for i, s := range series {
		o := obj{}
		for k, v := range s.Attributes {
			o["@"+k] = v
		}
		obs := make([]obj, len(s.Observations))
		for j, ob := range s.Observations {
			obs[j] = obj{}
			for k, v := range ob {
				obs[j]["@"+k] = v
			}
		}
		o["Obs"] = obs
		ss[i] = o
	}
	bytes, err := json.Marshal(obj{"CompactData": obj{"DataSet": obj{"Series": ss}}})
	return string(bytes), err
}
