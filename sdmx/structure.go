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
	"strings"

	"github.com/stockparfait/errors"
)

// CodeValue is a single permitted code and its description.
type CodeValue struct {
	Value       string
	Description string
}

// CodeList is an ordered list of permitted codes of a coded component.
type CodeList struct {
	ID    string
	Name  string
	Codes []CodeValue
}

// Concept describes a component of a dataset. TextType is the declared value
// type ("Double", "DateTime", etc.) and is empty when not declared.
type Concept struct {
	ID          string
	Description string
	TextType    string
}

// ParameterRef is a dimension of the dataset: a concept coded by a code list.
type ParameterRef struct {
	Concept  string
	CodeList string
}

// Level is the attachment level of an attribute.
type Level string

// Values of Level.
const (
	LevelSeries      Level = "series"
	LevelObservation Level = "observation"
)

// AttributeRef is an attribute of the dataset. CodeList may be empty.
type AttributeRef struct {
	Concept  string
	CodeList string
	Level    Level
}

// Annotation is a piece of dataset-level metadata, such as the source or the
// last update date. Title is normalized to a lower case identifier.
type Annotation struct {
	Title string
	Text  string
}

// DataStructure is the parsed schema of a dataset.
type DataStructure struct {
	ID             string
	Name           string
	CodeLists      []CodeList
	Concepts       []Concept
	Parameters     []ParameterRef
	Attributes     []AttributeRef // time dimension, primary measure, then the rest
	Annotations    []Annotation
	TimeDimension  string // concept name of the time period
	PrimaryMeasure string // concept name of the observation value
}

// CodeList finds a code list by ID.
func (d *DataStructure) CodeList(id string) (*CodeList, bool) {
	for i := range d.CodeLists {
		if d.CodeLists[i].ID == id {
			return &d.CodeLists[i], true
		}
	}
	return nil, false
}

// Concept finds a concept by ID.
func (d *DataStructure) Concept(id string) (*Concept, bool) {
	for i := range d.Concepts {
		if d.Concepts[i].ID == id {
			return &d.Concepts[i], true
		}
	}
	return nil, false
}

// AnnotationMap returns annotations as a map of title to text. When a title
// repeats, the last one wins.
func (d *DataStructure) AnnotationMap() map[string]string {
	res := make(map[string]string, len(d.Annotations))
	for _, a := range d.Annotations {
		res[a.Title] = a.Text
	}
	return res
}

type rawCodeValue struct {
	Value       string `json:"@value"`
	Description text   `json:"Description"`
}

type rawCodeList struct {
	ID          string                  `json:"@id"`
	Name        text                    `json:"Name"`
	Description text                    `json:"Description"`
	Code        oneOrMany[rawCodeValue] `json:"Code"`
}

type rawTextFormat struct {
	TextType string `json:"@textType"`
}

type rawConcept struct {
	ID         string         `json:"@id"`
	Name       text           `json:"Name"`
	TextFormat *rawTextFormat `json:"TextFormat"`
}

type rawConceptScheme struct {
	Concept *oneOrMany[rawConcept] `json:"Concept"`
}

type rawComponent struct {
	ConceptRef      string `json:"@conceptRef"`
	CodeList        string `json:"@codelist"`
	AttachmentLevel string `json:"@attachmentLevel"`
}

type rawComponents struct {
	Dimension      *oneOrMany[rawComponent] `json:"Dimension"`
	TimeDimension  *rawComponent            `json:"TimeDimension"`
	PrimaryMeasure *rawComponent            `json:"PrimaryMeasure"`
	Attribute      *oneOrMany[rawComponent] `json:"Attribute"`
}

type rawAnnotation struct {
	Title text `json:"AnnotationTitle"`
	Text  text `json:"AnnotationText"`
}

type rawAnnotations struct {
	Annotation *oneOrMany[rawAnnotation] `json:"Annotation"`
}

type rawKeyFamily struct {
	ID          string          `json:"@id"`
	Name        text            `json:"Name"`
	Components  *rawComponents  `json:"Components"`
	Annotations *rawAnnotations `json:"Annotations"`
}

type rawDataStructure struct {
	Structure *struct {
		CodeLists *struct {
			CodeList *oneOrMany[rawCodeList] `json:"CodeList"`
		} `json:"CodeLists"`
		Concepts *struct {
			ConceptScheme *oneOrMany[rawConceptScheme] `json:"ConceptScheme"`
		} `json:"Concepts"`
		KeyFamilies *struct {
			KeyFamily *oneOrMany[rawKeyFamily] `json:"KeyFamily"`
		} `json:"KeyFamilies"`
	} `json:"Structure"`
}

func normalizeTitle(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
}

func parseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "observation":
		return LevelObservation, nil
	case "series", "group":
		return LevelSeries, nil
	}
	return "", errors.Reason("unsupported attachment level: '%s'", level)
}

// ParseDataStructure parses the response of the DataStructure endpoint.
func ParseDataStructure(data []byte) (*DataStructure, error) {
	var raw rawDataStructure
	if err := unmarshal(data, &raw, "DataStructure"); err != nil {
		return nil, err
	}
	st := raw.Structure
	if st == nil {
		return nil, parseError("missing Structure")
	}
	if st.CodeLists == nil || st.CodeLists.CodeList == nil {
		return nil, parseError("missing Structure.CodeLists.CodeList")
	}
	if st.Concepts == nil || st.Concepts.ConceptScheme == nil {
		return nil, parseError("missing Structure.Concepts.ConceptScheme")
	}
	if st.KeyFamilies == nil || st.KeyFamilies.KeyFamily == nil || len(*st.KeyFamilies.KeyFamily) == 0 {
		return nil, parseError("missing Structure.KeyFamilies.KeyFamily")
	}
	kf := (*st.KeyFamilies.KeyFamily)[0]
	comp := kf.Components
	if comp == nil {
		return nil, parseError("missing Structure.KeyFamilies.KeyFamily.Components")
	}
	for _, c := range []struct {
		name    string
		missing bool
	}{
		{"Dimension", comp.Dimension == nil},
		{"TimeDimension", comp.TimeDimension == nil},
		{"PrimaryMeasure", comp.PrimaryMeasure == nil},
		{"Attribute", comp.Attribute == nil},
	} {
		if c.missing {
			return nil, parseError(
				"missing Structure.KeyFamilies.KeyFamily.Components.%s", c.name)
		}
	}
	if kf.Annotations == nil || kf.Annotations.Annotation == nil {
		return nil, parseError(
			"missing Structure.KeyFamilies.KeyFamily.Annotations.Annotation")
	}

	res := DataStructure{
		ID:             kf.ID,
		Name:           string(kf.Name),
		TimeDimension:  comp.TimeDimension.ConceptRef,
		PrimaryMeasure: comp.PrimaryMeasure.ConceptRef,
	}
	for _, cl := range *st.CodeLists.CodeList {
		name := string(cl.Name)
		if name == "" {
			name = string(cl.Description)
		}
		codes := make([]CodeValue, len(cl.Code))
		for i, c := range cl.Code {
			codes[i] = CodeValue{Value: c.Value, Description: string(c.Description)}
		}
		res.CodeLists = append(res.CodeLists, CodeList{ID: cl.ID, Name: name, Codes: codes})
	}
	for i, cs := range *st.Concepts.ConceptScheme {
		if cs.Concept == nil {
			return nil, parseError(
				"missing Structure.Concepts.ConceptScheme[%d].Concept", i)
		}
		for _, c := range *cs.Concept {
			concept := Concept{ID: c.ID, Description: string(c.Name)}
			if c.TextFormat != nil {
				concept.TextType = c.TextFormat.TextType
			}
			res.Concepts = append(res.Concepts, concept)
		}
	}
	for _, d := range *comp.Dimension {
		if d.ConceptRef == "" {
			return nil, parseError("dimension without @conceptRef")
		}
		res.Parameters = append(res.Parameters,
			ParameterRef{Concept: d.ConceptRef, CodeList: d.CodeList})
	}
	attrs := append([]rawComponent{*comp.TimeDimension, *comp.PrimaryMeasure},
		*comp.Attribute...)
	for i, a := range attrs {
		if a.ConceptRef == "" {
			return nil, parseError("attribute without @conceptRef")
		}
		level := LevelObservation
		if i >= 2 { // time dimension and primary measure are always per observation
			var err error
			if level, err = parseLevel(a.AttachmentLevel); err != nil {
				return nil, parseError("attribute %s: %s", a.ConceptRef, err.Error())
			}
		}
		res.Attributes = append(res.Attributes, AttributeRef{
			Concept:  a.ConceptRef,
			CodeList: a.CodeList,
			Level:    level,
		})
	}
	for _, a := range *kf.Annotations.Annotation {
		res.Annotations = append(res.Annotations, Annotation{
			Title: normalizeTitle(string(a.Title)),
			Text:  string(a.Text),
		})
	}
	return &res, nil
}
