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

// Package sdmx decodes the SDMX-JSON responses of the IMF data service.
//
// The service translates its XML messages to JSON mechanically: XML
// attributes become keys prefixed with '@', element text becomes "#text", and
// a repeated element becomes a list only when it actually repeats. That is, a
// code list with a single code has an object where a longer one has a list.
// All the repeated elements are normalized to slices here.
//
// Three responses are supported:
//
//   - Dataflow: the list of available datasets (ParseDataflow);
//   - DataStructure: the schema of one dataset (ParseDataStructure);
//   - CompactData: the observations of the selected series (ParseCompactData).
//
// A response missing a required element fails with an error wrapping
// ErrSchemaParse, which signals that the API changed its format.
package sdmx
