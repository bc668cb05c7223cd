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

// Package imf is a client of the IMF data service and its SDMX-JSON API.
//
// The service is at https://dataservices.imf.org/REST/SDMX_JSON.svc . It has
// no official rate limit documentation; in practice it allows about 10
// requests in 5 seconds and a daily quota, and its violation results in a
// dedicated HTTP status. The Client paces its requests to stay within the
// limit and never retries.
//
// A typical use:
//
//	c, err := imf.Open(ctx, config.Default())
//	ids := c.DatasetIDs(imf.ExcludeDated)
//	d, err := c.Dataset(ctx, "PCPS")
//	tables, err := d.QueryData(ctx, dataset.Selection{"FREQ": {"M"}}, dataset.Period{})
//
// The list of datasets (the catalog) is fetched once by Open or Init and can be
// refreshed with RefreshCatalog. Dataset IDs are checked against the catalog
// before any request is sent.
package imf
