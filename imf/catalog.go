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

package imf

import (
	"context"
	"regexp"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/sdmx"
	"github.com/stockparfait/logging"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DateFilter selects datasets by whether their description mentions a year.
// Dated datasets are usually one-off snapshots, and their parameters are less
// stable than those of the regularly updated ones.
type DateFilter int

// Values of DateFilter.
const (
	ExcludeDated DateFilter = iota // default
	OnlyDated
	AllDatasets
)

// Years are often glued to a period or a prefix, as in "2017M06", "Q12019" or
// "FY2019", so there are no word boundaries.
var datedRe = regexp.MustCompile(`(19|20)\d{2}`)

// IsDated checks if the dataset description contains a year.
func IsDated(description string) bool {
	return datedRe.MatchString(description)
}

func (f DateFilter) keep(description string) bool {
	switch f {
	case OnlyDated:
		return IsDated(description)
	case AllDatasets:
		return true
	}
	return !IsDated(description)
}

// RefreshCatalog fetches the list of datasets and replaces the catalog.
func (c *Client) RefreshCatalog(ctx context.Context) error {
	body, err := c.FetchJSON(ctx, c.DataflowURL())
	if err != nil {
		return errors.Annotate(err, "failed to fetch the dataset list")
	}
	items, err := sdmx.ParseDataflow(body)
	if err != nil {
		return errors.Annotate(err, "failed to parse the dataset list")
	}
	catalog := make(map[string]string, len(items))
	for _, it := range items {
		catalog[it.ID] = it.Description
	}
	c.mu.Lock()
	c.catalog = catalog
	c.mu.Unlock()
	logging.Infof(ctx, "dataset catalog: %d datasets", len(catalog))
	return nil
}

// Datasets returns the catalog entries selected by f as a map of dataset ID
// to description. The map is a copy.
func (c *Client) Datasets(f DateFilter) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make(map[string]string)
	for id, desc := range c.catalog {
		if f.keep(desc) {
			res[id] = desc
		}
	}
	return res
}

// DatasetIDs returns the sorted IDs of the datasets selected by f.
func (c *Client) DatasetIDs(f DateFilter) []string {
	ids := maps.Keys(c.Datasets(f))
	slices.Sort(ids)
	return ids
}

// Description of the dataset from the catalog.
func (c *Client) Description(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	desc, ok := c.catalog[id]
	if !ok {
		if c.catalog == nil {
			return "", errors.Annotate(ErrDatasetNotFound,
				"%s: the catalog is not loaded", id)
		}
		return "", errors.Annotate(ErrDatasetNotFound, "%s", id)
	}
	return desc, nil
}

func (c *Client) checkDataset(id string) error {
	_, err := c.Description(id)
	return err
}
