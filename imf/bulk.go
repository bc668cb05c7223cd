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

	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/dataset"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
)

type schemaResult struct {
	id     string
	schema *dataset.Schema
	err    error
}

// FetchSchemas fetches the schemas of many datasets concurrently, in batches of
// the configured size. The pacer is consulted once per batch rather than per
// request. All the IDs are checked against the catalog before any request, and
// the first failure aborts the rest.
func (c *Client) FetchSchemas(ctx context.Context, ids []string) (map[string]*dataset.Schema, error) {
	for _, id := range ids {
		if err := c.checkDataset(id); err != nil {
			return nil, err
		}
	}
	f := func(id string) schemaResult {
		ds, err := c.fetchStructure(ctx, id, c.get)
		if err != nil {
			return schemaResult{id: id, err: err}
		}
		s, err := dataset.NewSchemaFromStructure(ds)
		return schemaResult{id: id, schema: s, err: err}
	}
	res := make(map[string]*dataset.Schema, len(ids))
	size := c.cfg.BatchSize
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		if err := c.pacer.Wait(ctx, len(batch)); err != nil {
			return nil, err
		}
		logging.Infof(ctx, "fetching schemas %d-%d of %d", start+1, end, len(ids))
		pm := iterator.ParallelMap(ctx, len(batch), iterator.FromSlice(batch), f)
		results := iterator.Reduce[schemaResult, []schemaResult](pm, nil,
			func(r schemaResult, acc []schemaResult) []schemaResult {
				return append(acc, r)
			})
		pm.Close()
		for _, r := range results {
			if r.err != nil {
				return nil, errors.Annotate(r.err, "batch of schemas %d-%d", start+1, end)
			}
			res[r.id] = r.schema
		}
	}
	return res, nil
}
