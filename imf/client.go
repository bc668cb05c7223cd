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
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/imf/config"
	"github.com/stockparfait/imf/dataset"
	"github.com/stockparfait/imf/query"
	"github.com/stockparfait/imf/sdmx"
	"github.com/stockparfait/imf/table"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

var (
	ErrDatasetNotFound = errors.Reason("dataset not found")
	ErrQuotaExceeded   = errors.Reason("request quota exceeded")
	ErrUpstream        = errors.Reason("upstream error")
)

// maxErrorBody is how much of an error response body to include in the error.
const maxErrorBody = 200

// Client of the IMF data service. It is safe for concurrent use.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	pacer      *pacer

	mu      sync.RWMutex
	catalog map[string]string // dataset ID -> description
}

var _ dataset.Fetcher = &Client{}

// Option of the Client.
type Option func(c *Client)

// WithHTTPClient sets the HTTP client. The default client uses the configured
// timeout. A client injected with fetch.UseClient into the request context
// takes precedence, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client without fetching anything. A nil cfg uses the
// default configuration, and cfg is expected to be validated.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Client{
		cfg:   cfg,
		pacer: newPacer(cfg.RateLimitRequests, cfg.Window()),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	return c
}

// Init fetches the dataset catalog.
func (c *Client) Init(ctx context.Context) error {
	return c.RefreshCatalog(ctx)
}

// Open creates a Client and fetches the dataset catalog.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	c := NewClient(cfg, opts...)
	if err := c.Init(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to initialize client")
	}
	return c, nil
}

// UseClient injects the client into the context.
func UseClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// Config of the client.
func (c *Client) Config() *config.Config { return c.cfg }

func (c *Client) url() *query.Builder { return query.New(c.cfg.BaseURL) }

// DataflowURL is the URL of the dataset list.
func (c *Client) DataflowURL() string { return c.url().Path("Dataflow").String() }

// StructureURL is the URL of the schema of a dataset.
func (c *Client) StructureURL(id string) string {
	return c.url().Path("DataStructure", id).String()
}

// MetadataURL is the URL of the generic metadata of the series selected by
// key. The response is not decoded by this package.
func (c *Client) MetadataURL(id string, key ...query.Arg) string {
	return c.url().Path("GenericMetadata", id).Args(key...).String()
}

// FetchJSON issues a paced GET request and returns the JSON body. A response
// with the quota status results in ErrQuotaExceeded. Any other non-2xx status,
// a content type other than JSON or a body that is not JSON results in
// ErrUpstream. There are no retries.
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	if err := c.pacer.Wait(ctx, 1); err != nil {
		return nil, err
	}
	return c.get(ctx, url)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isJSON reports whether the content type allows a JSON body. A missing
// content type is accepted, the body is checked anyway.
func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// get issues an unpaced GET request.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Annotate(err, "failed to create request for %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en,en-US")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	hc := c.httpClient
	if fc := fetch.GetClient(ctx); fc != nil {
		hc = fc
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Annotate(err, "failed to GET %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read response from %s", url)
	}
	logging.Debugf(ctx, "GET %s: %s, %d bytes", url, resp.Status, len(body))
	switch {
	case resp.StatusCode == c.cfg.QuotaStatus:
		return nil, errors.Annotate(ErrQuotaExceeded, "GET %s: %s", url, resp.Status)
	case !fetch.ResponseOK(resp):
		return nil, errors.Annotate(ErrUpstream, "GET %s: %s: %s",
			url, resp.Status, truncate(string(body), maxErrorBody))
	}
	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		return nil, errors.Annotate(ErrUpstream, "GET %s: unexpected content type %s",
			url, ct)
	}
	if !json.Valid(body) {
		return nil, errors.Annotate(ErrUpstream, "GET %s: response is not JSON: %s",
			url, truncate(string(body), maxErrorBody))
	}
	return body, nil
}

// Structure fetches and parses the schema of the dataset.
func (c *Client) Structure(ctx context.Context, id string) (*sdmx.DataStructure, error) {
	if err := c.checkDataset(id); err != nil {
		return nil, err
	}
	return c.fetchStructure(ctx, id, c.FetchJSON)
}

type fetchFunc func(ctx context.Context, url string) ([]byte, error)

func (c *Client) fetchStructure(ctx context.Context, id string, fetch fetchFunc) (*sdmx.DataStructure, error) {
	body, err := fetch(ctx, c.StructureURL(id))
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch schema of %s", id)
	}
	ds, err := sdmx.ParseDataStructure(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse schema of %s", id)
	}
	return ds, nil
}

// Schema fetches the schema of the dataset and resolves its references.
func (c *Client) Schema(ctx context.Context, id string) (*dataset.Schema, error) {
	ds, err := c.Structure(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.NewSchemaFromStructure(ds)
}

// Dataset fetches the schema of the dataset and binds it to this client.
func (c *Client) Dataset(ctx context.Context, id string) (*dataset.Dataset, error) {
	s, err := c.Schema(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.New(id, s, c.cfg.DatasetOptions(c)), nil
}

// QueryData fetches the dataset schema and queries its data. See
// dataset.Dataset.QueryData.
func (c *Client) QueryData(ctx context.Context, id string, sel dataset.Selection, p dataset.Period) ([]*table.Table, error) {
	d, err := c.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.QueryData(ctx, sel, p)
}
