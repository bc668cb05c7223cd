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
	"net/http"
	"net/http/httptest"

	"github.com/stockparfait/testutil"
)

// TestServer is a testutil.TestServer replying with the JSON content type of
// the data service. Configure the responses and check the requests through
// the embedded server, but use URL and Client of this one. For use in tests.
type TestServer struct {
	*testutil.TestServer
	front *httptest.Server
}

// NewTestServer creates and starts a new TestServer.
func NewTestServer() *TestServer {
	ts := testutil.NewTestServer()
	h := ts.Server.Config.Handler
	front := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			h.ServeHTTP(w, r)
		}))
	return &TestServer{TestServer: ts, front: front}
}

// URL returns the base test server URL.
func (s *TestServer) URL() string { return s.front.URL }

// Client is the test server's HTTP client.
func (s *TestServer) Client() *http.Client { return s.front.Client() }

// Close both servers.
func (s *TestServer) Close() {
	s.front.Close()
	s.TestServer.Close()
}
