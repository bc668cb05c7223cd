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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestConfig(t *testing.T) {
	t.Parallel()
	tmpdir := t.TempDir()

	Convey("Config", t, func() {
		Convey("Default", func() {
			c := Default()
			So(c.BaseURL, ShouldEqual, "https://dataservices.imf.org/REST/SDMX_JSON.svc")
			So(c.MaxURLLength, ShouldEqual, 356)
			So(c.RateLimitRequests, ShouldEqual, 10)
			So(c.Window(), ShouldEqual, 5*time.Second)
			So(c.BatchSize, ShouldEqual, 10)
			So(c.QuotaStatus, ShouldEqual, 429)
			So(c.RequestTimeout(), ShouldEqual, time.Minute)
			So(c.StartPeriod, ShouldEqual, "1900")
			So(c.EndPeriod, ShouldEqual, "2100")
		})

		Convey("Load from a file", func() {
			path := filepath.Join(tmpdir, "config.toml")
			So(writeFile(path, `
base_url = "http://localhost:8080/api"
max_url_length = 1000
rate_limit_window = "1s"
start_period = "2000"
`), ShouldBeNil)
			c, err := Load(path)
			So(err, ShouldBeNil)
			So(c.BaseURL, ShouldEqual, "http://localhost:8080/api")
			So(c.MaxURLLength, ShouldEqual, 1000)
			So(c.Window(), ShouldEqual, time.Second)
			So(c.StartPeriod, ShouldEqual, "2000")
			So(c.EndPeriod, ShouldEqual, "2100")
			So(c.RateLimitRequests, ShouldEqual, 10)
		})

		Convey("missing file uses defaults", func() {
			c, err := Load(filepath.Join(tmpdir, "nonexistent.toml"))
			So(err, ShouldBeNil)
			So(c.MaxURLLength, ShouldEqual, 356)
		})

		Convey("bad file", func() {
			path := filepath.Join(tmpdir, "bad.toml")
			So(writeFile(path, `max_url_length = "long"`), ShouldBeNil)
			_, err := Load(path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to decode config file")
		})

		Convey("Validate", func() {
			c := Default()
			So(c.Validate(), ShouldBeNil)

			c.RateLimitWindow = "five seconds"
			So(c.Validate(), ShouldNotBeNil)

			c = Default()
			c.BatchSize = 11
			So(c.Validate(), ShouldNotBeNil)

			c = Default()
			c.QuotaStatus = 42
			So(c.Validate(), ShouldNotBeNil)

			for _, status := range []int{200, 204, 299} {
				c = Default()
				c.QuotaStatus = status
				So(c.Validate(), ShouldNotBeNil)
			}
			c = Default()
			c.QuotaStatus = 503
			So(c.Validate(), ShouldBeNil)

			c = Default()
			c.EndPeriod = "21"
			So(c.Validate(), ShouldNotBeNil)

			c = Default()
			c.MaxURLLength = 0
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("DatasetOptions", func() {
			c := Default()
			opts := c.DatasetOptions(nil)
			So(opts.BaseURL, ShouldEqual, c.BaseURL)
			So(opts.MaxURLLength, ShouldEqual, 356)
			So(opts.StartPeriod, ShouldEqual, "1900")
			So(opts.EndPeriod, ShouldEqual, "2100")
		})
	})
}

// Environment variables are process-wide, so this test cannot run in
// parallel.
func TestEnvironment(t *testing.T) {
	t.Setenv("IMF_BASE_URL", "http://env.example.com")
	t.Setenv("IMF_QUOTA_STATUS", "403")
	t.Setenv("IMF_RATE_LIMIT_WINDOW", "2s")

	Convey("Environment overrides the file", t, func() {
		path := filepath.Join(t.TempDir(), "config.toml")
		So(writeFile(path, `base_url = "http://file.example.com"
batch_size = 5
`), ShouldBeNil)
		c, err := Load(path)
		So(err, ShouldBeNil)
		So(c.BaseURL, ShouldEqual, "http://env.example.com")
		So(c.QuotaStatus, ShouldEqual, 403)
		So(c.Window(), ShouldEqual, 2*time.Second)
		So(c.BatchSize, ShouldEqual, 5)
	})
}
