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
	"sync"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"go.chromium.org/luci/common/clock"
)

// pacer keeps at most capacity requests within any window of time. It only
// approximates the undocumented server quota.
type pacer struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	history  []time.Time // oldest first, at most capacity entries
}

func newPacer(capacity int, window time.Duration) *pacer {
	return &pacer{capacity: capacity, window: window}
}

// Wait blocks until n more requests can be issued and records them. Callers
// are serialized, so a sleeping caller delays everyone else.
func (p *pacer) Wait(ctx context.Context, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := len(p.history) + n - p.capacity // how many old requests must expire
	if k > len(p.history) {
		k = len(p.history)
	}
	if k > 0 {
		until := p.history[k-1].Add(p.window)
		if d := until.Sub(clock.Now(ctx)); d > 0 {
			logging.Warningf(ctx, "pacing requests: sleeping for %s", d)
			if r := clock.Sleep(ctx, d); r.Err != nil {
				return errors.Annotate(r.Err, "interrupted while pacing requests")
			}
		}
		p.history = p.history[k:]
	}
	now := clock.Now(ctx)
	for i := 0; i < n; i++ {
		p.history = append(p.history, now)
	}
	if len(p.history) > p.capacity {
		p.history = p.history[len(p.history)-p.capacity:]
	}
	return nil
}
