/*
   Copyright 2024 mergekv authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package merge

import (
	"github.com/ledgerwatch/log/v3"
)

const defaultMetricsPrefix = "mergekv_merge"

type config struct {
	logger        log.Logger
	metricsPrefix string
	trace         bool
}

// Option configures a Merger at construction time.
type Option func(*config)

// WithLogger sets the logger used for trace-mode fetch logging.
// Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetricsPrefix sets the VictoriaMetrics metric name prefix this
// Merger registers its counters and gauge under. Defaults to
// "mergekv_merge".
func WithMetricsPrefix(prefix string) Option {
	return func(c *config) { c.metricsPrefix = prefix }
}

// WithTrace enables per-fetch trace logging, mirroring
// domain_committed.go's d.trace flag.
func WithTrace(trace bool) Option {
	return func(c *config) { c.trace = trace }
}

func newConfig(opts []Option) config {
	c := config{logger: log.Root(), metricsPrefix: defaultMetricsPrefix}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
