/*
   Copyright 2021 Erigon contributors

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

package state

import (
	"context"
	"fmt"

	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/merge"
)

// Job is one independent merge run: a key definition, the sources to
// merge, a direction, and the sink its output should land in.
type Job struct {
	KeyDef    *keydef.KeyDef
	Sources   []merge.Source
	Direction int
	Sink      RecordSink
	Trace     bool
}

// SchedulerOption configures a Scheduler at construction time, in the
// teacher's functional-option idiom (§6 AMBIENT STACK).
type SchedulerOption func(*Scheduler)

// WithMaxConcurrency bounds how many Jobs run at once via a
// golang.org/x/sync/semaphore.Weighted, the same primitive
// AggregatorV3.BuildMissedIndices threads through its index-building
// errgroup.
func WithMaxConcurrency(n int64) SchedulerOption {
	return func(s *Scheduler) { s.sem = semaphore.NewWeighted(n) }
}

// Scheduler runs many independent Merger instances concurrently, one
// goroutine per Job, mirroring AggregatorV3.MergeLoop/BuildMissedIndices:
// each job still drives its own Merger from a single goroutine for its
// whole lifetime (§5), the Scheduler only decides how many run at once.
type Scheduler struct {
	sem *semaphore.Weighted
}

// NewScheduler constructs a Scheduler. With no WithMaxConcurrency option
// it runs all submitted jobs at once (unbounded semaphore of the job
// count given to Run).
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes every Job to completion, bounded by the Scheduler's
// concurrency limit, and returns the first error encountered (via
// errgroup.WithContext, cancelling the sibling jobs' context on first
// failure, exactly as BuildMissedIndices does for its index jobs).
func (s *Scheduler) Run(ctx context.Context, jobs []Job) error {
	sem := s.sem
	if sem == nil {
		sem = semaphore.NewWeighted(int64(len(jobs)))
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return s.runJob(gctx, i, job)
		})
	}
	return g.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, index int, job Job) error {
	id := runID(job.KeyDef, len(job.Sources))
	m, err := merge.New(job.KeyDef, merge.WithTrace(job.Trace), merge.WithMetricsPrefix(fmt.Sprintf("mergekv_job_%d", index)))
	if err != nil {
		log.Warn("merge", "job", id, "err", err)
		return fmt.Errorf("state: scheduler: job %s: %w", id, err)
	}
	defer m.Destroy()

	if err := m.Start(job.Sources, job.Direction); err != nil {
		log.Warn("merge", "job", id, "err", err)
		return fmt.Errorf("state: scheduler: job %s: start: %w", id, err)
	}
	n, err := MergeFiles(ctx, m, job.Sink, job.Trace)
	if err != nil {
		log.Warn("merge", "job", id, "err", err)
		return fmt.Errorf("state: scheduler: job %s: %w", id, err)
	}
	log.Debug("merge: job done", "job", id, "records", n)
	return nil
}
