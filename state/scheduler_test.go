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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/mergekv/merge"
)

type syncSink struct {
	mu      sync.Mutex
	records [][]byte
}

func (s *syncSink) WriteRecord(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, append([]byte(nil), raw...))
	return nil
}

func (s *syncSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestSchedulerRunsIndependentJobsConcurrently(t *testing.T) {
	kd := testKeyDef(t)
	sinkA, sinkB := &syncSink{}, &syncSink{}

	jobs := []Job{
		{KeyDef: kd, Sources: []merge.Source{{Buffer: encodeBuffer(1, 2, 3)}}, Direction: 1, Sink: sinkA},
		{KeyDef: kd, Sources: []merge.Source{{Buffer: encodeBuffer(4, 5)}}, Direction: 1, Sink: sinkB},
	}

	sched := NewScheduler(WithMaxConcurrency(2))
	require.NoError(t, sched.Run(context.Background(), jobs))
	require.Equal(t, 3, sinkA.len())
	require.Equal(t, 2, sinkB.len())
}

func TestSchedulerPropagatesJobFailure(t *testing.T) {
	kd := testKeyDef(t)
	malformed := []byte{0x90, 0x01} // bare array, not {DATA: [...]}

	jobs := []Job{
		{KeyDef: kd, Sources: []merge.Source{{Buffer: malformed}}, Direction: 1, Sink: &syncSink{}},
	}

	sched := NewScheduler()
	err := sched.Run(context.Background(), jobs)
	require.Error(t, err)
}
