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

// Package state is the domain stack built on top of package merge: it
// drives a Merger across a realistic workload (many sorted run files,
// many independent merge jobs) instead of one ad-hoc caller.
package state

import (
	"context"
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/mergekv/merge"
)

// RecordSink receives one merged record at a time, in merge order.
// Mirrors the teacher's compress.Compressor.AddWord/AddUncompressedWord
// pair, generalized to an interface so MergeFiles doesn't depend on a
// specific on-disk compression format.
type RecordSink interface {
	WriteRecord(raw []byte) error
}

// MergeFiles drains m — already started by the caller with one source
// per input run file — in merge order and writes every emitted tuple's
// raw wire record to sink, counting how many it wrote. Unlike the
// teacher's multi-way merge (which collapses same-key runs down to one
// winner for commitment purposes), MergeFiles writes every tuple the
// heap ever produces: deduplication is out of scope here, so there is
// no "lastKey/keyBuf one iteration behind" bookkeeping to do.
func MergeFiles(ctx context.Context, m *merge.Merger, sink RecordSink, trace bool) (keyCount int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return keyCount, err
		}
		h, ok, err := m.Next()
		if err != nil {
			return keyCount, fmt.Errorf("state: merge files: %w", err)
		}
		if !ok {
			return keyCount, nil
		}
		werr := sink.WriteRecord(h.Raw())
		h.Release()
		if werr != nil {
			return keyCount, fmt.Errorf("state: merge files: write record %d: %w", keyCount, werr)
		}
		keyCount++
		if trace {
			log.Debug("merge: wrote record", "count", keyCount)
		}
	}
}
