/*
   Copyright 2022 Erigon contributors

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

// Package kv bridges a sorted key/value store's cursor to the merge
// package's pull-function producer contract (§6's "producer callable"
// external interface): any table that can hand back a forward cursor
// over already-sorted keys is a valid merge source without decoding
// its records through a buffer first.
package kv

import (
	"context"
	"errors"

	"github.com/VictoriaMetrics/metrics"
)

//Variables Naming:
//  ts - TimeStamp
//  tx - Database Transaction
//  k - key
//  v - value
//  Cursor - low-level mdbx-style api to walk over a table

const ReadersLimit = 32000 // MDBX_READERS_LIMIT=32767

var (
	ErrAttemptToDeleteNonDeprecatedBucket = errors.New("only buckets from dbutils.ChaindataDeprecatedTables can be deleted")
	ErrUnknownBucket                      = errors.New("unknown bucket. add it to dbutils.ChaindataTables")
	ErrNotSupported                       = errors.New("not supported")

	// SourcesActive, CursorFetches, CursorFetchFault: the same
	// VictoriaMetrics counters the teacher registers at package scope
	// for mdbx-level page operations (DbPgops*), repurposed here for
	// cursor-to-producer bridging activity.
	SourcesActive    = metrics.NewCounter(`kv_cursor_sources_active`)    //nolint
	CursorFetches    = metrics.NewCounter(`kv_cursor_fetches_total`)     //nolint
	CursorFetchFault = metrics.NewCounter(`kv_cursor_fetch_faults_total`) //nolint
)

type DBVerbosityLvl int8
type Label uint8

const (
	ChainDB      Label = 0
	TxPoolDB     Label = 1
	SentryDB     Label = 2
	ConsensusDB  Label = 3
	DownloaderDB Label = 4
	InMem        Label = 5
)

func (l Label) String() string {
	switch l {
	case ChainDB:
		return "chaindata"
	case TxPoolDB:
		return "txpool"
	case SentryDB:
		return "sentry"
	case ConsensusDB:
		return "consensus"
	case DownloaderDB:
		return "downloader"
	case InMem:
		return "inMem"
	default:
		return "unknown"
	}
}

type Closer interface {
	Close()
}

// RoDB is a read-only handle to a key/value store: open a transaction,
// open a cursor against a table within it, feed that cursor to
// NewCursorProducer, hand the result to merge.Merger.Start.
type RoDB interface {
	Closer
	ReadOnly() bool
	View(ctx context.Context, f func(tx RoTx) error) error
	BeginRo(ctx context.Context) (RoTx, error)
}

// RoTx is a read-only transaction: the only capability the merge
// domain needs from it is opening a forward Cursor over a table.
type RoTx interface {
	ID() uint64
	Cursor(table string) (Cursor, error)
	Commit() error
	Rollback()
}

// Cursor is a forward/backward iterator over one table's sorted
// key/value pairs, the same shape the teacher's mdbx binding exposes.
// NewCursorProducer only ever calls First and Next.
type Cursor interface {
	First() ([]byte, []byte, error)               // First - position at first key/data item
	Seek(seek []byte) ([]byte, []byte, error)     // Seek - position at first key greater than or equal to specified key
	SeekExact(key []byte) ([]byte, []byte, error) // SeekExact - position at exact matching key if exists
	Next() ([]byte, []byte, error)                // Next - position at next key/value
	Prev() ([]byte, []byte, error)                // Prev - position at previous key
	Last() ([]byte, []byte, error)                // Last - position at last key and last possible value
	Current() ([]byte, []byte, error)             // Current - return key/data at current cursor position

	Count() (uint64, error)

	Close()
}
