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
	"errors"

	"github.com/RoaringBitmap/roaring"
	"github.com/VictoriaMetrics/metrics"

	"github.com/erigontech/mergekv/cursor"
	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/order"
	"github.com/erigontech/mergekv/registry"
	"github.com/erigontech/mergekv/tuple"
)

// Source is one producer handle passed to Start: exactly one of Buffer
// or Func is set. A Buffer producer whose region is already empty is
// skipped per §4.4; a Func producer is always registered.
type Source struct {
	Buffer []byte
	Func   registry.ProducerFunc
}

// Merger is a k-way streaming merger over ordered sequences of typed
// binary tuples (§3/§4.4): a key definition, the tuple format derived
// from it, a direction sign, a cursor array, and the heap over that
// array. Mirrors merger.c's `struct merger` combined with
// state.CursorHeap-style usage, reworked to an index-based heap per §9.
type Merger struct {
	kd      *keydef.KeyDef
	format  *tuple.Format
	heap    sourceHeap
	cursors []*cursor.Cursor // every cursor Start allocated, heaped or not
	reg     *registry.Registry
	origin  map[*cursor.Cursor]int // source index as passed to Start, for the live bitmap

	cfg config

	live *roaring.Bitmap

	fetches   *metrics.Counter
	fixes     *metrics.Counter
	pops      *metrics.Counter
	emits     *metrics.Counter
	liveGauge *metrics.Gauge
}

// New constructs a Merger bound to kd (§4.4's "constructed with a key
// definition"). It holds no sources until Start is called.
func New(kd *keydef.KeyDef, opts ...Option) (*Merger, error) {
	if kd == nil || kd.Len() == 0 {
		return nil, newError(InvalidKeyPart, -1, keydef.ErrInvalidKeyPart)
	}
	cfg := newConfig(opts)
	m := &Merger{
		kd:      kd,
		format:  tuple.NewFormat(kd),
		reg:     registry.New(),
		cfg:     cfg,
		live:    roaring.New(),
		fetches: metrics.GetOrCreateCounter(cfg.metricsPrefix + `_fetches_total`),
		fixes:   metrics.GetOrCreateCounter(cfg.metricsPrefix + `_heap_fixes_total`),
		pops:    metrics.GetOrCreateCounter(cfg.metricsPrefix + `_heap_pops_total`),
		emits:   metrics.GetOrCreateCounter(cfg.metricsPrefix + `_tuples_emitted_total`),
	}
	m.liveGauge = metrics.GetOrCreateGauge(cfg.metricsPrefix+`_live_sources`, func() float64 {
		return float64(m.live.GetCardinality())
	})
	return m, nil
}

// LiveSources returns a snapshot bitmap of source indices that have not
// yet reached end-of-stream, backing the bounded-memory diagnostic.
func (m *Merger) LiveSources() *roaring.Bitmap {
	return m.live.Clone()
}

// Start discards any previously held cursors and their head tuples
// (§4.4), allocates a fresh cursor per source (skipping already-empty
// buffers), performs each cursor's initial fetch, and heapifies every
// cursor whose head is non-none. On OutOfMemory or InvalidSource it
// rolls every partial allocation back and leaves the Merger
// empty-but-usable; a ProducerFault from an initial fetch propagates
// the same way.
func (m *Merger) Start(sources []Source, direction int) error {
	m.closeCursors()
	m.heap = sourceHeap{cursors: make([]*cursor.Cursor, 0, len(sources)), kd: m.kd, dir: order.FromInt(direction)}
	m.cursors = make([]*cursor.Cursor, 0, len(sources))
	m.origin = make(map[*cursor.Cursor]int, len(sources))
	m.live = roaring.New()

	rollback := func() {
		for _, c := range m.cursors {
			c.Close()
		}
		m.cursors = nil
		m.heap.cursors = nil
		m.origin = nil
		m.live = roaring.New()
	}

	for i, s := range sources {
		var c *cursor.Cursor
		var err error
		switch {
		case s.Func != nil:
			c = cursor.NewFunctionSource(m.reg, s.Func)
		default:
			c, err = cursor.NewBufferSource(s.Buffer)
			if err == cursor.ErrEmptyBuffer {
				continue // §4.4: skip buffer producers whose buffer is already empty
			}
			if err != nil {
				rollback()
				return newError(InvalidSource, i, err)
			}
		}
		m.cursors = append(m.cursors, c)
		m.origin[c] = i

		if err := c.Fetch(m.format); err != nil {
			rollback()
			if errors.Is(err, cursor.ErrInvalidSource) {
				return newError(InvalidSource, i, err)
			}
			return newError(ProducerFault, i, err)
		}
		m.fetches.Inc()
		if m.cfg.trace {
			m.cfg.logger.Debug("merge: initial fetch", "source", i, "drained", c.Drained())
		}
		if c.Head() != nil {
			m.heap.insert(c)
			m.live.Add(uint32(i))
		}
	}

	return nil
}

// Next returns the next tuple in merge order, transferring its
// reference to the caller, or (nil, false, nil) at end-of-stream
// (§4.4). A producer fault during the post-emit fetch is fatal to the
// merge run; the cursor that raised it is closed and its reference
// released before the error returns.
func (m *Merger) Next() (*tuple.Handle, bool, error) {
	c := m.heap.top()
	if c == nil {
		return nil, false, nil
	}
	head := c.Head() // reference transfers to the caller below
	idx := m.origin[c]

	if err := c.Fetch(m.format); err != nil {
		c.Close()
		m.heap.remove(c)
		m.live.Remove(uint32(idx))
		if errors.Is(err, cursor.ErrInvalidSource) {
			return nil, false, newError(InvalidSource, idx, err)
		}
		return nil, false, newError(ProducerFault, idx, err)
	}
	m.fetches.Inc()
	if m.cfg.trace {
		m.cfg.logger.Debug("merge: fetch", "source", idx, "drained", c.Drained())
	}

	if c.Head() == nil {
		m.heap.remove(c)
		c.Close()
		m.pops.Inc()
		m.live.Remove(uint32(idx))
	} else {
		m.heap.fix(c)
		m.fixes.Inc()
	}
	m.emits.Inc()
	return head, true, nil
}

// Cmp compares the heap top's head tuple against an external key,
// signed by direction, or reports end-of-stream if the heap is empty.
// No side effects, mirroring memtx_tree_compare_key's tuple-vs-key
// shape (§9).
func (m *Merger) Cmp(key []keydef.Value) (result int, eof bool) {
	c := m.heap.top()
	if c == nil {
		return 0, true
	}
	return m.heap.dir.Sign() * m.kd.CompareKey(c.Head(), key), false
}

// Destroy releases the heap, every cursor, and every still-held head
// tuple, then drops the Merger's reference to its format and key
// definition (§4.4). A destroyed Merger must not be reused; construct
// a new one via New.
func (m *Merger) Destroy() {
	m.closeCursors()
	m.format = nil
	m.kd = nil
}

func (m *Merger) closeCursors() {
	for _, c := range m.cursors {
		c.Close()
	}
	m.cursors = nil
	m.heap.cursors = nil
	m.origin = nil
}
