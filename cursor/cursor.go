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

// Package cursor implements the merger's per-source state (§3/§4.2): a
// producer handle (buffer or pull-function) plus a current head tuple,
// mirroring merger.c's `struct source` / `source_fetch`.
package cursor

import (
	"errors"

	"github.com/erigontech/mergekv/tuple"
)

// ErrInvalidSource is returned by NewBufferSource when a buffer's header
// is malformed, and by Fetch when a buffered record is malformed or a
// function source returns a non-tuple value, matching the spec's
// InvalidSource error kind.
var ErrInvalidSource = errors.New("invalid merge source")

// ErrProducerFault wraps an error surfaced by a pull-function producer
// itself, matching the spec's ProducerFault error kind.
var ErrProducerFault = errors.New("producer fault")

// source is the strategy a Cursor fetches its head tuple through.
type source interface {
	// fetch returns the next tuple (one reference acquired) or (nil, nil)
	// at end-of-stream. It never retries after end-of-stream.
	fetch(format *tuple.Format) (*tuple.Handle, error)
	// close releases any resource the source variant itself owns (the
	// function source's registry handle; the buffer source owns nothing).
	close()
}

// Cursor is the merger's per-source state: a producer plus its current
// head tuple (nil denotes end-of-stream, terminal). heapIndex is
// maintained by package merge's sourceHeap and is not meaningful outside
// a Merger run.
type Cursor struct {
	src       source
	head      *tuple.Handle
	drained   bool
	heapIndex int // maintained by merge.sourceHeap; -1 when not in a heap
}

// Head returns the current head tuple, or nil at end-of-stream.
func (c *Cursor) Head() *tuple.Handle { return c.head }

// Drained reports whether this cursor has observed end-of-stream. Once
// true it never reverts to false (§4.2's fetch post-condition).
func (c *Cursor) Drained() bool { return c.drained }

// HeapIndex returns this cursor's current slot in the owning heap, or
// -1 if it is not a member of any heap.
func (c *Cursor) HeapIndex() int { return c.heapIndex }

// SetHeapIndex is called exclusively by package merge's sourceHeap to
// keep heapIndex in sync with the cursor's slot.
func (c *Cursor) SetHeapIndex(i int) { c.heapIndex = i }

// Fetch advances the cursor by one record: on success, the head is
// either nil (end-of-stream, terminal) or a newly acquired tuple. Fetch
// is a no-op once Drained() is true.
func (c *Cursor) Fetch(format *tuple.Format) error {
	if c.drained {
		c.head = nil
		return nil
	}
	h, err := c.src.fetch(format)
	if err != nil {
		return err
	}
	c.head = h
	if h == nil {
		c.drained = true
	}
	return nil
}

// Close releases the cursor's held head tuple (if any) and any resource
// owned by its source variant (e.g. a function source's registry
// handle). It is the per-cursor half of a Merger's Destroy/Start-again
// cleanup.
func (c *Cursor) Close() {
	if c.head != nil {
		c.head.Release()
		c.head = nil
	}
	c.src.close()
}
