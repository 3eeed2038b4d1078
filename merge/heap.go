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

// Package merge implements the k-way streaming merger (§4): an
// index-based binary heap of source cursors (§4.3) plus the Merger
// lifecycle (§4.4/§4.5).
package merge

import (
	"container/heap"

	"github.com/erigontech/mergekv/cursor"
	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/order"
)

// sourceHeap is an arena-plus-index binary heap over *cursor.Cursor
// (§4.3's "preferred" re-implementation of merger.c's cyclic intrusive
// node): cursors live in a plain slice, and each cursor's heapIndex is
// kept in sync by Swap so Fix/Remove can address it directly, mirroring
// the CursorHeap usage pattern (heap.Init/heap.Push/heap.Fix/heap.Pop).
type sourceHeap struct {
	cursors []*cursor.Cursor
	kd      *keydef.KeyDef
	dir     order.By
}

func (h *sourceHeap) Len() int { return len(h.cursors) }

// Less sinks drained cursors to the bottom regardless of direction,
// then orders live cursors by dir.Sign() * Compare(a.head, b.head).
// A drained cursor never reaches here as heap top while any live
// cursor remains, satisfying "no cursor with head == none is in the
// heap" by construction: drained cursors are removed by Fix's caller
// before the next Less call observes them, but Less stays total in
// case one is transiently present mid-update.
func (h *sourceHeap) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]
	if a.Head() == nil || b.Head() == nil {
		return a.Head() != nil // live sorts before drained
	}
	return h.dir.Sign()*h.kd.Compare(a.Head(), b.Head()) < 0
}

func (h *sourceHeap) Swap(i, j int) {
	h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i]
	h.cursors[i].SetHeapIndex(i)
	h.cursors[j].SetHeapIndex(j)
}

func (h *sourceHeap) Push(x interface{}) {
	c := x.(*cursor.Cursor)
	c.SetHeapIndex(len(h.cursors))
	h.cursors = append(h.cursors, c)
}

func (h *sourceHeap) Pop() interface{} {
	old := h.cursors
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	h.cursors = old[:n-1]
	c.SetHeapIndex(-1)
	return c
}

// top returns the minimum cursor without removing it, or nil if empty.
// O(1), per §4.3's required top() operation.
func (h *sourceHeap) top() *cursor.Cursor {
	if h.Len() == 0 {
		return nil
	}
	return h.cursors[0]
}

// fix re-establishes the heap invariant after c's key changed in
// place (the *update* primitive required by §4.3).
func (h *sourceHeap) fix(c *cursor.Cursor) {
	heap.Fix(h, c.HeapIndex())
}

// remove deletes c from the heap (the *delete* primitive), used when a
// cursor's fetch reports end-of-stream.
func (h *sourceHeap) remove(c *cursor.Cursor) {
	heap.Remove(h, c.HeapIndex())
}

// insert adds c to the heap (the *insert* primitive), used during
// start for every cursor whose initial fetch yields a non-none head.
func (h *sourceHeap) insert(c *cursor.Cursor) {
	heap.Push(h, c)
}
