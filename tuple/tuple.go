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

package tuple

import (
	"sync/atomic"

	"github.com/erigontech/mergekv/keydef"
)

// Handle is an opaque, immutable, reference-counted tuple (§3). Its
// lifetime is governed by Acquire/Release exactly as box_tuple_ref/
// box_tuple_unref govern the original's struct tuple.
type Handle struct {
	format *Format
	raw    []byte
	fields map[int]keydef.Value
	refs   int32
}

// newHandle constructs a Handle with one reference already held, the
// same convention as box_tuple_new + box_tuple_ref in source_fetch.
func newHandle(format *Format, raw []byte, fields map[int]keydef.Value) *Handle {
	return &Handle{format: format, raw: raw, fields: fields, refs: 1}
}

// Acquire adds one reference.
func (h *Handle) Acquire() {
	atomic.AddInt32(&h.refs, 1)
}

// Release drops one reference. It is safe to call exactly once per
// Acquire (including the implicit one held by the constructor); callers
// must not touch h after the reference count reaches zero.
func (h *Handle) Release() {
	atomic.AddInt32(&h.refs, -1)
}

// RefCount reports the current reference count, for tests and the
// bounded-memory property (§8).
func (h *Handle) RefCount() int32 {
	return atomic.LoadInt32(&h.refs)
}

// Raw returns the tuple's undecoded wire bytes.
func (h *Handle) Raw() []byte { return h.raw }

// Field implements keydef.Fields: the value at fieldIndex, decoded
// according to the format's declared type for that field, or (zero,
// false) if the key definition does not reference that field or the
// tuple didn't carry that many fields, which keydef.Value treats as the
// type's zero value (not the same as a declared nil).
func (h *Handle) Field(fieldIndex int) (keydef.Value, bool) {
	v, ok := h.fields[fieldIndex]
	return v, ok
}
