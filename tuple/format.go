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

// Package tuple implements the opaque, immutable, reference-counted
// binary record of §3, its wire decoder, and the tuple format derived
// from a key definition (§4.1). Mirrors merger.c's box_tuple_format_t /
// box_tuple_new / box_tuple_ref / box_tuple_unref.
package tuple

import "github.com/erigontech/mergekv/keydef"

// Format pins the field layout a tuple must satisfy. It only needs to
// know, for every field the key definition references, that field's
// declared type and nullability — it does not care about fields the key
// definition never touches.
type Format struct {
	kd     *keydef.KeyDef
	byIdx  map[int]keydef.KeyPart
	maxIdx int
}

// NewFormat derives a Format from a key definition, as §4.1 requires:
// "Result: an owned key definition plus a tuple format constructed from
// it."
func NewFormat(kd *keydef.KeyDef) *Format {
	f := &Format{kd: kd, byIdx: make(map[int]keydef.KeyPart, kd.Len())}
	for _, p := range kd.Parts() {
		f.byIdx[p.FieldIndex] = p
		if p.FieldIndex > f.maxIdx {
			f.maxIdx = p.FieldIndex
		}
	}
	return f
}

// KeyDef returns the key definition this format was derived from.
func (f *Format) KeyDef() *keydef.KeyDef { return f.kd }
