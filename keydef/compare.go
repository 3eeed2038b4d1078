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

package keydef

// Value is one decoded field, tagged by the FieldType the key part
// declared for it. A decoder (package tuple) fills these in; keydef only
// ever compares them, so it never needs to know the tuple wire format.
type Value struct {
	Null   bool
	Type   FieldType
	Int    int64
	Uint   uint64
	Double float64
	Bool   bool
	Bytes  []byte // string, binary, array, map: compared as raw bytes
}

// Fields is the minimal surface keydef needs from a tuple: "give me the
// value at this key part's declared field index." Implemented by
// tuple.Handle; kept as an interface here (not a direct dependency on
// package tuple) so keydef and tuple don't import each other.
type Fields interface {
	Field(fieldIndex int) (Value, bool)
}

// Compare is the base (ascending, direction +1) comparator: total on
// tuples presenting every declared field, per §4.1 (i)-(iii). It does
// not apply direction or heap drained-sinks semantics — see
// merge.sourceHeap.less for that.
func (kd *KeyDef) Compare(a, b Fields) int {
	for i, part := range kd.parts {
		va, _ := a.Field(part.FieldIndex)
		vb, _ := b.Field(part.FieldIndex)
		if c := compareValue(va, vb, kd.collations[i]); c != 0 {
			return c
		}
	}
	return 0
}

// CompareKey compares a tuple's declared fields against a standalone key
// (typically decoded from caller-supplied key bytes), the shape Cmp(key
// bytes) needs in §4.4.
func (kd *KeyDef) CompareKey(a Fields, key []Value) int {
	for i, part := range kd.parts {
		va, _ := a.Field(part.FieldIndex)
		var vb Value
		if i < len(key) {
			vb = key[i]
		} else {
			vb = Value{Null: true}
		}
		if c := compareValue(va, vb, kd.collations[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareValue(a, b Value, collate CompareFunc) int {
	// (iii) nil orders as less than any non-nil value of the same field.
	if a.Null && b.Null {
		return 0
	}
	if a.Null {
		return -1
	}
	if b.Null {
		return 1
	}
	switch a.Type {
	case FieldInteger:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case FieldUnsigned:
		switch {
		case a.Uint < b.Uint:
			return -1
		case a.Uint > b.Uint:
			return 1
		default:
			return 0
		}
	case FieldDouble:
		switch {
		case a.Double < b.Double:
			return -1
		case a.Double > b.Double:
			return 1
		default:
			return 0
		}
	case FieldBoolean:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		default:
			return 1
		}
	default: // string, binary, array, map, any: compare raw bytes
		if collate != nil {
			return collate(a.Bytes, b.Bytes)
		}
		if len(a.Bytes) < len(b.Bytes) {
			return -1
		}
		if len(a.Bytes) > len(b.Bytes) {
			return 1
		}
		for i := range a.Bytes {
			if a.Bytes[i] != b.Bytes[i] {
				if a.Bytes[i] < b.Bytes[i] {
					return -1
				}
				return 1
			}
		}
		return 0
	}
}
