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
	"fmt"

	"github.com/erigontech/mergekv/keydef"
)

// Header is the decoded {DATA: [...]} buffer envelope of §6: the
// element count is informational only (§9's resolved Open Question), so
// it is kept for diagnostics but never checked against actual elements
// consumed.
type Header struct {
	DeclaredCount int
}

// DecodeHeader parses the buffer-source envelope mandated by §6: a
// one-entry map whose key is DataKey and whose value is an array header.
// Any deviation is ErrMalformed, which callers map to the spec's
// InvalidSource. rest is positioned at the first record.
func DecodeHeader(buf []byte) (hdr Header, rest []byte, err error) {
	count, rest, err := decodeMapHeader(buf)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: outer value is not a map", ErrMalformed)
	}
	if count != 1 {
		return Header{}, nil, fmt.Errorf("%w: map has %d entries, want exactly 1", ErrMalformed, count)
	}
	key, rest, err := decodeUint(rest)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: map key is not an unsigned integer", ErrMalformed)
	}
	if key != DataKey {
		return Header{}, nil, fmt.Errorf("%w: map key 0x%x is not DATA (0x%x)", ErrMalformed, key, DataKey)
	}
	declared, rest, err := decodeArrayHeader(rest)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: map value is not an array", ErrMalformed)
	}
	return Header{DeclaredCount: declared}, rest, nil
}

// DecodeRecord parses one self-delimiting record — a MessagePack-style
// array of fields — from the front of buf, producing a Handle holding
// one reference, and returns the number of bytes the record occupied so
// the caller (a buffer source) can advance its read position exactly as
// mp_next does in the original.
func DecodeRecord(format *Format, buf []byte) (h *Handle, consumed int, err error) {
	start := buf
	count, rest, err := decodeArrayHeader(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("tuple: decode record: %w", err)
	}
	fields := make(map[int]keydef.Value, len(format.byIdx))
	for i := 0; i < count; i++ {
		part, wanted := format.byIdx[i]
		if !wanted {
			rest, err = skipValue(rest)
			if err != nil {
				return nil, 0, fmt.Errorf("tuple: decode record: field %d: %w", i, err)
			}
			continue
		}
		var raw rawValue
		raw, rest, err = decodeScalar(rest)
		if err != nil {
			return nil, 0, fmt.Errorf("tuple: decode record: field %d: %w", i, err)
		}
		fields[i] = toKeyValue(raw, part.Type)
	}
	consumed = len(start) - len(rest)
	return newHandle(format, start[:consumed], fields), consumed, nil
}

// toKeyValue converts the decoder's untyped rawValue into a typed
// keydef.Value according to the key part's declared field type. For
// FieldAny the wire's own shape decides the Value's shape.
func toKeyValue(raw rawValue, declared keydef.FieldType) keydef.Value {
	if raw.isNil {
		return keydef.Value{Null: true, Type: declared}
	}
	ft := declared
	if declared == keydef.FieldAny {
		switch raw.kind {
		case rawKindBool:
			ft = keydef.FieldBoolean
		case rawKindInt:
			ft = keydef.FieldInteger
		case rawKindUint:
			ft = keydef.FieldUnsigned
		case rawKindDouble:
			ft = keydef.FieldDouble
		default:
			ft = keydef.FieldBinary
		}
	}
	switch ft {
	case keydef.FieldInteger:
		return keydef.Value{Type: ft, Int: raw.intVal}
	case keydef.FieldUnsigned:
		return keydef.Value{Type: ft, Uint: raw.uintVal}
	case keydef.FieldDouble:
		return keydef.Value{Type: ft, Double: raw.doubleVal}
	case keydef.FieldBoolean:
		return keydef.Value{Type: ft, Bool: raw.boolVal}
	default: // string, binary, array, map
		return keydef.Value{Type: ft, Bytes: raw.bytesVal}
	}
}
