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
	"encoding/binary"
	"fmt"
	"math"
)

// wire.go is a narrow, hand-rolled MessagePack-subset reader — just
// enough to walk the self-delimiting records §2/§6 describe (mp_next /
// mp_typeof / mp_decode_* in the original). It is not a general
// MessagePack library; see DESIGN.md for why that's the faithful
// translation rather than a stdlib shortcut.

const (
	mpNil      = 0xc0
	mpFalse    = 0xc2
	mpTrue     = 0xc3
	mpFloat64  = 0xcb
	mpUint8    = 0xcc
	mpUint16   = 0xcd
	mpUint32   = 0xce
	mpUint64   = 0xcf
	mpInt8     = 0xd0
	mpInt16    = 0xd1
	mpInt32    = 0xd2
	mpInt64    = 0xd3
	mpStr8     = 0xd9
	mpStr16    = 0xda
	mpStr32    = 0xdb
	mpArray16  = 0xdc
	mpArray32  = 0xdd
	mpMap16    = 0xde
	mpMap32    = 0xdf
	mpBin8     = 0xc4
	mpBin16    = 0xc5
	mpBin32    = 0xc6
	DataKey    = 0x30 // the spec's reserved IPROTO_DATA-style constant
)

func isFixInt(b byte) bool   { return b < 0x80 || b >= 0xe0 }
func isFixMap(b byte) bool   { return b >= 0x80 && b <= 0x8f }
func isFixArray(b byte) bool { return b >= 0x90 && b <= 0x9f }
func isFixStr(b byte) bool   { return b >= 0xa0 && b <= 0xbf }

// decodeArrayHeader reads an array header and returns the element count
// and the remaining buffer positioned at the first element.
func decodeArrayHeader(buf []byte) (count int, rest []byte, err error) {
	if len(buf) == 0 {
		return 0, nil, fmt.Errorf("%w: truncated array header", ErrMalformed)
	}
	b := buf[0]
	switch {
	case isFixArray(b):
		return int(b & 0x0f), buf[1:], nil
	case b == mpArray16:
		if len(buf) < 3 {
			return 0, nil, fmt.Errorf("%w: truncated array16 header", ErrMalformed)
		}
		return int(binary.BigEndian.Uint16(buf[1:3])), buf[3:], nil
	case b == mpArray32:
		if len(buf) < 5 {
			return 0, nil, fmt.Errorf("%w: truncated array32 header", ErrMalformed)
		}
		return int(binary.BigEndian.Uint32(buf[1:5])), buf[5:], nil
	default:
		return 0, nil, fmt.Errorf("%w: expected array, got byte 0x%02x", ErrMalformed, b)
	}
}

// decodeMapHeader reads a map header and returns the entry count and the
// remaining buffer positioned at the first key.
func decodeMapHeader(buf []byte) (count int, rest []byte, err error) {
	if len(buf) == 0 {
		return 0, nil, fmt.Errorf("%w: truncated map header", ErrMalformed)
	}
	b := buf[0]
	switch {
	case isFixMap(b):
		return int(b & 0x0f), buf[1:], nil
	case b == mpMap16:
		if len(buf) < 3 {
			return 0, nil, fmt.Errorf("%w: truncated map16 header", ErrMalformed)
		}
		return int(binary.BigEndian.Uint16(buf[1:3])), buf[3:], nil
	case b == mpMap32:
		if len(buf) < 5 {
			return 0, nil, fmt.Errorf("%w: truncated map32 header", ErrMalformed)
		}
		return int(binary.BigEndian.Uint32(buf[1:5])), buf[5:], nil
	default:
		return 0, nil, fmt.Errorf("%w: expected map, got byte 0x%02x", ErrMalformed, b)
	}
}

// decodeUint reads an unsigned integer scalar (fixint or uintN).
func decodeUint(buf []byte) (v uint64, rest []byte, err error) {
	if len(buf) == 0 {
		return 0, nil, fmt.Errorf("%w: truncated uint", ErrMalformed)
	}
	b := buf[0]
	switch {
	case b < 0x80:
		return uint64(b), buf[1:], nil
	case b == mpUint8:
		if len(buf) < 2 {
			return 0, nil, fmt.Errorf("%w: truncated uint8", ErrMalformed)
		}
		return uint64(buf[1]), buf[2:], nil
	case b == mpUint16:
		if len(buf) < 3 {
			return 0, nil, fmt.Errorf("%w: truncated uint16", ErrMalformed)
		}
		return uint64(binary.BigEndian.Uint16(buf[1:3])), buf[3:], nil
	case b == mpUint32:
		if len(buf) < 5 {
			return 0, nil, fmt.Errorf("%w: truncated uint32", ErrMalformed)
		}
		return uint64(binary.BigEndian.Uint32(buf[1:5])), buf[5:], nil
	case b == mpUint64:
		if len(buf) < 9 {
			return 0, nil, fmt.Errorf("%w: truncated uint64", ErrMalformed)
		}
		return binary.BigEndian.Uint64(buf[1:9]), buf[9:], nil
	default:
		return 0, nil, fmt.Errorf("%w: expected uint, got byte 0x%02x", ErrMalformed, b)
	}
}

// scalarSpan returns the number of bytes a non-container value at the
// front of buf occupies, used by both skipValue and the scalar decoders.
func scalarSpan(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, fmt.Errorf("%w: truncated value", ErrMalformed)
	}
	b := buf[0]
	switch {
	case isFixInt(b):
		return 1, nil
	case b == mpNil, b == mpFalse, b == mpTrue:
		return 1, nil
	case b == mpUint8, b == mpInt8:
		return 2, nil
	case b == mpUint16, b == mpInt16:
		return 3, nil
	case b == mpUint32, b == mpInt32:
		return 5, nil
	case b == mpUint64, b == mpInt64, b == mpFloat64:
		return 9, nil
	case isFixStr(b):
		return 1 + int(b&0x1f), nil
	case b == mpStr8, b == mpBin8:
		if len(buf) < 2 {
			return 0, fmt.Errorf("%w: truncated str8/bin8", ErrMalformed)
		}
		return 2 + int(buf[1]), nil
	case b == mpStr16, b == mpBin16:
		if len(buf) < 3 {
			return 0, fmt.Errorf("%w: truncated str16/bin16", ErrMalformed)
		}
		return 3 + int(binary.BigEndian.Uint16(buf[1:3])), nil
	case b == mpStr32, b == mpBin32:
		if len(buf) < 5 {
			return 0, fmt.Errorf("%w: truncated str32/bin32", ErrMalformed)
		}
		return 5 + int(binary.BigEndian.Uint32(buf[1:5])), nil
	default:
		return 0, fmt.Errorf("%w: unsupported scalar byte 0x%02x", ErrMalformed, b)
	}
}

// skipValue advances past one complete, arbitrarily nested value
// (mp_next's job in the original) and returns the rest of the buffer.
func skipValue(buf []byte) (rest []byte, err error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: truncated value", ErrMalformed)
	}
	b := buf[0]
	switch {
	case isFixArray(b), b == mpArray16, b == mpArray32:
		n, r, err := decodeArrayHeader(buf)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			r, err = skipValue(r)
			if err != nil {
				return nil, err
			}
		}
		return r, nil
	case isFixMap(b), b == mpMap16, b == mpMap32:
		n, r, err := decodeMapHeader(buf)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if r, err = skipValue(r); err != nil {
				return nil, err
			}
			if r, err = skipValue(r); err != nil {
				return nil, err
			}
		}
		return r, nil
	default:
		span, err := scalarSpan(buf)
		if err != nil {
			return nil, err
		}
		if span > len(buf) {
			return nil, fmt.Errorf("%w: value span exceeds buffer", ErrMalformed)
		}
		return buf[span:], nil
	}
}

// decodeScalar decodes one value into an untyped rawValue (toKeyValue
// later applies the declared field type), consuming exactly
// scalarSpan(buf) bytes (or the full nested span, for array/map fields
// left as raw bytes) and returning the remainder.
func decodeScalar(buf []byte) (value rawValue, rest []byte, err error) {
	if len(buf) == 0 {
		return rawValue{}, nil, fmt.Errorf("%w: truncated value", ErrMalformed)
	}
	b := buf[0]
	switch {
	case b == mpNil:
		return rawValue{kind: rawKindNil, isNil: true}, buf[1:], nil
	case b == mpFalse:
		return rawValue{kind: rawKindBool, boolVal: false}, buf[1:], nil
	case b == mpTrue:
		return rawValue{kind: rawKindBool, boolVal: true}, buf[1:], nil
	case b == mpFloat64:
		if len(buf) < 9 {
			return rawValue{}, nil, fmt.Errorf("%w: truncated float64", ErrMalformed)
		}
		bits := binary.BigEndian.Uint64(buf[1:9])
		return rawValue{kind: rawKindDouble, doubleVal: math.Float64frombits(bits)}, buf[9:], nil
	case isFixInt(b) && b >= 0xe0:
		return rawValue{kind: rawKindInt, intVal: int64(int8(b))}, buf[1:], nil
	case b < 0x80:
		return rawValue{kind: rawKindUint, intVal: int64(b), uintVal: uint64(b)}, buf[1:], nil
	case b == mpUint8, b == mpUint16, b == mpUint32, b == mpUint64:
		u, r, err := decodeUint(buf)
		if err != nil {
			return rawValue{}, nil, err
		}
		return rawValue{kind: rawKindUint, uintVal: u, intVal: int64(u)}, r, nil
	case b == mpInt8:
		if len(buf) < 2 {
			return rawValue{}, nil, fmt.Errorf("%w: truncated int8", ErrMalformed)
		}
		return rawValue{kind: rawKindInt, intVal: int64(int8(buf[1]))}, buf[2:], nil
	case b == mpInt16:
		if len(buf) < 3 {
			return rawValue{}, nil, fmt.Errorf("%w: truncated int16", ErrMalformed)
		}
		return rawValue{kind: rawKindInt, intVal: int64(int16(binary.BigEndian.Uint16(buf[1:3])))}, buf[3:], nil
	case b == mpInt32:
		if len(buf) < 5 {
			return rawValue{}, nil, fmt.Errorf("%w: truncated int32", ErrMalformed)
		}
		return rawValue{kind: rawKindInt, intVal: int64(int32(binary.BigEndian.Uint32(buf[1:5])))}, buf[5:], nil
	case b == mpInt64:
		if len(buf) < 9 {
			return rawValue{}, nil, fmt.Errorf("%w: truncated int64", ErrMalformed)
		}
		return rawValue{kind: rawKindInt, intVal: int64(binary.BigEndian.Uint64(buf[1:9]))}, buf[9:], nil
	case isFixStr(b), b == mpStr8, b == mpStr16, b == mpStr32, b == mpBin8, b == mpBin16, b == mpBin32:
		span, err := scalarSpan(buf)
		if err != nil {
			return rawValue{}, nil, err
		}
		if span > len(buf) {
			return rawValue{}, nil, fmt.Errorf("%w: value span exceeds buffer", ErrMalformed)
		}
		hdr := 1
		switch {
		case isFixStr(b):
			hdr = 1
		case b == mpStr8, b == mpBin8:
			hdr = 2
		case b == mpStr16, b == mpBin16:
			hdr = 3
		case b == mpStr32, b == mpBin32:
			hdr = 5
		}
		return rawValue{kind: rawKindBytes, bytesVal: buf[hdr:span]}, buf[span:], nil
	case isFixArray(b), b == mpArray16, b == mpArray32, isFixMap(b), b == mpMap16, b == mpMap32:
		start := buf
		r, err := skipValue(buf)
		if err != nil {
			return rawValue{}, nil, err
		}
		return rawValue{kind: rawKindBytes, bytesVal: start[:len(start)-len(r)]}, r, nil
	default:
		return rawValue{}, nil, fmt.Errorf("%w: unsupported value byte 0x%02x", ErrMalformed, b)
	}
}

// rawValue is the decoder's untyped intermediate form, converted to a
// keydef.Value once the declaring key part's FieldType is known.
type rawValue struct {
	kind      rawKind
	isNil     bool
	boolVal   bool
	intVal    int64
	uintVal   uint64
	doubleVal float64
	bytesVal  []byte
}

// rawKind records which wire alternative was actually decoded, used to
// pick a sensible keydef.Value shape when the declaring key part is
// FieldAny (the wire format, not the declared type, decides the shape).
type rawKind uint8

const (
	rawKindNil rawKind = iota
	rawKindBool
	rawKindInt
	rawKindUint
	rawKindDouble
	rawKindBytes
)
