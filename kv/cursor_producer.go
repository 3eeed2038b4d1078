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

package kv

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/mergekv/registry"
	"github.com/erigontech/mergekv/tuple"
)

// NewCursorProducer adapts a sorted table Cursor into a
// registry.ProducerFunc (§4.2/§6's "pull-style producer function"):
// each call advances the cursor and re-encodes the (k, v) pair as a
// two-field tuple record ([key, value], both binary), then decodes it
// through format exactly as a buffer source would. Cursor is driven
// forward only (First once, then Next), matching a merge run's
// single-pass consumption.
func NewCursorProducer(c Cursor, format *tuple.Format) registry.ProducerFunc {
	started := false
	return func() (interface{}, bool, error) {
		var k, v []byte
		var err error
		if !started {
			started = true
			k, v, err = c.First()
		} else {
			k, v, err = c.Next()
		}
		if err != nil {
			CursorFetchFault.Inc()
			return nil, false, fmt.Errorf("kv: cursor producer: %w", err)
		}
		if k == nil {
			return nil, false, nil // end of table
		}
		CursorFetches.Inc()
		h, _, err := tuple.DecodeRecord(format, encodeKVRecord(k, v))
		if err != nil {
			return nil, false, fmt.Errorf("kv: cursor producer: %w", err)
		}
		return h, true, nil
	}
}

// encodeKVRecord builds a minimal 2-element MessagePack-subset array
// record [bin(k), bin(v)], the same wire shape tuple.DecodeRecord
// expects from a buffer source, so a table cursor and a network buffer
// are interchangeable merge sources from the Merger's point of view.
func encodeKVRecord(k, v []byte) []byte {
	buf := make([]byte, 0, len(k)+len(v)+11)
	buf = append(buf, 0x92) // fixarray, 2 elements
	buf = appendBin(buf, k)
	buf = appendBin(buf, v)
	return buf
}

func appendBin(buf, b []byte) []byte {
	switch {
	case len(b) <= 0xff:
		buf = append(buf, 0xc4, byte(len(b)))
	case len(b) <= 0xffff:
		buf = append(buf, 0xc5, 0, 0)
		binary.BigEndian.PutUint16(buf[len(buf)-2:], uint16(len(b)))
	default:
		buf = append(buf, 0xc6, 0, 0, 0, 0)
		binary.BigEndian.PutUint32(buf[len(buf)-4:], uint32(len(b)))
	}
	return append(buf, b...)
}
