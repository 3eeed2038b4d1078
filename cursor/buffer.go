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

package cursor

import (
	"errors"
	"fmt"

	"github.com/erigontech/mergekv/tuple"
)

// ErrEmptyBuffer is a sentinel (not InvalidSource) returned by
// NewBufferSource when given a zero-length region: §4.4's Start
// "skip[s] buffer producers whose buffer is already empty" rather than
// treating that as an error.
var ErrEmptyBuffer = errors.New("buffer source is empty")

// bufferSource wraps a borrowed byte region with a movable read
// position and a fixed write position (the region's length). The
// merger never owns this memory; it only advances pos, per §5's
// "Buffers are borrowed (never owned)" policy.
type bufferSource struct {
	buf []byte
	pos int
}

// NewBufferSource attaches to a borrowed byte region: on first
// attachment it parses and skips the {DATA: [...]} header (§4.2),
// leaving the read position at the first record. A malformed header is
// ErrInvalidSource; an already-empty region is ErrEmptyBuffer.
func NewBufferSource(raw []byte) (*Cursor, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBuffer
	}
	hdr, rest, err := tuple.DecodeHeader(raw)
	_ = hdr
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return &Cursor{src: &bufferSource{buf: rest, pos: 0}, heapIndex: -1}, nil
}

func (b *bufferSource) fetch(format *tuple.Format) (*tuple.Handle, error) {
	if b.pos >= len(b.buf) {
		return nil, nil // end-of-stream: rpos has reached wpos
	}
	h, consumed, err := tuple.DecodeRecord(format, b.buf[b.pos:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	b.pos += consumed
	return h, nil
}

func (b *bufferSource) close() {
	// Buffers are borrowed, never owned: nothing to release here.
}
