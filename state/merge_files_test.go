/*
   Copyright 2021 Erigon contributors

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

package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/merge"
	"github.com/erigontech/mergekv/tuple"
)

// recordingSink captures every record handed to it, in the order
// received, the way a real sink would append to a compressor's word
// stream.
type recordingSink struct {
	records [][]byte
}

func (s *recordingSink) WriteRecord(raw []byte) error {
	cp := append([]byte(nil), raw...)
	s.records = append(s.records, cp)
	return nil
}

func testKeyDef(t *testing.T) *keydef.KeyDef {
	kd, err := keydef.New([]keydef.KeyPart{{FieldIndex: 0, Type: keydef.FieldInteger}})
	require.NoError(t, err)
	return kd
}

func encodeFixArrayInt(v int) []byte {
	return []byte{0x91, byte(v)}
}

func encodeBuffer(vals ...int) []byte {
	buf := []byte{0x81, tuple.DataKey, 0x90 | byte(len(vals))}
	for _, v := range vals {
		buf = append(buf, encodeFixArrayInt(v)...)
	}
	return buf
}

func TestMergeFilesWritesEveryRecordInMergeOrder(t *testing.T) {
	kd := testKeyDef(t)
	m, err := merge.New(kd)
	require.NoError(t, err)
	defer m.Destroy()

	require.NoError(t, m.Start([]merge.Source{
		{Buffer: encodeBuffer(1, 4, 7)},
		{Buffer: encodeBuffer(2, 3)},
	}, 1))

	sink := &recordingSink{}
	count, err := MergeFiles(context.Background(), m, sink, false)
	require.NoError(t, err)
	require.Equal(t, 5, count)
	require.Len(t, sink.records, 5)

	format := tuple.NewFormat(kd)
	var got []int
	for _, raw := range sink.records {
		h, _, err := tuple.DecodeRecord(format, raw)
		require.NoError(t, err)
		v, _ := h.Field(0)
		got = append(got, int(v.Int))
	}
	require.Equal(t, []int{1, 2, 3, 4, 7}, got)
}

func TestMergeFilesRespectsCancelledContext(t *testing.T) {
	kd := testKeyDef(t)
	m, err := merge.New(kd)
	require.NoError(t, err)
	defer m.Destroy()

	require.NoError(t, m.Start([]merge.Source{{Buffer: encodeBuffer(1, 2)}}, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = MergeFiles(ctx, m, &recordingSink{}, false)
	require.ErrorIs(t, err, context.Canceled)
}
