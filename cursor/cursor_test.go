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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/registry"
	"github.com/erigontech/mergekv/tuple"
)

func testFormat(t *testing.T) *tuple.Format {
	kd, err := keydef.New([]keydef.KeyPart{{FieldIndex: 0, Type: keydef.FieldInteger}})
	require.NoError(t, err)
	return tuple.NewFormat(kd)
}

func encodeFixArrayInts(vals ...int) []byte {
	buf := []byte{0x90 | byte(len(vals))}
	for _, v := range vals {
		buf = append(buf, byte(v))
	}
	return buf
}

func encodeEnvelope(records ...[]byte) []byte {
	buf := []byte{0x81, tuple.DataKey, 0x90 | byte(len(records))}
	for _, r := range records {
		buf = append(buf, r...)
	}
	return buf
}

func TestBufferSourceFetchesUntilDrained(t *testing.T) {
	format := testFormat(t)
	raw := encodeEnvelope(encodeFixArrayInts(1), encodeFixArrayInts(2))
	c, err := NewBufferSource(raw)
	require.NoError(t, err)

	require.NoError(t, c.Fetch(format))
	require.NotNil(t, c.Head())
	v, _ := c.Head().Field(0)
	require.Equal(t, int64(1), v.Int)
	require.False(t, c.Drained())

	require.NoError(t, c.Fetch(format))
	v, _ = c.Head().Field(0)
	require.Equal(t, int64(2), v.Int)

	require.NoError(t, c.Fetch(format))
	require.Nil(t, c.Head())
	require.True(t, c.Drained())

	// Fetch after drained stays drained (no retry).
	require.NoError(t, c.Fetch(format))
	require.Nil(t, c.Head())
	require.True(t, c.Drained())
}

func TestNewBufferSourceRejectsEmptyBuffer(t *testing.T) {
	_, err := NewBufferSource(nil)
	require.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestNewBufferSourceRejectsMalformedHeader(t *testing.T) {
	_, err := NewBufferSource(encodeFixArrayInts(1, 2)) // outer is array, not map
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSource))
}

func TestFunctionSourceFetchesUntilEndOfStream(t *testing.T) {
	format := testFormat(t)
	reg := registry.New()
	vals := []int{10, 20}
	i := 0
	c := NewFunctionSource(reg, func() (interface{}, bool, error) {
		if i >= len(vals) {
			return nil, false, nil
		}
		rec := encodeFixArrayInts(vals[i])
		i++
		h, _, err := tuple.DecodeRecord(format, rec)
		return h, true, err
	})

	require.NoError(t, c.Fetch(format))
	v, _ := c.Head().Field(0)
	require.Equal(t, int64(10), v.Int)

	require.NoError(t, c.Fetch(format))
	v, _ = c.Head().Field(0)
	require.Equal(t, int64(20), v.Int)

	require.NoError(t, c.Fetch(format))
	require.Nil(t, c.Head())
	require.True(t, c.Drained())
	require.Equal(t, 1, reg.Len())

	c.Close()
	require.Equal(t, 0, reg.Len())
}

func TestFunctionSourceRejectsNonTupleReturn(t *testing.T) {
	format := testFormat(t)
	reg := registry.New()
	c := NewFunctionSource(reg, func() (interface{}, bool, error) {
		return 7, true, nil
	})
	err := c.Fetch(format)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSource))
}

func TestFunctionSourceSurfacesProducerFault(t *testing.T) {
	format := testFormat(t)
	reg := registry.New()
	boom := errors.New("boom")
	c := NewFunctionSource(reg, func() (interface{}, bool, error) {
		return nil, false, boom
	})
	err := c.Fetch(format)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrProducerFault))
}

func TestCursorCloseReleasesHeldHead(t *testing.T) {
	format := testFormat(t)
	raw := encodeEnvelope(encodeFixArrayInts(1))
	c, err := NewBufferSource(raw)
	require.NoError(t, err)
	require.NoError(t, c.Fetch(format))
	h := c.Head()
	require.EqualValues(t, 1, h.RefCount())
	c.Close()
	require.EqualValues(t, 0, h.RefCount())
	require.Nil(t, c.Head())
}
