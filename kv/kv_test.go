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
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/mergekv/keydef"
	"github.com/erigontech/mergekv/tuple"
)

// fakeCursor replays a fixed, already-sorted slice of key/value pairs,
// enough to exercise NewCursorProducer without a real mdbx-style store.
type fakeCursor struct {
	rows []struct{ k, v []byte }
	pos  int
}

func (f *fakeCursor) First() ([]byte, []byte, error) {
	f.pos = 0
	return f.Current()
}
func (f *fakeCursor) Next() ([]byte, []byte, error) {
	f.pos++
	return f.Current()
}
func (f *fakeCursor) Current() ([]byte, []byte, error) {
	if f.pos >= len(f.rows) {
		return nil, nil, nil
	}
	return f.rows[f.pos].k, f.rows[f.pos].v, nil
}
func (f *fakeCursor) Seek(seek []byte) ([]byte, []byte, error)     { return nil, nil, io.EOF }
func (f *fakeCursor) SeekExact(key []byte) ([]byte, []byte, error) { return nil, nil, io.EOF }
func (f *fakeCursor) Prev() ([]byte, []byte, error)                { return nil, nil, io.EOF }
func (f *fakeCursor) Last() ([]byte, []byte, error)                { return nil, nil, io.EOF }
func (f *fakeCursor) Count() (uint64, error)                       { return uint64(len(f.rows)), nil }
func (f *fakeCursor) Close()                                       {}

func kvFormat(t *testing.T) *tuple.Format {
	kd, err := keydef.New([]keydef.KeyPart{{FieldIndex: 0, Type: keydef.FieldBinary}})
	require.NoError(t, err)
	return tuple.NewFormat(kd)
}

func TestCursorProducerYieldsRowsInCursorOrder(t *testing.T) {
	c := &fakeCursor{rows: []struct{ k, v []byte }{
		{[]byte("a"), []byte("1")},
		{[]byte("b"), []byte("2")},
	}}
	format := kvFormat(t)
	produce := NewCursorProducer(c, format)

	v, ok, err := produce()
	require.NoError(t, err)
	require.True(t, ok)
	h := v.(*tuple.Handle)
	field, present := h.Field(0)
	require.True(t, present)
	require.Equal(t, []byte("a"), field.Bytes)

	v, ok, err = produce()
	require.NoError(t, err)
	require.True(t, ok)
	h = v.(*tuple.Handle)
	field, _ = h.Field(0)
	require.Equal(t, []byte("b"), field.Bytes)

	_, ok, err = produce()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCursorProducerHandlesEmptyTable(t *testing.T) {
	c := &fakeCursor{}
	produce := NewCursorProducer(c, kvFormat(t))
	_, ok, err := produce()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLabelString(t *testing.T) {
	require.Equal(t, "chaindata", ChainDB.String())
	require.Equal(t, "unknown", Label(99).String())
}
