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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidKeyPart))
}

func TestNewRejectsNegativeFieldIndex(t *testing.T) {
	_, err := New([]KeyPart{{FieldIndex: -1, Type: FieldInteger}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidKeyPart))
}

func TestNewFromNamesRejectsUnknownType(t *testing.T) {
	_, err := NewFromNames([]RawKeyPart{{FieldIndex: 0, Type: "nonsense"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidKeyPart))
}

func TestNewRejectsUnknownCollation(t *testing.T) {
	_, err := New([]KeyPart{{FieldIndex: 0, Type: FieldString, Collation: "klingon"}})
	require.Error(t, err)
}

type fakeFields map[int]Value

func (f fakeFields) Field(i int) (Value, bool) {
	v, ok := f[i]
	return v, ok
}

func TestCompareIntegerAscending(t *testing.T) {
	kd, err := New([]KeyPart{{FieldIndex: 0, Type: FieldInteger}})
	require.NoError(t, err)

	a := fakeFields{0: {Type: FieldInteger, Int: 1}}
	b := fakeFields{0: {Type: FieldInteger, Int: 2}}
	require.Negative(t, kd.Compare(a, b))
	require.Positive(t, kd.Compare(b, a))
	require.Zero(t, kd.Compare(a, a))
}

func TestCompareNullableOrdersNilFirst(t *testing.T) {
	kd, err := New([]KeyPart{{FieldIndex: 0, Type: FieldInteger, Nullable: true}})
	require.NoError(t, err)

	nilField := fakeFields{0: {Null: true}}
	val := fakeFields{0: {Type: FieldInteger, Int: 0}}
	require.Negative(t, kd.Compare(nilField, val))
	require.Positive(t, kd.Compare(val, nilField))
}

func TestCompareMultiPartFirstDifferenceWins(t *testing.T) {
	kd, err := New([]KeyPart{
		{FieldIndex: 0, Type: FieldInteger},
		{FieldIndex: 1, Type: FieldInteger},
	})
	require.NoError(t, err)

	a := fakeFields{0: {Type: FieldInteger, Int: 1}, 1: {Type: FieldInteger, Int: 99}}
	b := fakeFields{0: {Type: FieldInteger, Int: 1}, 1: {Type: FieldInteger, Int: 1}}
	require.Positive(t, kd.Compare(a, b))
}
