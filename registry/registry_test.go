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

package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterLookupRelease(t *testing.T) {
	r := New()
	h := r.Register(func() (interface{}, bool, error) { return nil, false, nil })
	require.Equal(t, 1, r.Len())

	fn, ok := r.Lookup(h)
	require.True(t, ok)
	v, present, err := fn()
	require.NoError(t, err)
	require.False(t, present)
	require.Nil(t, v)

	r.Release(h)
	require.Equal(t, 0, r.Len())
	_, ok = r.Lookup(h)
	require.False(t, ok)
}

func TestReleaseUnknownHandleIsNoop(t *testing.T) {
	r := New()
	r.Release(Handle(12345))
	require.Equal(t, 0, r.Len())
}

func TestDistinctHandlesDoNotCollide(t *testing.T) {
	r := New()
	h1 := r.Register(func() (interface{}, bool, error) { return 1, true, nil })
	h2 := r.Register(func() (interface{}, bool, error) { return 2, true, nil })
	require.NotEqual(t, h1, h2)
	require.Equal(t, 2, r.Len())
	r.Release(h1)
	require.Equal(t, 1, r.Len())
	_, ok := r.Lookup(h2)
	require.True(t, ok)
}
