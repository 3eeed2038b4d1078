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
	"fmt"

	"github.com/erigontech/mergekv/registry"
	"github.com/erigontech/mergekv/tuple"
)

// functionSource wraps an opaque callable handle registered with the
// host (§4.2). Each fetch invokes it with no arguments, mirroring
// source_fetch's SOURCE_TYPE_FUNCTION branch (lua_call + luaT_istuple).
type functionSource struct {
	reg    *registry.Registry
	handle registry.Handle
}

// NewFunctionSource registers fn with reg and returns a Cursor that
// pulls through it. The cursor owns the registry reference for its own
// lifetime and releases it in Close, per §5's "Pull-function references
// are owned for the lifetime of their source cursor."
func NewFunctionSource(reg *registry.Registry, fn registry.ProducerFunc) *Cursor {
	h := reg.Register(fn)
	return &Cursor{src: &functionSource{reg: reg, handle: h}, heapIndex: -1}
}

func (f *functionSource) fetch(format *tuple.Format) (*tuple.Handle, error) {
	fn, ok := f.reg.Lookup(f.handle)
	if !ok {
		return nil, nil
	}
	v, present, err := fn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducerFault, err)
	}
	if !present {
		return nil, nil
	}
	h, ok := v.(*tuple.Handle)
	if !ok {
		return nil, fmt.Errorf("%w: source_fetch: tuple expected, got %T", ErrInvalidSource, v)
	}
	h.Acquire()
	return h, nil
}

func (f *functionSource) close() {
	f.reg.Release(f.handle)
}
