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

// Package registry is the Go-native stand-in for the Lua registry that
// merger.c pins pull-function producers in (luaL_ref/luaL_unref around
// LUA_REGISTRYINDEX). A function source owns a Handle for the lifetime
// of its cursor and releases it on Destroy or the next Start, per §5's
// shared-resource policy.
package registry

import "sync"

// ProducerFunc is the host-supplied pull-function contract of §4.2/§6:
// called with no arguments, it returns (nil, false) at end-of-stream, or
// a tuple and true. A producer that wants to signal a fault returns a
// non-nil error instead.
type ProducerFunc func() (tuple interface{}, ok bool, err error)

// Handle is an opaque reference into a Registry.
type Handle uint64

// Registry is a concurrency-safe, reference-counted table of producer
// callables. Unlike a Lua VM registry index, Register here can be called
// from any goroutine, but a given Handle must only be driven (via
// Lookup+call) by the single goroutine owning the cursor it's attached
// to, per §5.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*entry
}

type entry struct {
	fn   ProducerFunc
	refs int
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Handle]*entry)}
}

// Register acquires a handle for fn with one reference held, mirroring
// luaL_ref's "duplicate the function, take a ref" step in
// lbox_merger_start.
func (r *Registry) Register(fn ProducerFunc) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := r.next
	r.entries[h] = &entry{fn: fn, refs: 1}
	return h
}

// Lookup returns the producer for h, if still live.
func (r *Registry) Lookup(h Handle) (ProducerFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// Release drops one reference to h, freeing the entry at zero — the Go
// analogue of luaL_unref(L, LUA_REGISTRYINDEX, next_ref) in free_sources.
// Releasing an already-freed or unknown handle is a no-op.
func (r *Registry) Release(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, h)
	}
}

// Len reports the number of live handles, for diagnostics and tests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
