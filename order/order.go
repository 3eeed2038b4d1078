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

// Package order defines the merge direction: the sign that turns the
// base comparator into a merge run's effective order.
package order

// By is a merge direction.
type By int8

const (
	Asc  By = 1
	Desc By = -1
)

// FromInt mirrors merger.c's `merger->order = lua_tointeger(L, 3) >= 0 ?
// 1 : -1`: any non-negative integer means ascending.
func FromInt(direction int) By {
	if direction >= 0 {
		return Asc
	}
	return Desc
}

// Sign returns the ±1 multiplier applied to the base comparator.
func (b By) Sign() int {
	return int(b)
}

func (b By) String() string {
	if b == Desc {
		return "desc"
	}
	return "asc"
}
