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
	"bytes"
	"strings"
)

// CompareFunc orders two byte strings of a string-typed field, returning
// negative/zero/positive the same way bytes.Compare does.
type CompareFunc func(a, b []byte) int

// builtinCollations is the small named table the "optional collation
// identifier (default: none)" of §3 draws from. The original leaves
// collation as an opaque coll_id resolved by the host; this module ships
// the two collations a standalone library can meaningfully offer without
// a locale database.
var builtinCollations = map[string]CompareFunc{
	"binary": bytes.Compare,
	"nocase": compareNoCase,
}

func lookupCollation(name string) (CompareFunc, bool) {
	cmp, ok := builtinCollations[name]
	return cmp, ok
}

func compareNoCase(a, b []byte) int {
	return strings.Compare(strings.ToUpper(string(a)), strings.ToUpper(string(b)))
}
