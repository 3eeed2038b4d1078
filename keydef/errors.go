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

import "errors"

// ErrInvalidKeyPart is returned (wrapped, with context) when a key part
// names an unrecognised field type, a negative field index, or an
// unknown collation. It is the keydef-level half of the spec's
// InvalidKeyPart error kind; merge.New wraps it in a merge.Error of kind
// merge.InvalidKeyPart when given a nil or empty key definition.
var ErrInvalidKeyPart = errors.New("invalid key part")
