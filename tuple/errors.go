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

package tuple

import "errors"

// ErrMalformed is returned when a buffer does not contain a well-formed
// record or envelope. Callers in package cursor/merge map this to the
// spec's InvalidSource error kind.
var ErrMalformed = errors.New("malformed tuple wire data")
