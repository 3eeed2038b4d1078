/*
   Copyright 2021 Erigon contributors

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

package state

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/erigontech/mergekv/keydef"
)

// runID derives a short, stable, loggable identifier for a merge job:
// Keccak-256 over the key definition's field layout plus the source
// count, truncated to 8 hex bytes. It exists purely to let concurrent
// Scheduler jobs be told apart in logs and metric labels; two jobs
// merging the same key shape and source count collide, which is
// harmless since the id is a correlation label, not an identity key.
func runID(kd *keydef.KeyDef, sourceCount int) string {
	h := sha3.NewLegacyKeccak256()
	for _, p := range kd.Parts() {
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[0:4], uint32(p.FieldIndex))
		binary.BigEndian.PutUint32(buf[4:8], uint32(p.Type))
		h.Write(buf[:])
	}
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(sourceCount))
	h.Write(n[:])
	return hex.EncodeToString(h.Sum(nil)[:8])
}
