// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package noun

import (
	"bytes"
	"sync"

	"github.com/dchest/siphash"
)

// smallAtoms pre-builds the 256 one-byte atoms so AtomFromU8 and the
// loobeans never allocate, and so that DEFINE/CALL-heavy programs that pass
// small atoms (opcode indices, axis bits, loobeans) around get pointer
// equality for free.
var smallAtoms [256]*Noun

func init() {
	smallAtoms[0] = &Noun{atom: nil}
	for i := 1; i < 256; i++ {
		smallAtoms[i] = &Noun{atom: []byte{byte(i)}}
	}
}

// internCap bounds the atom intern table. DEFINE and CALL clone the subject
// on every step, so long-running formulas can mint a very large number of
// distinct atoms (counters, hashes); an unbounded cache would turn the
// reducer into an unintentional memory leak. Once full, the table is wiped
// rather than evicted piecemeal — simple, and cheap relative to how rarely
// it fills for the short atom strings it targets.
const internCap = 1 << 13

// internMaxLen is the longest atom the table bothers with. HASH/STORE_BY_HASH
// round-trips revolve around 64-byte BLAKE2b digests and 65-byte storage
// keys, so those are covered; arbitrary-precision atoms from user formulas
// are not interned at all.
const internMaxLen = 72

var internSeed0, internSeed1 uint64 = 0x5c6e6f636b6174, 0x61746f6d696e74 // ASCII "\nockat" / "atomint", fixed so interning is deterministic within a process

type internTable struct {
	mu sync.Mutex
	m  map[uint64][]*Noun
}

var atomIntern = internTable{m: make(map[uint64][]*Noun, internCap)}

func internAtom(bs []byte) *Noun {
	if n, ok := smallAtomFastPath(bs); ok {
		return n
	}
	if len(bs) == 0 || len(bs) > internMaxLen {
		return &Noun{atom: bs}
	}
	key := siphash.Hash(internSeed0, internSeed1, bs)

	atomIntern.mu.Lock()
	defer atomIntern.mu.Unlock()
	for _, cand := range atomIntern.m[key] {
		if bytes.Equal(cand.atom, bs) {
			return cand
		}
	}
	if len(atomIntern.m) >= internCap {
		atomIntern.m = make(map[uint64][]*Noun, internCap)
	}
	n := &Noun{atom: bs}
	atomIntern.m[key] = append(atomIntern.m[key], n)
	return n
}

func smallAtomFastPath(bs []byte) (*Noun, bool) {
	switch len(bs) {
	case 0:
		return smallAtoms[0], true
	case 1:
		return smallAtoms[bs[0]], true
	default:
		return nil, false
	}
}
