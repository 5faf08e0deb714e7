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

package vm

// Effector is the capability the reducer uses to bridge pure reduction to
// an external, content-addressed substrate (§4.4, §6). A single Eval call
// holds exclusive use of an Effector for its duration; the reducer never
// calls it from more than one goroutine.
//
// Only Load and Store are invoked by the current opcode table.
// NearestNeighbor, Random, and Send are reserved for future opcodes (§9) and
// are part of the interface purely so embedders can implement it once.
type Effector interface {
	// Load performs an idempotent read of the content-addressed store.
	// The second return value is false on a miss.
	Load(key []byte) ([]byte, bool)

	// Store writes value under key, overwriting any prior value.
	Store(key, value []byte)

	// NearestNeighbor identifies the nearest peer to point in a DHT
	// keyspace. Reserved; no opcode calls it yet.
	NearestNeighbor(point [32]byte) [32]byte

	// Random fills buf with cryptographically random bytes. Reserved; no
	// opcode calls it yet.
	Random(buf []byte)

	// Send dispatches an asynchronous message to destination. Reserved; no
	// opcode calls it yet (see the "send" design note in SPEC_FULL.md).
	Send(destination [32]byte, message []byte, localCost uint64)
}
