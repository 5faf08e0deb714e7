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

// U builds the atom for a native unsigned integer. It is a thin, readable
// alias over AtomFromU64 for use in literals.
func U(x uint64) *Noun { return AtomFromU64(x) }

// B builds an atom from a little-endian byte run.
func B(bs []byte) *Noun { return AtomFromBytes(bs) }

// Tuple right-associates items into nested cells: Tuple(a, b, c) is
// Cell(a, Cell(b, c)), matching Nock's flat-tuple notation (a b c) ≡
// (a (b c)). Tuple panics if fewer than two items are given.
func Tuple(items ...*Noun) *Noun {
	if len(items) < 2 {
		panic("noun: Tuple needs at least two items")
	}
	n := items[len(items)-1]
	for i := len(items) - 2; i >= 0; i-- {
		n = Cell(items[i], n)
	}
	return n
}
