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
	"errors"
	"math/bits"
)

// ErrCellAsIndex is returned by Axis when a is a cell rather than an atom.
var ErrCellAsIndex = errors.New("noun: axis index is a cell, not an atom")

// ErrIndexOutOfRange is returned by Axis when the walk descends into an
// atom with bits of the path still unconsumed, or when a is 0.
var ErrIndexOutOfRange = errors.New("noun: axis index out of range")

// Axis navigates into n along the tree path described by the atom a: axis 1
// is n itself; axis 2k is the left child of the node at axis k and axis
// 2k+1 is its right child. Equivalently, after the leading 1 bit, each
// remaining bit (most significant first) picks left on 0 and right on 1.
func Axis(n *Noun, a *Noun) (*Noun, error) {
	if a.isCell {
		return nil, ErrCellAsIndex
	}
	path, ok := axisPath(a.atom)
	if !ok {
		return nil, ErrIndexOutOfRange
	}
	cur := n
	for _, bit := range path {
		if !cur.isCell {
			return nil, ErrIndexOutOfRange
		}
		if bit == 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur, nil
}

// axisPath decodes a canonical little-endian atom into the sequence of
// left/right choices (0/1, most significant first) implied by discarding
// its leading 1 bit. ok is false iff the atom is 0.
func axisPath(atom []byte) (path []byte, ok bool) {
	hi := len(atom) - 1
	if hi < 0 {
		return nil, false
	}
	top := atom[hi]
	msb := hi*8 + bits.Len8(top) - 1 // position of the leading 1 bit, 0-indexed from the LSB
	if msb <= 0 {
		return nil, true
	}
	path = make([]byte, msb)
	for i := 0; i < msb; i++ {
		bitPos := msb - 1 - i
		byteIdx := bitPos / 8
		var b byte
		if byteIdx <= hi {
			b = (atom[byteIdx] >> (bitPos % 8)) & 1
		}
		path[i] = b
	}
	return path, true
}
