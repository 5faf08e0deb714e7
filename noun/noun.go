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

// Package noun implements the universal data structure of the reduction
// machine: the noun. A noun is either an atom (an arbitrary-precision
// non-negative integer, stored as a canonical little-endian byte string) or
// a cell (an ordered pair of nouns).
//
// Nouns are immutable once built and are always handed around as *Noun, so
// that equal subtrees can be (but need not be) represented by the same
// pointer. Equal exploits that sharing as a fast path but always falls back
// to a structural comparison, so two differently-built representations of
// the same value never diverge.
package noun

import (
	"bytes"

	"golang.org/x/exp/slices"
)

// Noun is either an atom or a cell. The zero value is not a valid Noun;
// construct one with Cell, AtomFromBytes, AtomFromU8, or AtomFromBool.
type Noun struct {
	isCell bool
	atom   []byte // canonical (no trailing zero byte); valid iff !isCell
	left   *Noun
	right  *Noun
}

// Cell builds the cell (l r).
func Cell(l, r *Noun) *Noun {
	return &Noun{isCell: true, left: l, right: r}
}

// AtomFromBytes builds an atom from a little-endian byte sequence, stripping
// trailing zero bytes to reach canonical form. The empty sequence denotes 0.
func AtomFromBytes(bs []byte) *Noun {
	return internAtom(canonicalize(bs))
}

// AtomFromU8 builds a one-byte atom.
func AtomFromU8(x uint8) *Noun {
	return smallAtoms[x]
}

// AtomFromU64 builds an atom from a native integer, trimmed to canonical form.
func AtomFromU64(x uint64) *Noun {
	var buf [8]byte
	buf[0] = byte(x)
	buf[1] = byte(x >> 8)
	buf[2] = byte(x >> 16)
	buf[3] = byte(x >> 24)
	buf[4] = byte(x >> 32)
	buf[5] = byte(x >> 40)
	buf[6] = byte(x >> 48)
	buf[7] = byte(x >> 56)
	return AtomFromBytes(buf[:])
}

// AtomFromBool builds the loobean for b. Nock's convention is inverted from
// the ordinary one: true is atom 0, false is atom 1.
func AtomFromBool(b bool) *Noun {
	if b {
		return smallAtoms[0]
	}
	return smallAtoms[1]
}

// IsCell reports whether n is a cell.
func IsCell(n *Noun) bool {
	return n.isCell
}

// Small returns n's value and true iff n is an atom whose value fits a byte.
func (n *Noun) Small() (uint8, bool) {
	if n.isCell {
		return 0, false
	}
	switch len(n.atom) {
	case 0:
		return 0, true
	case 1:
		return n.atom[0], true
	default:
		return 0, false
	}
}

// Bytes returns the canonical little-endian byte representation of an atom.
// It panics if n is a cell; callers that aren't sure should check IsCell or
// use DestructureCell first.
func (n *Noun) Bytes() []byte {
	if n.isCell {
		panic("noun: Bytes called on a cell")
	}
	return n.atom
}

// DestructureCell returns n's two children and true iff n is a cell.
func DestructureCell(n *Noun) (l, r *Noun, ok bool) {
	if !n.isCell {
		return nil, nil, false
	}
	return n.left, n.right, true
}

// Equal returns the loobean of structural equality between a and b.
func Equal(a, b *Noun) *Noun {
	return AtomFromBool(equal(a, b))
}

func equal(a, b *Noun) bool {
	if a == b {
		// pointer identity fast path: two nouns sharing a representation
		// are necessarily structurally equal.
		return true
	}
	if a.isCell != b.isCell {
		return false
	}
	if a.isCell {
		return equal(a.left, b.left) && equal(a.right, b.right)
	}
	return bytes.Equal(a.atom, b.atom)
}

// canonicalize strips trailing (high-order) zero bytes from a little-endian
// byte string, per §9's canonicalization rule, and returns a fresh copy so
// that a Noun never aliases memory the caller might later mutate.
func canonicalize(bs []byte) []byte {
	n := len(bs)
	for n > 0 && bs[n-1] == 0 {
		n--
	}
	if n == 0 {
		return nil
	}
	return slices.Clone(bs[:n])
}
