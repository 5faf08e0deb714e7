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

// Package wire implements the deterministic, bijective byte encoding of
// nouns used both to feed the HASH family of opcodes and to persist values
// in a content-addressed store. The layout is a tag byte (0 atom, 1 cell)
// followed by either a 4-byte little-endian length and that many raw bytes
// (atom), or two recursively encoded children (cell). Nothing outside this
// package interprets the layout; callers only need Serialize/Deserialize to
// round-trip and Serialize's output to hash the same way on every host.
package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/hoplight/nockvm/noun"
)

// MaxSerializedSize bounds both the size Serialize will produce and the
// size Deserialize will accept, per §4.3/§5's hard ceiling on runaway growth.
const MaxSerializedSize = 1_000_000

// ErrOverlongAtom is returned when an atom's byte length does not fit the
// encoding's 32-bit length field.
var ErrOverlongAtom = errors.New("wire: atom too large to encode")

// ErrMemoryExceeded is returned when the encoded form would exceed, or
// (for Deserialize) the input already exceeds, MaxSerializedSize.
var ErrMemoryExceeded = errors.New("wire: serialized size exceeds maximum")

// ErrCorrupt is returned by Deserialize when the input is not a valid
// encoding produced by Serialize.
var ErrCorrupt = errors.New("wire: corrupt encoding")

const (
	tagAtom byte = 0
	tagCell byte = 1
)

// Serialize encodes n deterministically. Encoding the same canonical noun
// twice, on any host, yields identical bytes.
func Serialize(n *noun.Noun) ([]byte, error) {
	out := make([]byte, 0, 64)
	out, err := appendNoun(out, n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendNoun(dst []byte, n *noun.Noun) ([]byte, error) {
	if noun.IsCell(n) {
		l, r, _ := noun.DestructureCell(n)
		dst = append(dst, tagCell)
		if len(dst) > MaxSerializedSize {
			return nil, ErrMemoryExceeded
		}
		var err error
		dst, err = appendNoun(dst, l)
		if err != nil {
			return nil, err
		}
		dst, err = appendNoun(dst, r)
		if err != nil {
			return nil, err
		}
		return dst, nil
	}
	bs := n.Bytes()
	if uint64(len(bs)) > math.MaxUint32 {
		return nil, ErrOverlongAtom
	}
	if len(dst)+5+len(bs) > MaxSerializedSize {
		return nil, ErrMemoryExceeded
	}
	dst = append(dst, tagAtom)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(bs)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, bs...)
	return dst, nil
}

// Deserialize decodes bytes produced by Serialize back into the noun they
// represent. Deserialize(Serialize(n)) == n for every noun n.
func Deserialize(b []byte) (*noun.Noun, error) {
	if len(b) > MaxSerializedSize {
		return nil, ErrMemoryExceeded
	}
	n, rest, err := readNoun(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrCorrupt
	}
	return n, nil
}

func readNoun(b []byte) (n *noun.Noun, rest []byte, err error) {
	if len(b) < 1 {
		return nil, nil, ErrCorrupt
	}
	tag, b := b[0], b[1:]
	switch tag {
	case tagAtom:
		if len(b) < 4 {
			return nil, nil, ErrCorrupt
		}
		ln := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(len(b)) < uint64(ln) {
			return nil, nil, ErrCorrupt
		}
		return noun.AtomFromBytes(b[:ln]), b[ln:], nil
	case tagCell:
		l, rest, err := readNoun(b)
		if err != nil {
			return nil, nil, err
		}
		r, rest, err := readNoun(rest)
		if err != nil {
			return nil, nil, err
		}
		return noun.Cell(l, r), rest, nil
	default:
		return nil, nil, ErrCorrupt
	}
}
