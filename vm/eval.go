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

// Package vm is the reducer: a tick-counted interpreter that dispatches the
// fixed 13-opcode table defined in opcodes.go over the noun algebra in
// package noun. It is synchronous and single-threaded (§5) and the only
// liveness control is the tick cap passed to Eval.
package vm

import (
	"golang.org/x/crypto/blake2b"

	"github.com/hoplight/nockvm/noun"
	"github.com/hoplight/nockvm/wire"
)

// storageKeyTag prefixes every key the reducer writes to or reads from an
// Effector (§6).
const storageKeyTag = 0x01

// hashSize is the BLAKE2b-512 digest length used throughout (§6).
const hashSize = 64

// Eval is the entry point: expression must be a (subject . formula) cell.
// It returns the reduced noun, or the first error raised during reduction.
// tickCap bounds both the running time and the allocation of a single call;
// lowering it before invocation is the only supported way to cancel an
// evaluation (§5).
func Eval(expression *noun.Noun, eff Effector, tickCap uint64) (*noun.Noun, error) {
	subject, formula, ok := noun.DestructureCell(expression)
	if !ok {
		return nil, ErrMalformedExpression
	}
	r := &reducer{tickCap: tickCap, eff: eff}
	return r.run(subject, formula)
}

// reducer carries the state of a single evaluation: the tick budget and the
// side-effect capability. It is not safe for concurrent use, matching the
// single-threaded contract in §5.
type reducer struct {
	ticksUsed uint64
	tickCap   uint64
	eff       Effector
}

func (r *reducer) charge(n uint64) error {
	r.ticksUsed += n
	if r.ticksUsed >= r.tickCap {
		return ErrTickLimitExceeded
	}
	return nil
}

// run is the tail-position loop. Opcodes 2 (RECURSE), 7 (COMPOSE), 8
// (DEFINE), 9 (CALL), and the taken branch of 6 (IF) rewrite subject/formula
// and `continue` instead of recursing, so unbounded Nock-level computation
// never grows the Go call stack (§9).
func (r *reducer) run(subject, formula *noun.Noun) (*noun.Noun, error) {
	for {
		if err := r.charge(1); err != nil {
			return nil, err
		}
		if !noun.IsCell(formula) {
			return nil, ErrAtomicFormula
		}
		head, arg, _ := noun.DestructureCell(formula)

		if noun.IsCell(head) {
			// Distribute: head and arg are both sub-formulas against the
			// same subject; neither recursion is in tail position because
			// the two results must be paired afterward.
			lhs, err := r.run(subject, head)
			if err != nil {
				return nil, err
			}
			rhs, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			return noun.Cell(lhs, rhs), nil
		}

		op, ok := head.Small()
		if !ok {
			return nil, ErrNotAnOpcode
		}

		switch op {
		case opAxis:
			return noun.Axis(subject, arg)

		case opLiteral:
			return arg, nil

		case opRecurse:
			b, c, ok := noun.DestructureCell(arg)
			if !ok {
				return nil, ErrBadRecurseArgument
			}
			bRes, err := r.run(subject, b)
			if err != nil {
				return nil, err
			}
			cRes, err := r.run(subject, c)
			if err != nil {
				return nil, err
			}
			subject, formula = bRes, cRes
			continue

		case opIsCell:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			return noun.AtomFromBool(noun.IsCell(v)), nil

		case opIncrement:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			return increment(v)

		case opIsEqual:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			l, rr, ok := noun.DestructureCell(v)
			if !ok {
				return nil, ErrBadEqualsArgument
			}
			return noun.Equal(l, rr), nil

		case opIf:
			b, cd, ok := noun.DestructureCell(arg)
			if !ok {
				return nil, ErrBadArgument
			}
			c, d, ok := noun.DestructureCell(cd)
			if !ok {
				return nil, ErrBadArgument
			}
			cond, err := r.run(subject, b)
			if err != nil {
				return nil, err
			}
			v, small := cond.Small()
			switch {
			case small && v == 0:
				formula = c
			case small && v == 1:
				formula = d
			default:
				return nil, ErrBadIfCondition
			}
			continue

		case opCompose:
			b, c, ok := noun.DestructureCell(arg)
			if !ok {
				return nil, ErrBadArgument
			}
			bRes, err := r.run(subject, b)
			if err != nil {
				return nil, err
			}
			subject, formula = bRes, c
			continue

		case opDefine:
			b, c, ok := noun.DestructureCell(arg)
			if !ok {
				return nil, ErrBadArgument
			}
			bRes, err := r.run(subject, b)
			if err != nil {
				return nil, err
			}
			subject = noun.Cell(bRes, subject)
			formula = c
			continue

		case opCall:
			b, c, ok := noun.DestructureCell(arg)
			if !ok {
				return nil, ErrBadArgument
			}
			core, err := r.run(subject, c)
			if err != nil {
				return nil, err
			}
			inner, err := noun.Axis(core, b)
			if err != nil {
				return nil, err
			}
			subject, formula = core, inner
			continue

		case opHash:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			sum, err := r.hashOf(v)
			if err != nil {
				return nil, err
			}
			return noun.AtomFromBytes(sum[:]), nil

		case opStoreByHash:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			bs, err := r.serialize(v)
			if err != nil {
				return nil, err
			}
			sum, err := r.hashBytes(bs)
			if err != nil {
				return nil, err
			}
			r.eff.Store(storageKey(sum[:]), bs)
			return noun.AtomFromBool(true), nil

		case opRetrieveByHash:
			v, err := r.run(subject, arg)
			if err != nil {
				return nil, err
			}
			if noun.IsCell(v) {
				return nil, ErrBadArgument
			}
			key := storageKey(padHash(v.Bytes()))
			val, found := r.eff.Load(key)
			if !found {
				return noun.AtomFromBool(false), nil
			}
			decoded, err := wire.Deserialize(val)
			if err != nil {
				return nil, ErrStorageCorrupt
			}
			return noun.Cell(noun.AtomFromBool(true), decoded), nil

		default:
			return nil, &BadOpcode{Op: op}
		}
	}
}

// serialize encodes n for hashing/storage, translating wire's errors into
// the vm-level kinds §7 names.
func (r *reducer) serialize(n *noun.Noun) ([]byte, error) {
	bs, err := wire.Serialize(n)
	switch err {
	case nil:
		return bs, nil
	case wire.ErrOverlongAtom:
		return nil, ErrBadArgument
	case wire.ErrMemoryExceeded:
		return nil, ErrMemoryExceeded
	default:
		return nil, err
	}
}

// hashOf serializes n and returns its BLAKE2b-512 digest, charging the
// HASH/STORE_BY_HASH surcharge of 20 + len(serialized bytes) on top of the
// one tick already charged for this reduction step.
func (r *reducer) hashOf(n *noun.Noun) ([hashSize]byte, error) {
	bs, err := r.serialize(n)
	if err != nil {
		return [hashSize]byte{}, err
	}
	return r.hashBytes(bs)
}

func (r *reducer) hashBytes(bs []byte) ([hashSize]byte, error) {
	if err := r.charge(hashSurchargeBase + uint64(len(bs))); err != nil {
		return [hashSize]byte{}, err
	}
	return blake2b.Sum512(bs), nil
}

// storageKey prepends the 0x01 tag byte the core uses for every key it
// writes or reads (§6).
func storageKey(digest []byte) []byte {
	key := make([]byte, 1+len(digest))
	key[0] = storageKeyTag
	copy(key[1:], digest)
	return key
}

// padHash restores a canonicalized hash atom to the full hashSize-byte
// digest STORE_BY_HASH actually wrote under. Atom canonicalization (§9)
// strips trailing (high-order, little-endian) zero bytes, which a real
// BLAKE2b digest can legitimately have; zero-extending back to hashSize
// bytes recovers the exact value STORE_BY_HASH hashed with, since trimming
// never discards anything but those zero bytes. Atoms already at or beyond
// hashSize bytes (not products of a genuine HASH call) are passed through
// unchanged.
func padHash(bs []byte) []byte {
	if len(bs) >= hashSize {
		return bs
	}
	out := make([]byte, hashSize)
	copy(out, bs)
	return out
}

// increment computes 1 + the numeric value of n. n must be an atom.
func increment(n *noun.Noun) (*noun.Noun, error) {
	if noun.IsCell(n) {
		return nil, ErrBadArgument
	}
	bs := n.Bytes()
	out := make([]byte, len(bs)+1)
	carry := uint16(1)
	i := 0
	for ; i < len(bs); i++ {
		sum := uint16(bs[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	out[i] = byte(carry)
	return noun.AtomFromBytes(out), nil
}
