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

import (
	"testing"

	"github.com/hoplight/nockvm/noun"
)

// memEffector is the simplest possible Effector: an in-memory map. It is
// enough to exercise STORE_BY_HASH/RETRIEVE_BY_HASH without pulling in the
// store package's persistence machinery.
type memEffector struct {
	m map[string][]byte
}

func newMemEffector() *memEffector { return &memEffector{m: make(map[string][]byte)} }

func (e *memEffector) Load(key []byte) ([]byte, bool) {
	v, ok := e.m[string(key)]
	return v, ok
}
func (e *memEffector) Store(key, value []byte) { e.m[string(key)] = append([]byte(nil), value...) }
func (e *memEffector) NearestNeighbor(p [32]byte) [32]byte { return p }
func (e *memEffector) Random(buf []byte)                   {}
func (e *memEffector) Send(dst [32]byte, msg []byte, cost uint64) {}

const bigTickCap = 1_000_000

func evalOK(t *testing.T, expr *noun.Noun) *noun.Noun {
	t.Helper()
	got, err := Eval(expr, newMemEffector(), bigTickCap)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return got
}

func assertAtomEquals(t *testing.T, got *noun.Noun, want uint64) {
	t.Helper()
	if !atomEqual(got, noun.U(want)) {
		t.Fatalf("expected atom %d", want)
	}
}

func atomEqual(a, b *noun.Noun) bool {
	v := noun.Equal(a, b)
	x, ok := v.Small()
	return ok && x == 0
}

func TestLiteral(t *testing.T) {
	// (0, 1, 44): subject 0, formula (1 . 44) -> LITERAL 44.
	got := evalOK(t, noun.Tuple(noun.U(0), noun.U(opLiteral), noun.U(44)))
	assertAtomEquals(t, got, 44)

	expr := noun.Tuple(noun.Tuple(noun.U(76), noun.U(30)), noun.U(opLiteral), noun.Tuple(noun.U(42), noun.U(60)))
	got = evalOK(t, expr)
	if !atomEqual(got, noun.Tuple(noun.U(42), noun.U(60))) {
		t.Fatal("literal of a tuple mismatch")
	}
}

func TestAxisOpcode(t *testing.T) {
	expr := noun.Tuple(noun.Tuple(noun.U(98), noun.U(99)), noun.U(opAxis), noun.U(2))
	assertAtomEquals(t, evalOK(t, expr), 98)

	expr = noun.Tuple(noun.Tuple(noun.U(98), noun.U(99)), noun.U(opAxis), noun.U(3))
	assertAtomEquals(t, evalOK(t, expr), 99)

	deep := noun.Tuple(noun.U(1), noun.U(2), noun.U(3), noun.U(4),
		noun.Tuple(noun.U(5), noun.U(6), noun.U(7), noun.Tuple(noun.U(8), noun.U(9), noun.U(10), noun.U(11))))
	expr = noun.Tuple(deep, noun.U(opAxis), noun.U(0x07ff))
	assertAtomEquals(t, evalOK(t, expr), 11)
}

func TestIncrementOpcode(t *testing.T) {
	expr := noun.Tuple(noun.U(22), noun.U(opIncrement), noun.Tuple(noun.U(opAxis), noun.U(1)))
	assertAtomEquals(t, evalOK(t, expr), 23)

	expr = noun.Tuple(noun.U(0xff), noun.U(opIncrement), noun.Tuple(noun.U(opAxis), noun.U(1)))
	got := evalOK(t, expr)
	if !atomEqual(got, noun.B([]byte{0x00, 0x01})) {
		t.Fatal("increment overflow did not promote to a two-byte atom")
	}
}

func TestRecurseOpcode(t *testing.T) {
	// subject = (123 . (0 . 1)); formula = (2 . ((0.2) . (0.3)))
	subject := noun.Tuple(noun.U(123), noun.Tuple(noun.U(opAxis), noun.U(1)))
	expr := noun.Tuple(
		subject,
		noun.U(opRecurse),
		noun.Tuple(noun.U(opAxis), noun.U(2)),
		noun.Tuple(noun.U(opAxis), noun.U(3)),
	)
	assertAtomEquals(t, evalOK(t, expr), 123)
}

func TestIfOpcode(t *testing.T) {
	trueBranch := noun.Tuple(
		noun.U(42),
		noun.U(opIf),
		noun.Tuple(noun.U(opLiteral), noun.U(0)),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
		noun.Tuple(noun.U(opLiteral), noun.U(233)),
	)
	assertAtomEquals(t, evalOK(t, trueBranch), 43)

	falseBranch := noun.Tuple(
		noun.U(42),
		noun.U(opIf),
		noun.Tuple(noun.U(opLiteral), noun.U(1)),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
		noun.Tuple(noun.U(opLiteral), noun.U(233)),
	)
	assertAtomEquals(t, evalOK(t, falseBranch), 233)
}

func TestComposeOpcode(t *testing.T) {
	expr := noun.Tuple(
		noun.U(42), noun.U(opCompose),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
	)
	assertAtomEquals(t, evalOK(t, expr), 44)
}

func TestDefineOpcode(t *testing.T) {
	expr := noun.Tuple(
		noun.U(42), noun.U(opDefine),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
		noun.Tuple(noun.U(opAxis), noun.U(1)),
	)
	got := evalOK(t, expr)
	if !atomEqual(got, noun.Tuple(noun.U(43), noun.U(42))) {
		t.Fatal("define push_1 mismatch")
	}

	expr = noun.Tuple(
		noun.U(42), noun.U(opDefine),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1)),
		noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(3)),
	)
	assertAtomEquals(t, evalOK(t, expr), 43)
}

// TestDecrement exercises DEFINE/CALL/IS_EQUAL/IF/INCREMENT together: it
// installs a one-argument gate at axis 2 of a (gate . (counter . input))
// subject and re-enters it via CALL until incrementing the counter reaches
// the input, the classic Nock decrement idiom. On subject 42, returns 41.
func TestDecrement(t *testing.T) {
	// Against a subject shaped (gate . (b . x)), evaluates to
	// (increment(b) . x) by distributing two sub-formulas.
	pairFormula := noun.Cell(
		noun.Cell(noun.U(opIncrement), noun.Cell(noun.U(opAxis), noun.U(6))),
		noun.Cell(noun.U(opAxis), noun.U(7)),
	)
	condFormula := noun.Cell(noun.U(opIsEqual), pairFormula)
	thenFormula := noun.Cell(noun.U(opAxis), noun.U(6)) // done: return b
	newCoreFormula := noun.Cell(
		noun.Cell(noun.U(opAxis), noun.U(2)), // re-fetch the gate from the current subject
		pairFormula,                          // (increment(b) . x), shared with condFormula
	)
	elseFormula := noun.Tuple(noun.U(opCall), noun.U(2), newCoreFormula)
	gate := noun.Tuple(noun.U(opIf), condFormula, thenFormula, elseFormula)

	installGateAndCall := noun.Tuple(
		noun.U(opDefine),
		noun.Cell(noun.U(opLiteral), gate),
		noun.Tuple(noun.U(opCall), noun.U(2), noun.U(opAxis), noun.U(1)),
	)
	top := noun.Tuple(
		noun.U(opDefine),
		noun.Cell(noun.U(opLiteral), noun.U(0)), // b := 0
		installGateAndCall,
	)
	expr := noun.Cell(noun.U(42), top)
	assertAtomEquals(t, evalOK(t, expr), 41)
}

func TestStoreAndRetrieveByHash(t *testing.T) {
	eff := newMemEffector()

	store := noun.Tuple(
		noun.U(21),
		noun.U(opRecurse),
		noun.Tuple(noun.Tuple(noun.U(opStoreByHash), noun.U(opAxis), noun.U(1)), noun.Tuple(noun.U(opIncrement), noun.U(opAxis), noun.U(1))),
		noun.Tuple(noun.U(opLiteral), noun.U(opAxis), noun.U(3)),
	)
	got, err := Eval(store, eff, bigTickCap)
	if err != nil {
		t.Fatalf("store program failed: %v", err)
	}
	assertAtomEquals(t, got, 22)

	hashExpr := noun.Tuple(noun.U(21), noun.U(opHash), noun.Tuple(noun.U(opAxis), noun.U(1)))
	hash, err := Eval(hashExpr, eff, bigTickCap)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	retrieve := noun.Cell(hash, noun.Tuple(noun.U(opRetrieveByHash), noun.U(opAxis), noun.U(1)))
	got, err = Eval(retrieve, eff, bigTickCap)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	want := noun.Tuple(noun.AtomFromBool(true), noun.U(21))
	if !atomEqual(got, want) {
		t.Fatal("store/retrieve round trip mismatch")
	}
}

func TestRetrieveUnknownKeyReturnsFalse(t *testing.T) {
	expr := noun.Tuple(noun.U(999), noun.U(opRetrieveByHash), noun.Tuple(noun.U(opAxis), noun.U(1)))
	got := evalOK(t, expr)
	v, ok := got.Small()
	if !ok || v != 1 {
		t.Fatal("expected loobean false on unknown key")
	}
}

func TestMalformedExpression(t *testing.T) {
	_, err := Eval(noun.U(5), newMemEffector(), bigTickCap)
	if err != ErrMalformedExpression {
		t.Fatalf("got %v", err)
	}
}

func TestAtomicFormula(t *testing.T) {
	_, err := Eval(noun.Cell(noun.U(1), noun.U(2)), newMemEffector(), bigTickCap)
	if err != ErrAtomicFormula {
		t.Fatalf("got %v", err)
	}
}

func TestBadOpcode(t *testing.T) {
	expr := noun.Tuple(noun.U(1), noun.U(99), noun.U(0))
	_, err := Eval(expr, newMemEffector(), bigTickCap)
	bo, ok := err.(*BadOpcode)
	if !ok || bo.Op != 99 {
		t.Fatalf("expected BadOpcode(99), got %v", err)
	}
}

func TestTickLimitExceeded(t *testing.T) {
	expr := noun.Tuple(noun.U(0), noun.U(opLiteral), noun.U(1))
	if _, err := Eval(expr, newMemEffector(), 1); err != ErrTickLimitExceeded {
		t.Fatalf("got %v", err)
	}
}

// TestDeepRecurseTickExhaustion installs a gate that calls itself
// unconditionally ([9 2 0 1], the same re-entry idiom TestDecrement's loop
// uses) and checks that exhausting the tick cap fails cleanly rather than
// overflowing the Go stack, validating the tail-position reuse in opCall.
func TestDeepRecurseTickExhaustion(t *testing.T) {
	enterGate := noun.Tuple(noun.U(opCall), noun.U(2), noun.U(opAxis), noun.U(1))
	loop := noun.Tuple(
		noun.U(opDefine),
		noun.Cell(noun.U(opLiteral), enterGate), // the gate's body re-enters itself
		enterGate,
	)
	expr := noun.Cell(noun.U(0), loop)
	_, err := Eval(expr, newMemEffector(), 1_000_000)
	if err != ErrTickLimitExceeded {
		t.Fatalf("got %v", err)
	}
}

func TestHashOversizedSerializationFails(t *testing.T) {
	big := make([]byte, 1_100_000)
	big[len(big)-1] = 1
	expr := noun.Tuple(noun.B(big), noun.U(opHash), noun.Tuple(noun.U(opAxis), noun.U(1)))
	_, err := Eval(expr, newMemEffector(), bigTickCap)
	if err != ErrMemoryExceeded {
		t.Fatalf("got %v", err)
	}
}

func TestDistributeCommutesWithEval(t *testing.T) {
	f := noun.Tuple(noun.U(opAxis), noun.U(1))
	g := noun.Tuple(noun.U(opLiteral), noun.U(9))
	formula := noun.Cell(f, g)
	subject := noun.U(7)

	got, err := Eval(noun.Cell(subject, formula), newMemEffector(), bigTickCap)
	if err != nil {
		t.Fatal(err)
	}

	lhs, err := Eval(noun.Cell(subject, f), newMemEffector(), bigTickCap)
	if err != nil {
		t.Fatal(err)
	}
	rhs, err := Eval(noun.Cell(subject, g), newMemEffector(), bigTickCap)
	if err != nil {
		t.Fatal(err)
	}
	if !atomEqual(got, noun.Cell(lhs, rhs)) {
		t.Fatal("distribute does not commute with eval")
	}
}
