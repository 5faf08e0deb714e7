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

package main

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/hoplight/nockvm/noun"
)

// parseNoun reads a single noun literal: a decimal atom, or a parenthesized
// sequence of two or more nouns separated by whitespace or dots, which
// right-folds into nested cells (so "(1 2 3)" is the same noun as
// "(1 . (2 . 3))", matching the right-associative tuples that noun.Tuple
// builds).
func parseNoun(s string) (*noun.Noun, error) {
	p := &parser{s: s}
	p.skipSpace()
	n, err := p.parseOne()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("trailing input at offset %d: %q", p.pos, p.s[p.pos:])
	}
	return n, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *parser) parseOne() (*noun.Noun, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if p.s[p.pos] == '(' {
		return p.parseList()
	}
	return p.parseAtom()
}

func (p *parser) parseList() (*noun.Noun, error) {
	p.pos++ // consume '('
	var items []*noun.Noun
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("unterminated list")
		}
		if p.s[p.pos] == ')' {
			p.pos++
			break
		}
		if p.s[p.pos] == '.' {
			p.pos++ // explicit dot before the final element is optional sugar
			continue
		}
		item, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("a cell needs at least two elements")
	}
	n := items[len(items)-1]
	for i := len(items) - 2; i >= 0; i-- {
		n = noun.Cell(items[i], n)
	}
	return n, nil
}

func (p *parser) parseAtom() (*noun.Noun, error) {
	start := p.pos
	for p.pos < len(p.s) && (unicode.IsDigit(rune(p.s[p.pos]))) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("expected a digit at offset %d: %q", start, p.s[start:])
	}
	digits := p.s[start:p.pos]
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("bad decimal atom %q", digits)
	}
	return noun.AtomFromBytes(littleEndianBytes(v)), nil
}

// littleEndianBytes converts a non-negative big.Int to little-endian bytes,
// matching the noun package's canonical atom byte order (§3.1).
func littleEndianBytes(v *big.Int) []byte {
	be := v.Bytes() // big-endian, no leading zero byte
	out := make([]byte, len(be))
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// formatNoun renders n back to the same surface syntax parseNoun accepts,
// for printing Eval's result.
func formatNoun(n *noun.Noun) string {
	if !noun.IsCell(n) {
		v := new(big.Int).SetBytes(reverse(n.Bytes()))
		return v.String()
	}
	var parts []string
	for {
		l, r, ok := noun.DestructureCell(n)
		if !ok {
			break
		}
		parts = append(parts, formatNoun(l))
		if !noun.IsCell(r) {
			parts = append(parts, formatNoun(r))
			break
		}
		n = r
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
