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

// Opcode numbers. These are part of the external contract (§9): any
// embedder that shares formulas across versions of this package must agree
// on this table, not rediscover it by trial and error.
const (
	opAxis            = 0
	opLiteral         = 1
	opRecurse         = 2
	opIsCell          = 3
	opIncrement       = 4
	opIsEqual         = 5
	opIf              = 6
	opCompose         = 7
	opDefine          = 8
	opCall            = 9
	opHash            = 10
	opStoreByHash     = 11
	opRetrieveByHash  = 12
	hashSurchargeBase = 20
)
