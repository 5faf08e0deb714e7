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
	"errors"
	"fmt"

	"github.com/hoplight/nockvm/noun"
)

// Error taxonomy, §7. Most conditions carry no data and are plain sentinel
// errors compared with errors.Is; BadOpcode carries the offending byte and
// is a typed error, the way ion.TypeError carries its mismatched types.
var (
	// ErrMalformedExpression is returned by Eval when its argument is not
	// a (subject . formula) cell.
	ErrMalformedExpression = errors.New("vm: top-level expression is not a cell")

	// ErrCellAsIndex and ErrIndexOutOfRange are the axis-selector failures;
	// they are the same sentinels noun.Axis returns, so a caller can
	// compare against either package's exported name.
	ErrCellAsIndex     = noun.ErrCellAsIndex
	ErrIndexOutOfRange = noun.ErrIndexOutOfRange

	ErrNotAnOpcode        = errors.New("vm: opcode does not fit in a byte")
	ErrBadRecurseArgument = errors.New("vm: RECURSE argument is not a pair")
	ErrBadEqualsArgument  = errors.New("vm: IS_EQUAL argument did not evaluate to a cell")
	ErrBadIfCondition     = errors.New("vm: IF condition evaluated to neither loobean true nor false")
	ErrBadArgument        = errors.New("vm: opcode argument has the wrong shape")
	ErrTickLimitExceeded  = errors.New("vm: tick limit exceeded")
	ErrAtomicFormula      = errors.New("vm: formula is an atom, a cell is required")
	ErrMemoryExceeded     = errors.New("vm: serialized form exceeds the configured maximum size")
	ErrStorageCorrupt     = errors.New("vm: retrieved bytes failed to deserialize")
)

// BadOpcode is returned when the formula's head names an opcode this
// reducer does not implement.
type BadOpcode struct {
	Op uint8
}

func (e *BadOpcode) Error() string {
	return fmt.Sprintf("vm: opcode %d is not assigned", e.Op)
}
