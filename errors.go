// Copyright 2024 The soilc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package soil

import "fmt"

// UndefinedFunctionError is returned when a Call references a function
// name absent from the function table. Surfaces lazily, at the Call
// site encountered during lowering — callee presence is never validated
// up front.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function: %s", e.Name)
}

// StackUnderflowError is raised when an instruction would need to read
// below a function's fixed frame, e.g. a Store targeting a slot while
// the expression stack above the fixed frame is already empty (depth
// == argc+localc), or a Call whose callee needs more arguments than
// are available above the fixed frame.
type StackUnderflowError struct {
	Function string
	Depth    int
	Fixed    int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow in %s: depth %d below fixed frame %d", e.Function, e.Depth, e.Fixed)
}

// PoppingValueFromEmptyStackError is raised when an instruction would
// pop more values than the tracked expression-stack depth has to give,
// e.g. a Return whose Retc exceeds the expression-stack depth, or a
// Cond popping its condition value from an already-empty stack.
type PoppingValueFromEmptyStackError struct {
	Function string
}

func (e *PoppingValueFromEmptyStackError) Error() string {
	return fmt.Sprintf("popping value from empty stack in %s", e.Function)
}

// FatalError reports an internal invariant violation: a function
// present in the table that no call site anywhere in the program
// references, an instruction kind the lowering does not recognize, or
// a Cond whose then and else branches leave the expression stack at
// different depths.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s", e.Reason)
}
