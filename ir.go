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

// Package soil implements a compiler back-end whose target machine is
// GNU sed: a line-oriented text engine whose only primitive is
// substitution with branch/label control flow.
//
// The package lowers a small stack-oriented intermediate representation
// (this file), through an assembly pass (assemble.go) that assigns
// globally unique identities to functions, call sites, and conditional
// scopes, into a sed script (codegen.go, dispatch.go, script.go) that
// simulates a call stack, local scopes, recursion, and branching on a
// machine with none of those primitives natively.
package soil

// Instruction is the stack-oriented IR the front-end emits. Every
// concrete instruction type below implements it; the set is closed and
// switched over exhaustively in codegen.go.
type Instruction interface {
	isInstruction()
}

// Raw passes a target-script fragment through verbatim. Used both by
// hand-written compiler output and by stdlib functions whose body is
// nothing but sed substitutions.
type Raw struct {
	Text string
}

func (Raw) isInstruction() {}

// SlotKind distinguishes an argument slot from a local-variable slot
// within a function's fixed frame.
type SlotKind int

const (
	// ArgSlot selects an argument slot.
	ArgSlot SlotKind = iota
	// LocalSlot selects a local-variable slot.
	LocalSlot
)

// Slot addresses one fixed-frame cell: argument i or local i.
type Slot struct {
	Kind  SlotKind
	Index int
}

// Arg builds a reference to argument i.
func Arg(i int) Slot { return Slot{Kind: ArgSlot, Index: i} }

// Local builds a reference to local i.
func Local(i int) Slot { return Slot{Kind: LocalSlot, Index: i} }

// PushVal pushes the current value of a fixed-frame slot onto the
// virtual expression stack.
type PushVal struct {
	Slot Slot
}

func (PushVal) isInstruction() {}

// PushConst pushes a literal constant string onto the virtual expression
// stack. The core does not validate that Literal avoids the reserved
// characters `~ | ; \n` — see spec.md §9 open question 2.
type PushConst struct {
	Literal string
}

func (PushConst) isInstruction() {}

// Call invokes a named callee, consuming callee.Argc values from the
// top of the expression stack and pushing callee.Retc results. SiteID
// holds a function-local index after SetBody and the global id after
// the assembly pass; CallerFrameSize is zero until the assembly pass
// runs. Lowering builds its labels from SiteID, which the type-state
// builder (builder.go) guarantees is the global id; it does not read
// CallerFrameSize.
type Call struct {
	Callee string

	// SiteID is the globally unique call-site id, assigned by the
	// assembly pass (assemble.go).
	SiteID int
	// CallerFrameSize is argc+localc of the function this Call lives
	// in, assigned by the assembly pass.
	CallerFrameSize int
}

func (*Call) isInstruction() {}

// Store pops the top of the expression stack and writes it into a
// fixed-frame slot.
type Store struct {
	Slot Slot
}

func (Store) isInstruction() {}

// Return consumes the function's Retc top-of-stack values and transfers
// control back to the caller.
type Return struct{}

func (Return) isInstruction() {}

// Cond pops the top of the expression stack; a nonzero value selects
// Then, a value of one or more "0" characters selects Else. An empty
// value counts as nonzero and selects Then. ID is assigned by the
// assembly pass.
type Cond struct {
	ID   int
	Then []Instruction
	Else []Instruction
}

func (*Cond) isInstruction() {}
