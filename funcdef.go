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

import "strconv"

// FuncDef is a named function: argument arity, local-variable count,
// return arity, a globally unique id (assigned during assembly), the
// offset of its first call site in the global numbering, and its body.
//
// Names are unique across a function table. The function named "entry"
// is special and, after assembly, occupies index 0. Argc, Localc, and
// Retc are fixed at construction and never change.
type FuncDef struct {
	Name   string
	Argc   int
	Localc int
	Retc   int

	// ID matches table position after assembly; zero until then.
	ID int
	// CallSiteOffset is the global call-site counter value observed at
	// the start of this function's body, assigned during assembly.
	CallSiteOffset int

	Body []Instruction
}

// NewFuncDef constructs a function record with an empty body.
func NewFuncDef(name string, argc, localc, retc int) *FuncDef {
	return &FuncDef{
		Name:   name,
		Argc:   argc,
		Localc: localc,
		Retc:   retc,
	}
}

// SetBody installs the function's instructions and performs first-pass,
// function-local call-site indexing: every Call in the body (including
// inside Cond branches) receives a SiteID counting up from zero within
// this function alone. The assembly pass later renumbers these globally
// and fills in CallerFrameSize; the count returned here is informational
// (used by tests), not required by later passes.
func (f *FuncDef) SetBody(body []Instruction) (callSiteCount int) {
	f.Body = body
	counter := 0
	walk(body, func(inst Instruction) {
		if c, ok := inst.(*Call); ok {
			c.SiteID = counter
			counter++
		}
	})
	return counter
}

// FixedFrameSize is argc+localc, the portion of the virtual stack that
// never shrinks inside the function body.
func (f *FuncDef) FixedFrameSize() int {
	return f.Argc + f.Localc
}

func (f *FuncDef) funcLabel() string {
	return "func" + strconv.Itoa(f.ID)
}

func (f *FuncDef) returnLabel() string {
	return "return" + strconv.Itoa(f.ID)
}

// walk performs a pre-order traversal of an instruction sequence,
// recursing into Cond.Then before Cond.Else, and invokes visit on every
// instruction encountered (including the Cond nodes themselves). This is
// the single generic tree-walker shared by call-site numbering,
// local-count propagation, conditional labelling, and dispatch-index
// construction — conditionals are the only instruction with sub-bodies,
// so one recursion point suffices for every pass that needs to see the
// whole tree.
func walk(body []Instruction, visit func(Instruction)) {
	for _, inst := range body {
		visit(inst)
		if cond, ok := inst.(*Cond); ok {
			walk(cond.Then, visit)
			walk(cond.Else, visit)
		}
	}
}
