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

// Builder accumulates function records before assembly. It is the
// "Unassembled" phase of the type-state discipline: Generate is not
// reachable from a Builder, only from the AssembledBuilder that
// Assemble returns, so an unassembled IR cannot be handed to the code
// generator by construction rather than by runtime check.
type Builder struct {
	funcs []*FuncDef
}

// NewBuilder returns an empty, unassembled builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddFunc registers a function definition and returns the builder for
// chaining, mirroring the front-end's construction style.
func (b *Builder) AddFunc(f *FuncDef) *Builder {
	b.funcs = append(b.funcs, f)
	return b
}

// AssembledBuilder is the post-assembly phase: every function id, call
// site id, and conditional id in the IR is resolved, and the function
// table is ordered with "entry" first (if present). Only this type
// exposes Generate.
type AssembledBuilder struct {
	funcs []*FuncDef
}

// FuncTable returns the assembled function table in its final order,
// read-only from the caller's perspective (callers should not mutate
// the returned records).
func (ab *AssembledBuilder) FuncTable() []*FuncDef {
	return ab.funcs
}
