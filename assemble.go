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

// Assemble runs the assembly pass over the builder's function table and
// returns an AssembledBuilder with every identifier resolved:
//
//  1. Entry hoist: a function named "entry", if present, is moved to
//     index 0. Its absence is legal (spec.md §9 open question 1): the
//     remaining passes still run, and Generate later produces a script
//     with no initial preamble.
//  2. Call-site numbering: a monotone counter, shared across the whole
//     program, walks each function body pre-order (Cond.Then before
//     Cond.Else) and assigns the counter as each Call's SiteID. A
//     function's CallSiteOffset is the counter value observed at the
//     start of its body.
//  3. Function-id assignment: sequential ids in post-hoist table order.
//  4. Local-count propagation: every Call in function f receives
//     f.Argc+f.Localc as its CallerFrameSize.
//  5. Conditional labelling: a second shared counter assigns Cond.ID
//     pre-order across the whole program.
//
// Assemble cannot fail: the pass is total over any structurally valid
// input, matching spec.md §4.1.
func Assemble(b *Builder) *AssembledBuilder {
	funcs := make([]*FuncDef, len(b.funcs))
	copy(funcs, b.funcs)

	funcs = hoistEntry(funcs)

	siteCounter := 0
	for _, f := range funcs {
		f.CallSiteOffset = siteCounter
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Call); ok {
				c.SiteID = siteCounter
				siteCounter++
			}
		})
	}

	for id, f := range funcs {
		f.ID = id
	}

	for _, f := range funcs {
		frameSize := f.FixedFrameSize()
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Call); ok {
				c.CallerFrameSize = frameSize
			}
		})
	}

	condCounter := 0
	for _, f := range funcs {
		walk(f.Body, func(inst Instruction) {
			if cond, ok := inst.(*Cond); ok {
				cond.ID = condCounter
				condCounter++
			}
		})
	}

	return &AssembledBuilder{funcs: funcs}
}

// Assemble is also exposed as a Builder method for the fluent
// construction style the front-end uses (NewBuilder().AddFunc(...).Assemble()).
func (b *Builder) Assemble() *AssembledBuilder {
	return Assemble(b)
}

func hoistEntry(funcs []*FuncDef) []*FuncDef {
	for i, f := range funcs {
		if f.Name == "entry" {
			if i == 0 {
				return funcs
			}
			entry := f
			out := make([]*FuncDef, 0, len(funcs))
			out = append(out, entry)
			out = append(out, funcs[:i]...)
			out = append(out, funcs[i+1:]...)
			return out
		}
	}
	return funcs
}
