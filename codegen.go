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

import (
	"strconv"
	"strings"
)

// The working buffer is a single string with two regions separated by
// exactly one literal newline: "<primary>\n<hold>". The primary region
// encodes the currently-executing frame as concatenated "~value" slot
// tokens; the hold region accumulates return markers, one per
// in-flight call, most recent at the tail. Neither region ever
// contains a literal newline itself, since slot values and marker text
// exclude it by the encoding contract (spec.md §6.2).
const (
	oneSlotAtom  = `~[^~|;\n]*`
	slotCharList = `[^~|;\n]`
)

// slotsGroup returns a capturing group matching exactly n consecutive
// slot tokens, as a single span. It is used both to capture a span we
// intend to reuse (e.g. duplicating a pushed value) and to skip a span
// we intend to leave untouched but must still name as a group to keep
// later group numbers in this pattern correct (GNU BRE groups are
// always capturing).
//
// The atom is repeated literally n times inside one group rather than
// wrapped with a `\{n\}` bound: applying `\{n\}` to a capturing group
// only retains the group's *last* repetition in the corresponding
// backreference (standard BRE repeated-group semantics), which would
// silently truncate every multi-slot span this function is asked to
// capture down to its final slot.
func slotsGroup(n int) string {
	return `\(` + strings.Repeat(oneSlotAtom, n) + `\)`
}

func oneSlotGroup() string {
	return `\(` + oneSlotAtom + `\)`
}

func rewrite(pattern, replacement string) string {
	return "s/" + pattern + "/" + replacement + "/"
}

// escapeReplacement escapes characters with special meaning on the
// replacement side of a sed s/// command.
func escapeReplacement(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `&`, `\&`, `/`, `\/`)
	return r.Replace(s)
}

// lowerState threads the compile-time stack-depth counter and output
// buffer through the lowering of a single function's body. depth is the
// count of fixed-frame plus expression-stack slots the *primary* buffer
// is statically known to hold at the current point in the body.
type lowerState struct {
	fn    *FuncDef
	table map[string]*FuncDef
	depth int
	out   *strings.Builder
}

// absSlot resolves a Slot to its absolute position within the fixed
// frame: arguments occupy [0, argc), locals occupy [argc, argc+localc).
func absSlot(fn *FuncDef, s Slot) int {
	if s.Kind == ArgSlot {
		return s.Index
	}
	return fn.Argc + s.Index
}

// lowerBody lowers an instruction sequence in place, advancing
// st.depth and appending emitted script text to st.out. It returns the
// first error encountered; per spec.md §7, lowering aborts on the first
// error with no partial recovery, though the caller (lowerFunction) still
// discards any text produced so far since Generate's contract is
// all-or-nothing.
func lowerBody(st *lowerState, body []Instruction) error {
	for _, inst := range body {
		if err := lowerOne(st, inst); err != nil {
			return err
		}
	}
	return nil
}

func lowerOne(st *lowerState, inst Instruction) error {
	switch v := inst.(type) {
	case Raw:
		st.out.WriteString(v.Text)
		st.out.WriteByte('\n')
		return nil

	case PushVal:
		pos := absSlot(st.fn, v.Slot)
		d := st.depth
		pat := "^" + slotsGroup(pos) + oneSlotGroup() + slotsGroup(d-pos-1)
		st.out.WriteString(rewrite(pat, `\1\2\3\2`))
		st.out.WriteByte('\n')
		st.depth++
		return nil

	case PushConst:
		st.out.WriteString(rewrite(`\n`, "~"+escapeReplacement(v.Literal)+`\n`))
		st.out.WriteByte('\n')
		st.depth++
		return nil

	case Store:
		pos := absSlot(st.fn, v.Slot)
		d := st.depth
		if d <= st.fn.FixedFrameSize() {
			return &StackUnderflowError{Function: st.fn.Name, Depth: d, Fixed: st.fn.FixedFrameSize()}
		}
		pat := "^" + slotsGroup(pos) + oneSlotGroup() /* discarded */ + slotsGroup(d-pos-2) + oneSlotGroup()
		st.out.WriteString(rewrite(pat, `\1\4\3`))
		st.out.WriteByte('\n')
		st.depth--
		return nil

	case *Call:
		return lowerCall(st, v)

	case Return:
		d := st.depth
		retc := st.fn.Retc
		if d-retc < st.fn.FixedFrameSize() {
			return &PoppingValueFromEmptyStackError{Function: st.fn.Name}
		}
		pat := "^" + slotsGroup(d-retc) + slotsGroup(retc) + `\n\(.*\)$`
		repl := `\2;\n\3`
		st.out.WriteString(rewrite(pat, repl))
		st.out.WriteByte('\n')
		st.out.WriteString("b " + st.fn.returnLabel())
		st.out.WriteByte('\n')
		return nil

	case *Cond:
		return lowerCond(st, v)

	default:
		return &FatalError{Reason: "unrecognized instruction kind in lowering"}
	}
}

func lowerCall(st *lowerState, c *Call) error {
	callee, ok := st.table[c.Callee]
	if !ok {
		return &UndefinedFunctionError{Name: c.Callee}
	}

	d := st.depth
	n, m := callee.Argc, callee.Retc
	if d-n < st.fn.FixedFrameSize() {
		return &StackUnderflowError{Function: st.fn.Name, Depth: d, Fixed: st.fn.FixedFrameSize()}
	}

	siteLabel := "retlabel" + strconv.Itoa(c.SiteID)

	// Pop the top n argument slots together with everything below them,
	// fixed frame included ("the caller's frame"), into a single
	// return marker appended to the hold region: the callee's preamble
	// will copy the args back out to build its own frame, and the
	// callee's return-dispatch trampoline (in g's return block,
	// matched by siteID, dispatch.go) will restore the caller-frame
	// span and splice in the callee's results when control comes back.
	keep := d - n
	pat := "^" + slotsGroup(keep) + slotsGroup(n) + `\n\(.*\)$`
	repl := `\n\3:` + siteLabel + `\2\1|`
	st.out.WriteString(rewrite(pat, repl))
	st.out.WriteByte('\n')
	st.out.WriteString("b " + callee.funcLabel())
	st.out.WriteByte('\n')
	st.out.WriteString(":" + siteLabel)
	st.out.WriteByte('\n')

	st.depth = d - n + m
	return nil
}

func lowerCond(st *lowerState, c *Cond) error {
	d := st.depth
	if d <= st.fn.FixedFrameSize() {
		return &PoppingValueFromEmptyStackError{Function: st.fn.Name}
	}

	id := strconv.Itoa(c.ID)
	resetLabel := "reset_flag" + id
	thenLabel := "then" + id
	elseLabel := "else" + id
	endifLabel := "endif" + id
	afterResetLabel := "after_reset_flag" + id

	// Unconditionally clear the substitution-success flag left over
	// from whatever pushed the condition value, so the zero-test below
	// reflects only its own match result.
	st.out.WriteString(":" + resetLabel + "\n")
	st.out.WriteString("t " + afterResetLabel + "\n")
	st.out.WriteString(":" + afterResetLabel + "\n")

	// Delete the condition slot if its value is all zeros; success
	// means "false", branch to else. Falling through (value nonzero,
	// or test failed to match) lands on then<c>.
	zeroPat := "^" + slotsGroup(d-1) + `~0\{1,\}\n`
	st.out.WriteString(rewrite(zeroPat, `\1\n`))
	st.out.WriteByte('\n')
	st.out.WriteString("t " + elseLabel + "\n")

	st.out.WriteString(":" + thenLabel + "\n")
	stripPat := "^" + slotsGroup(d-1) + oneSlotGroup() + `\n`
	st.out.WriteString(rewrite(stripPat, `\1\n`))
	st.out.WriteByte('\n')

	st.depth = d - 1
	if err := lowerBody(st, c.Then); err != nil {
		return err
	}
	thenDepth := st.depth
	st.out.WriteString("b " + endifLabel + "\n")

	st.out.WriteString(":" + elseLabel + "\n")
	st.depth = d - 1
	if err := lowerBody(st, c.Else); err != nil {
		return err
	}
	elseDepth := st.depth

	st.out.WriteString(":" + endifLabel + "\n")

	if thenDepth != elseDepth {
		return &FatalError{Reason: "then/else branches of cond " + id + " leave the expression stack at different depths"}
	}
	st.depth = thenDepth
	return nil
}
