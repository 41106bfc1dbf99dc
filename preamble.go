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

import "strings"

// lowerFunction lowers one function's preamble, body, and return label
// into target script text. table must contain every function the body
// calls (including the function itself, for recursion). The returned
// text ends at the function's return label; dispatch.go appends the
// return-dispatch trampoline after it, except for "entry" whose return
// label simply branches to the terminal label "done".
func lowerFunction(f *FuncDef, table map[string]*FuncDef) (string, error) {
	var out strings.Builder
	st := &lowerState{fn: f, table: table, out: &out}

	isEntry := f.ID == 0 && f.Name == "entry"

	if !isEntry {
		out.WriteString(":" + f.funcLabel() + "\n")
	}

	writeFixedFramePreamble(&out, f, isEntry)
	st.depth = f.FixedFrameSize()

	if err := lowerBody(st, f.Body); err != nil {
		return "", err
	}

	out.WriteString(":" + f.returnLabel() + "\n")
	if isEntry {
		out.WriteString("b done\n")
	}

	return out.String(), nil
}

// writeFixedFramePreamble emits the rewrite that establishes a
// function's fixed frame at the top of its body. For "entry" the
// rewrite is always emitted, since it also opens the hold region; with
// localc=0 it adds no ~init token. Any other function whose fixed frame
// is empty (argc=0, localc=0) needs no preamble at all: the primary
// buffer a Call leaves behind is already empty (see lowerCall).
func writeFixedFramePreamble(out *strings.Builder, f *FuncDef, isEntry bool) {
	inits := strings.Repeat("~init", f.Localc)

	if isEntry {
		// The initial input line already holds argc encoded argument
		// slots; append localc initial-local tokens and open the hold
		// region.
		out.WriteString(rewrite(`$`, inits+`\n`))
		out.WriteByte('\n')
		return
	}

	if f.FixedFrameSize() == 0 {
		return
	}

	// A non-entry function is reached by branching in from a call site
	// whose marker sits at the tail of the hold region:
	// ":retlabel<k>" + argc argument slots + the caller's saved frame,
	// terminated by "|". Copy the argument slots out to become this
	// function's own primary buffer, append the local-variable inits,
	// and write the hold region back byte-for-byte unchanged: the
	// marker must survive intact for this function's own return-dispatch
	// trampoline to consume later.
	pat := `^\n\(.*:retlabel[0-9]\{1,\}\)` + slotsGroup(f.Argc) + `\(.*\)|$`
	repl := `\2` + inits + `\n\1\2\3|`
	out.WriteString(rewrite(pat, repl))
	out.WriteByte('\n')
}
