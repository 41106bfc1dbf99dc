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

	"golang.org/x/exp/slices"
)

// callSite is one edge in the call graph: a Call instruction found
// while walking a function's body, paired with the caller that holds
// it. The return-dispatch generator groups these by callee to build
// each callee's trampoline.
type callSite struct {
	caller *FuncDef
	call   *Call
}

// buildCallIndex walks every function in the table and groups the call
// sites found by callee name. "entry" is exempt from the "must be
// referenced" check below: it is the implicit starting point, reached
// by the script's initial cycle rather than by any Call, so it
// legitimately never appears as a callee.
func buildCallIndex(funcs []*FuncDef) (map[string][]callSite, error) {
	index := make(map[string][]callSite)
	for _, f := range funcs {
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Call); ok {
				index[c.Callee] = append(index[c.Callee], callSite{caller: f, call: c})
			}
		})
	}

	for _, f := range funcs {
		if f.ID == 0 && f.Name == "entry" {
			continue
		}
		if len(index[f.Name]) == 0 {
			return nil, &FatalError{Reason: "function " + f.Name + " is present in the function table but no call site references it"}
		}
	}

	return index, nil
}

// generateDispatch emits the return-dispatch trampoline for function f:
// one guarded rewrite per call site that calls f, tried in ascending
// call-site-id order, each restoring the matching caller's saved frame
// and branching back into that caller's code.
func generateDispatch(f *FuncDef, sites []callSite) string {
	ordered := make([]callSite, len(sites))
	copy(ordered, sites)
	slices.SortFunc(ordered, func(a, b callSite) bool {
		return a.call.SiteID < b.call.SiteID
	})

	var out strings.Builder

	// The return label above is reached with whatever substitution
	// flag the function's own body last left behind, which has nothing
	// to do with the first guard below. Clear it the same way Cond
	// does, so that guard's "t" reflects only its own match.
	fid := strconv.Itoa(f.ID)
	resetLabel := "reset_dispatch_flag" + fid
	afterResetLabel := "after_reset_dispatch_flag" + fid
	out.WriteString(":" + resetLabel + "\n")
	out.WriteString("t " + afterResetLabel + "\n")
	out.WriteString(":" + afterResetLabel + "\n")

	for _, site := range ordered {
		id := strconv.Itoa(site.call.SiteID)
		siteLabel := "retlabel" + id

		// Primary buffer currently holds exactly f.Retc return values
		// terminated by ";" (written by Return's lowering). The hold
		// region's tail, if this is the call site that led here, reads
		// ":retlabel<id>" + f.Argc discarded argument placeholders +
		// the caller's saved frame (arbitrary width, captured via a
		// wildcard since no fixed count is available at this point in
		// the pipeline) + "|". Restore that frame immediately before
		// the return payload and branch back into the caller. The ";"
		// terminator is consumed here, not reproduced: it exists only
		// to mark "a Return just landed" for this one match, and must
		// not survive into the caller's resumed buffer, where the next
		// lowered instruction (another Call, a Cond, or Return) expects
		// an unbroken run of slot tokens up to the boundary newline.
		//
		// The saved-frame capture is bounded to exclude "|": with more
		// than one call outstanding, the hold region holds more than
		// one marker at once, and an earlier marker can carry this
		// call site's id while another site's marker is the last. An
		// unbounded ".*" would let the guard match that earlier marker
		// and run past its closing "|" into the markers that follow;
		// bounded, the guard matches only the last marker.
		pat := `^` + slotsGroup(f.Retc) + `;\n\(.*\):` + siteLabel + slotsGroup(f.Argc) + `\([^|]*\)|$`
		repl := `\4\1\n\2`
		out.WriteString(rewrite(pat, repl))
		out.WriteByte('\n')
		out.WriteString("t " + siteLabel)
		out.WriteByte('\n')
	}

	return out.String()
}
