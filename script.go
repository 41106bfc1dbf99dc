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

// Generate lowers every function in the table to target script text and
// concatenates it: entry's block (if present) first, then every other
// function's block in table order, then the terminal label "done". A
// function's block is its preamble, body, return label, and — for every
// function besides entry — its return-dispatch trampoline immediately
// after the return label.
//
// Generate (and GenerateWithProfiler) are exposed only by
// AssembledBuilder, reflecting the type-state discipline: only an
// assembled IR can reach codegen.
func (ab *AssembledBuilder) Generate() (string, error) {
	table := make(map[string]*FuncDef, len(ab.funcs))
	for _, f := range ab.funcs {
		table[f.Name] = f
	}

	callIndex, err := buildCallIndex(ab.funcs)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, f := range ab.funcs {
		body, err := lowerFunction(f, table)
		if err != nil {
			return "", err
		}
		out.WriteString(body)

		isEntry := f.ID == 0 && f.Name == "entry"
		if !isEntry {
			out.WriteString(generateDispatch(f, callIndex[f.Name]))
		}
	}
	out.WriteString(":done\n")

	return out.String(), nil
}

// GenerateScript is a package-level convenience wrapping Builder,
// Assemble, and Generate in one call for callers that do not need to
// inspect the intermediate AssembledBuilder.
func GenerateScript(b *Builder) (string, error) {
	return b.Assemble().Generate()
}
