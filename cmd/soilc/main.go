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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	soil "github.com/soil-lang/soilc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type program struct {
	input       string
	output      string
	verbose     bool
	profilePath string
}

func (prog *program) run() error {
	data, err := os.ReadFile(prog.input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", prog.input, err)
	}

	builder, err := loadProgram(data)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	assembled := builder.Assemble()

	if prog.verbose {
		printFuncTable(assembled)
	}

	var generated string
	if prog.profilePath != "" {
		prof := soil.NewCompileProfiler()
		prof.StartProfile()
		generated, err = assembled.GenerateWithProfiler(prof)
		if err != nil {
			return fmt.Errorf("generating script: %w", err)
		}
		if err := soil.WriteProfile(prog.profilePath, prof.StopProfile()); err != nil {
			return fmt.Errorf("writing profile: %w", err)
		}
	} else {
		generated, err = assembled.Generate()
		if err != nil {
			return fmt.Errorf("generating script: %w", err)
		}
	}

	if err := os.WriteFile(prog.output, []byte(generated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", prog.output, err)
	}
	return nil
}

// printFuncTable dumps the resolved function table, mirroring the
// original CLI's verbose resolved_show_table() output.
func printFuncTable(assembled *soil.AssembledBuilder) {
	for _, f := range assembled.FuncTable() {
		fmt.Printf("func %-16s id=%-3d argc=%-2d localc=%-2d retc=%-2d call_site_offset=%d\n",
			f.Name, f.ID, f.Argc, f.Localc, f.Retc, f.CallSiteOffset)
	}
}

func run() error {
	input := pflag.StringP("input", "i", "", "soil program file to compile (required)")
	output := pflag.StringP("output", "o", "out.sed", "name of the generated sed file")
	verbose := pflag.BoolP("verbose", "v", false, "print the resolved function table before generating")
	profile := pflag.String("compile-profile", "", "write a pprof compile-time profile to the given path")
	pflag.Parse()

	if *input == "" {
		pflag.Usage()
		return fmt.Errorf("-i/--input is required")
	}

	return (&program{
		input:       *input,
		output:      *output,
		verbose:     *verbose,
		profilePath: *profile,
	}).run()
}
