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
	"encoding/json"
	"fmt"

	soil "github.com/soil-lang/soilc"
	"github.com/soil-lang/soilc/stdlib"
)

// programFile is the on-disk JSON shape accepted by -i, a minimal
// textual encoding of the stack-oriented IR. A full language front-end
// (lexing, parsing, name resolution into this IR) is out of scope for
// this back-end; this loader fills the same slot a real front-end
// would, reading an already-resolved IR straight off disk.
type programFile struct {
	Functions []funcFile `json:"functions"`
}

type funcFile struct {
	Name   string    `json:"name"`
	Stdlib string    `json:"stdlib,omitempty"`
	Argc   int       `json:"argc"`
	Localc int       `json:"localc"`
	Retc   int       `json:"retc"`
	Body   []instFile `json:"body,omitempty"`
}

type instFile struct {
	Op      string     `json:"op"`
	Kind    string     `json:"kind,omitempty"`
	Index   int        `json:"index,omitempty"`
	Literal string     `json:"literal,omitempty"`
	Text    string     `json:"text,omitempty"`
	Callee  string     `json:"callee,omitempty"`
	Then    []instFile `json:"then,omitempty"`
	Else    []instFile `json:"else,omitempty"`
}

var stdlibFuncs = map[string]func() *soil.FuncDef{
	"shift_left1":     stdlib.ShiftLeft1,
	"shift_right1":    stdlib.ShiftRight1,
	"is_empty":        stdlib.IsEmpty,
	"ends_with_zero":  stdlib.EndsWithZero,
	"mul":             stdlib.Mul,
	"add":             stdlib.Add,
	"twos_complement": stdlib.TwosComplement,
	"zero_padding32":  stdlib.ZeroPadding32,
	"sub32":           stdlib.Sub32,
}

func loadProgram(data []byte) (*soil.Builder, error) {
	var pf programFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing program file: %w", err)
	}

	b := soil.NewBuilder()
	for _, ff := range pf.Functions {
		if ff.Stdlib != "" {
			ctor, ok := stdlibFuncs[ff.Stdlib]
			if !ok {
				return nil, fmt.Errorf("unknown stdlib function %q", ff.Stdlib)
			}
			b.AddFunc(ctor())
			continue
		}

		f := soil.NewFuncDef(ff.Name, ff.Argc, ff.Localc, ff.Retc)
		body, err := decodeInstructions(ff.Body)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", ff.Name, err)
		}
		f.SetBody(body)
		b.AddFunc(f)
	}
	return b, nil
}

func decodeInstructions(in []instFile) ([]soil.Instruction, error) {
	out := make([]soil.Instruction, 0, len(in))
	for _, i := range in {
		inst, err := decodeInstruction(i)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func decodeInstruction(i instFile) (soil.Instruction, error) {
	switch i.Op {
	case "raw":
		return soil.Raw{Text: i.Text}, nil
	case "push_val":
		slot, err := decodeSlot(i)
		if err != nil {
			return nil, err
		}
		return soil.PushVal{Slot: slot}, nil
	case "push_const":
		return soil.PushConst{Literal: i.Literal}, nil
	case "call":
		return &soil.Call{Callee: i.Callee}, nil
	case "store":
		slot, err := decodeSlot(i)
		if err != nil {
			return nil, err
		}
		return soil.Store{Slot: slot}, nil
	case "return":
		return soil.Return{}, nil
	case "cond":
		then, err := decodeInstructions(i.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeInstructions(i.Else)
		if err != nil {
			return nil, err
		}
		return &soil.Cond{Then: then, Else: els}, nil
	default:
		return nil, fmt.Errorf("unknown instruction op %q", i.Op)
	}
}

func decodeSlot(i instFile) (soil.Slot, error) {
	switch i.Kind {
	case "arg":
		return soil.Arg(i.Index), nil
	case "local":
		return soil.Local(i.Index), nil
	default:
		return soil.Slot{}, fmt.Errorf("slot kind must be \"arg\" or \"local\", got %q", i.Kind)
	}
}
