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

// Package stdlib provides a small library of FuncDef constructors for
// binary-string arithmetic, transcribed from the sed fragments of the
// original embedded helper library (shift, add, subtract, two's
// complement, zero-padding). A front-end wires whichever of these a
// program actually calls into its own soil.Builder with AddFunc; the
// core package carries no knowledge of this library's existence.
package stdlib

import "github.com/soil-lang/soilc"

// ShiftLeft1 appends a "0" bit to a binary string: shift_left1(a) = a+"0".
func ShiftLeft1() *soil.FuncDef {
	f := soil.NewFuncDef("shift_left1", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/\(~[^~|;\n]*\)/\10;/`},
	})
	return f
}

// ShiftRight1 drops the trailing bit of a binary string.
func ShiftRight1() *soil.FuncDef {
	f := soil.NewFuncDef("shift_right1", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/\(~[^~|;\n]*\)[01]/\1;/`},
	})
	return f
}

// IsEmpty returns "1" if its argument is the empty string, else "0".
func IsEmpty() *soil.FuncDef {
	f := soil.NewFuncDef("is_empty", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/~\n/T\n/`},
		soil.Raw{Text: `s/~.*\n/F\n/`},
		soil.Raw{Text: `s/T/~1;/`},
		soil.Raw{Text: `s/F/~0;/`},
	})
	return f
}

// EndsWithZero returns "1" if the argument's last bit is 0, else "0".
func EndsWithZero() *soil.FuncDef {
	f := soil.NewFuncDef("ends_with_zero", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/.*0\n/~1;\n/`},
		soil.Raw{Text: `s/.*1\n/~0;\n/`},
	})
	return f
}

// Mul multiplies two binary strings via the classic shift-and-add
// construction: mul(a,b) = 0 if b is empty, mul(shift_left1(a),
// shift_right1(b)) if b ends in 0, else that plus a.
func Mul() *soil.FuncDef {
	f := soil.NewFuncDef("mul", 2, 1, 1)
	f.SetBody([]soil.Instruction{
		soil.PushVal{Slot: soil.Arg(1)},
		&soil.Call{Callee: "is_empty"},
		&soil.Cond{
			Then: []soil.Instruction{
				soil.PushConst{Literal: "0"},
				soil.Store{Slot: soil.Local(0)},
			},
			Else: []soil.Instruction{
				soil.PushVal{Slot: soil.Arg(1)},
				&soil.Call{Callee: "ends_with_zero"},
				&soil.Cond{
					Then: []soil.Instruction{
						soil.PushVal{Slot: soil.Arg(0)},
						&soil.Call{Callee: "shift_left1"},
						soil.PushVal{Slot: soil.Arg(1)},
						&soil.Call{Callee: "shift_right1"},
						&soil.Call{Callee: "mul"},
						soil.Store{Slot: soil.Local(0)},
					},
					Else: []soil.Instruction{
						soil.PushVal{Slot: soil.Arg(0)},
						&soil.Call{Callee: "shift_left1"},
						soil.PushVal{Slot: soil.Arg(1)},
						&soil.Call{Callee: "shift_right1"},
						&soil.Call{Callee: "mul"},
						soil.PushVal{Slot: soil.Arg(0)},
						&soil.Call{Callee: "add"},
						soil.Store{Slot: soil.Local(0)},
					},
				},
			},
		},
		soil.PushVal{Slot: soil.Local(0)},
		soil.Return{},
	})
	return f
}

// Add adds two binary strings via a bit-serial ripple-carry automaton
// that walks both operands from the least significant bit, threading a
// carry bit through the "add <carry><a-bit><b-bit>;..." state machine
// until both inputs are consumed.
func Add() *soil.FuncDef {
	f := soil.NewFuncDef("add", 2, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: "# convert the two arguments into addloop's working form"},
		soil.Raw{Text: `s/~\([^~|;\n]*\)~\([^~|;\n]*\)/add 0;;\1;\2;/`},
		soil.Raw{Text: "b addloop"},
		soil.Raw{Text: ":addloop"},
		soil.Raw{Text: `s/add 1;\([01]*\);;;/1\1/`},
		soil.Raw{Text: `s/add 0;\([01]*\);;;/\1/`},
		soil.Raw{Text: `s/add \([01]\);\([01]*\);\([01]*\);;/add \1;\2;\3;0;/`},
		soil.Raw{Text: `s/add \([01]\);\([01]*\);;\([01]*\);/add \1;\2;0;\3;/`},
		soil.Raw{Text: `s/add \([01]\);\([01]*\);\([01]*\)\([01]\);\([01]*\)\([01]\);/add \1\4\6;\2;\3;\5;/`},
		soil.Raw{Text: `s/add 000;\([01]*\);\([01]*\);\([01]*\);/add 0;0\1;\2;\3;/`},
		soil.Raw{Text: `s/add 001;\([01]*\);\([01]*\);\([01]*\);/add 0;1\1;\2;\3;/`},
		soil.Raw{Text: `s/add 010;\([01]*\);\([01]*\);\([01]*\);/add 0;1\1;\2;\3;/`},
		soil.Raw{Text: `s/add 011;\([01]*\);\([01]*\);\([01]*\);/add 1;0\1;\2;\3;/`},
		soil.Raw{Text: `s/add 100;\([01]*\);\([01]*\);\([01]*\);/add 0;1\1;\2;\3;/`},
		soil.Raw{Text: `s/add 101;\([01]*\);\([01]*\);\([01]*\);/add 1;0\1;\2;\3;/`},
		soil.Raw{Text: `s/add 110;\([01]*\);\([01]*\);\([01]*\);/add 1;0\1;\2;\3;/`},
		soil.Raw{Text: `s/add 111;\([01]*\);\([01]*\);\([01]*\);/add 1;1\1;\2;\3;/`},
		soil.Raw{Text: "t addloop"},
		soil.Raw{Text: `s/\(.*\)\n/~\1;\n/`},
	})
	return f
}

// TwosComplement negates a binary string by bit-flipping and adding one.
func TwosComplement() *soil.FuncDef {
	f := soil.NewFuncDef("twos_complement", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/~\([^~|;\n]*\)/\1/`},
		soil.Raw{Text: "y/01/10/"},
		soil.Raw{Text: `s/\n/+\n/`},
		soil.Raw{Text: ":add_one_loop"},
		soil.Raw{Text: `s/0+\n/1\n/`},
		soil.Raw{Text: "t add_one_done"},
		soil.Raw{Text: `s/1+\n/+0\n/`},
		soil.Raw{Text: "b add_one_loop"},
		soil.Raw{Text: ":add_one_done"},
		soil.Raw{Text: `s/^\+/1/`},
		soil.Raw{Text: `s/\(.*\)\n/~\1;\n/`},
	})
	return f
}

// ZeroPadding32 left-pads a binary string with zeros to exactly 32 bits,
// truncating from the left if it is already longer.
func ZeroPadding32() *soil.FuncDef {
	f := soil.NewFuncDef("zero_padding32", 1, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.Raw{Text: `s/~\([^~|;\n]*\)/\1/`},
		soil.Raw{Text: "s/^/00000000000000000000000000000000/"},
		soil.Raw{Text: `s/.*\(................................\)\n/~\1;\n/`},
	})
	return f
}

// Sub32 subtracts two 32-bit-padded binary strings via two's complement:
// sub32(a,b) = zero_padding32(add(zero_padding32(a), twos_complement(zero_padding32(b)))).
func Sub32() *soil.FuncDef {
	f := soil.NewFuncDef("sub32", 2, 0, 1)
	f.SetBody([]soil.Instruction{
		soil.PushVal{Slot: soil.Arg(0)},
		&soil.Call{Callee: "zero_padding32"},
		soil.PushVal{Slot: soil.Arg(1)},
		&soil.Call{Callee: "zero_padding32"},
		&soil.Call{Callee: "twos_complement"},
		&soil.Call{Callee: "add"},
		&soil.Call{Callee: "zero_padding32"},
		soil.Return{},
	})
	return f
}
