package soil

import "testing"

// buildThreeFuncProgram returns a small program with a non-"entry"
// function defined first, exercising entry hoist, and a nested Cond so
// call-site and conditional numbering both have more than one id to
// assign.
func buildThreeFuncProgram() *Builder {
	helper := NewFuncDef("helper", 1, 0, 1)
	helper.SetBody([]Instruction{
		Raw{Text: "noop"},
		Return{},
	})

	other := NewFuncDef("other", 0, 0, 0)
	other.SetBody([]Instruction{
		&Call{Callee: "helper"},
	})

	entry := NewFuncDef("entry", 0, 1, 0)
	entry.SetBody([]Instruction{
		&Call{Callee: "helper"},
		&Cond{
			Then: []Instruction{
				&Call{Callee: "other"},
				&Cond{
					Then: []Instruction{&Call{Callee: "helper"}},
					Else: []Instruction{},
				},
			},
			Else: []Instruction{&Call{Callee: "other"}},
		},
	})

	return NewBuilder().AddFunc(helper).AddFunc(other).AddFunc(entry)
}

func TestAssembleEntryHoisting(t *testing.T) {
	ab := buildThreeFuncProgram().Assemble()
	table := ab.FuncTable()
	if table[0].Name != "entry" {
		t.Fatalf("want entry hoisted to index 0, got %q", table[0].Name)
	}
}

func TestAssembleFunctionIDStability(t *testing.T) {
	ab := buildThreeFuncProgram().Assemble()
	for i, f := range ab.FuncTable() {
		if f.ID != i {
			t.Fatalf("function %q: want id %d, got %d", f.Name, i, f.ID)
		}
	}
}

func TestAssembleCallSiteUniqueness(t *testing.T) {
	ab := buildThreeFuncProgram().Assemble()
	seen := map[int]bool{}
	for _, f := range ab.FuncTable() {
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Call); ok {
				if seen[c.SiteID] {
					t.Fatalf("duplicate call-site id %d", c.SiteID)
				}
				seen[c.SiteID] = true
			}
		})
	}
	if len(seen) != 5 {
		t.Fatalf("want 5 distinct call sites, got %d", len(seen))
	}
}

func TestAssembleConditionalIDUniqueness(t *testing.T) {
	ab := buildThreeFuncProgram().Assemble()
	seen := map[int]bool{}
	for _, f := range ab.FuncTable() {
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Cond); ok {
				if seen[c.ID] {
					t.Fatalf("duplicate cond id %d", c.ID)
				}
				seen[c.ID] = true
			}
		})
	}
	if len(seen) != 2 {
		t.Fatalf("want 2 distinct cond ids, got %d", len(seen))
	}
}

func TestAssembleCallerFrameSizeConsistency(t *testing.T) {
	ab := buildThreeFuncProgram().Assemble()
	for _, f := range ab.FuncTable() {
		want := f.FixedFrameSize()
		walk(f.Body, func(inst Instruction) {
			if c, ok := inst.(*Call); ok {
				if c.CallerFrameSize != want {
					t.Fatalf("function %q: want caller frame size %d, got %d", f.Name, want, c.CallerFrameSize)
				}
			}
		})
	}
}

func TestAssembleNoEntryLeavesOrderUnchanged(t *testing.T) {
	a := NewFuncDef("a", 0, 0, 0)
	a.SetBody([]Instruction{Raw{Text: "x"}})
	b := NewFuncDef("b", 0, 0, 0)
	b.SetBody([]Instruction{Raw{Text: "y"}})

	ab := NewBuilder().AddFunc(a).AddFunc(b).Assemble()
	table := ab.FuncTable()
	if table[0].Name != "a" || table[1].Name != "b" {
		t.Fatalf("want order [a b] preserved when no entry exists, got [%s %s]", table[0].Name, table[1].Name)
	}
}
