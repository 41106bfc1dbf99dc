package soil

import "testing"

func TestSetBodyLocalCallSiteIndexing(t *testing.T) {
	f := NewFuncDef("f", 0, 0, 0)
	count := f.SetBody([]Instruction{
		&Call{Callee: "a"},
		&Cond{
			Then: []Instruction{&Call{Callee: "b"}},
			Else: []Instruction{&Call{Callee: "c"}, &Call{Callee: "d"}},
		},
	})

	if count != 4 {
		t.Fatalf("want 4 call sites, got %d", count)
	}

	var ids []int
	walk(f.Body, func(inst Instruction) {
		if c, ok := inst.(*Call); ok {
			ids = append(ids, c.SiteID)
		}
	})
	want := []int{0, 1, 2, 3}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("call site %d: want id %d, got %d", i, want[i], id)
		}
	}
}

func TestFixedFrameSize(t *testing.T) {
	f := NewFuncDef("f", 2, 3, 1)
	if got := f.FixedFrameSize(); got != 5 {
		t.Fatalf("want fixed frame size 5, got %d", got)
	}
}

func TestWalkRecursesThenBeforeElse(t *testing.T) {
	var order []string
	body := []Instruction{
		Raw{Text: "outer"},
		&Cond{
			Then: []Instruction{Raw{Text: "then"}},
			Else: []Instruction{Raw{Text: "else"}},
		},
	}
	walk(body, func(inst Instruction) {
		switch v := inst.(type) {
		case Raw:
			order = append(order, v.Text)
		case *Cond:
			order = append(order, "cond")
		}
	})
	want := []string{"outer", "cond", "then", "else"}
	if len(order) != len(want) {
		t.Fatalf("want order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("want order %v, got %v", want, order)
		}
	}
}
