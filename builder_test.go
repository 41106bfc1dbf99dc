package soil

import "testing"

func TestAddFuncChaining(t *testing.T) {
	b := NewBuilder().
		AddFunc(NewFuncDef("entry", 0, 0, 0)).
		AddFunc(NewFuncDef("helper", 1, 0, 1))

	assembled := b.Assemble()
	table := assembled.FuncTable()
	if len(table) != 2 {
		t.Fatalf("want 2 functions, got %d", len(table))
	}
}

func TestGenerateUndefinedFunction(t *testing.T) {
	b := NewBuilder()
	entry := NewFuncDef("entry", 0, 0, 0)
	entry.SetBody([]Instruction{
		&Call{Callee: "bogus"},
	})
	b.AddFunc(entry)

	_, err := GenerateScript(b)
	if err == nil {
		t.Fatal("expected an error for a call to an undefined function")
	}
	uf, ok := err.(*UndefinedFunctionError)
	if !ok {
		t.Fatalf("want *UndefinedFunctionError, got %T: %v", err, err)
	}
	if uf.Name != "bogus" {
		t.Fatalf("want callee name %q, got %q", "bogus", uf.Name)
	}
}
