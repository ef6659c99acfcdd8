package material

import (
	"testing"

	"genesis-tmf/internal/tml"
)

func TestTableFirstSeenOrder(t *testing.T) {
	tbl := NewTable()
	seq := []struct {
		name string
		want uint32
	}{
		{"Red", 1},
		{"", 0},
		{"Blue", 2},
		{"Red", 1},
		{"Green", 3},
		{"Blue", 2},
		{"", 0},
	}
	for _, s := range seq {
		if got := tbl.Resolve(s.name); got != s.want {
			t.Errorf("Resolve(%q) = %d, want %d", s.name, got, s.want)
		}
	}
	if tbl.Len() != 3 {
		t.Errorf("Len = %d, want 3", tbl.Len())
	}
	names := tbl.Names()
	if len(names) != 3 || names[0] != "Red" || names[1] != "Blue" || names[2] != "Green" {
		t.Errorf("Names = %v", names)
	}
	if idx, ok := tbl.Lookup("Green"); !ok || idx != 3 {
		t.Errorf("Lookup(Green) = %d, %v", idx, ok)
	}
	if _, ok := tbl.Lookup("Purple"); ok {
		t.Error("Lookup found an unallocated name")
	}
}

func TestTablesAreIndependent(t *testing.T) {
	a, b := NewTable(), NewTable()
	a.Resolve("Red")
	a.Resolve("Blue")
	if got := b.Resolve("Blue"); got != 1 {
		t.Errorf("fresh table gave Blue index %d, want 1", got)
	}
}

func TestPositional(t *testing.T) {
	p := Positional{{Name: "Red"}, {Name: "Blue"}}
	if _, ok := p.Resolve(0); ok {
		t.Error("index 0 resolved")
	}
	if m, ok := p.Resolve(2); !ok || m.Name != "Blue" {
		t.Errorf("Resolve(2) = %v, %v", m, ok)
	}
	if _, ok := p.Resolve(3); ok {
		t.Error("out-of-range index resolved")
	}
}

func TestByName(t *testing.T) {
	// Sidecar order differs from index order.
	sidecar := []tml.Material{{Name: "Blue"}, {Name: "Red"}}
	r := NewByName([]string{"Red", "Blue", "Gone"}, sidecar)

	if m, ok := r.Resolve(1); !ok || m.Name != "Red" {
		t.Errorf("Resolve(1) = %v, %v", m, ok)
	}
	if m, ok := r.Resolve(2); !ok || m.Name != "Blue" {
		t.Errorf("Resolve(2) = %v, %v", m, ok)
	}
	if _, ok := r.Resolve(3); ok {
		t.Error("name missing from the sidecar resolved")
	}
	if _, ok := r.Resolve(0); ok {
		t.Error("index 0 resolved")
	}
}
