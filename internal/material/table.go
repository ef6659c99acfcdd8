package material

// Table assigns 1-based indices to material names in first-seen order.
// Create one per export; a Table is not safe for concurrent use.
type Table struct {
	names []string
	index map[string]uint32
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]uint32)}
}

// Resolve returns the index for name, allocating the next one on first use.
// The empty name means "no material" and resolves to 0 without using a slot.
func (t *Table) Resolve(name string) uint32 {
	if name == "" {
		return 0
	}
	if idx, ok := t.index[name]; ok {
		return idx
	}
	t.names = append(t.names, name)
	idx := uint32(len(t.names))
	t.index[name] = idx
	return idx
}

// Lookup returns the index already allocated for name, if any.
func (t *Table) Lookup(name string) (uint32, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Names returns the allocated names ordered by index: Names()[i] has index i+1.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of allocated indices.
func (t *Table) Len() int {
	return len(t.names)
}
