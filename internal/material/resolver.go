package material

import "genesis-tmf/internal/tml"

// Resolver turns a TMF material index into a sidecar descriptor.
// Index 0, and any index that cannot be matched, means "no material".
type Resolver interface {
	Resolve(index uint32) (*tml.Material, bool)
}

// Positional pairs index N with the sidecar's Nth material (1-based), the
// contract every existing TMF/TML pair relies on.
type Positional []tml.Material

func (p Positional) Resolve(index uint32) (*tml.Material, bool) {
	if index == 0 || uint64(index) > uint64(len(p)) {
		return nil, false
	}
	return &p[index-1], true
}

// ByName matches descriptors by the name an export session recorded for
// each index, so a reordered sidecar still binds correctly.
type ByName struct {
	names  []string
	byName map[string]*tml.Material
}

// NewByName builds a name-keyed resolver. names[i] is the material name of
// index i+1, as returned by Table.Names.
func NewByName(names []string, materials []tml.Material) *ByName {
	r := &ByName{
		names:  append([]string(nil), names...),
		byName: make(map[string]*tml.Material, len(materials)),
	}
	for i := range materials {
		if _, dup := r.byName[materials[i].Name]; !dup {
			r.byName[materials[i].Name] = &materials[i]
		}
	}
	return r
}

func (r *ByName) Resolve(index uint32) (*tml.Material, bool) {
	if index == 0 || uint64(index) > uint64(len(r.names)) {
		return nil, false
	}
	m, ok := r.byName[r.names[index-1]]
	return m, ok
}
