package material

import "fmt"

// Handle refers to a material stored in a Table
type Handle uint32

// Table owns the materials of a scene. It is built once and then only
// read, so it can be shared by all render workers.
type Table struct {
	materials []Material
}

// NewTable creates an empty material table
func NewTable() *Table {
	return &Table{}
}

// Add validates m and stores it, returning its handle
func (t *Table) Add(m Material) (Handle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	t.materials = append(t.materials, m)
	return Handle(len(t.materials) - 1), nil
}

// MustAdd is like Add but panics on an invalid material.
// It is intended for built-in scenes whose parameters are constants.
func (t *Table) MustAdd(m Material) Handle {
	h, err := t.Add(m)
	if err != nil {
		panic(fmt.Sprintf("material.Table.MustAdd: %v", err))
	}
	return h
}

// Get returns the material for h. h must come from this table.
func (t *Table) Get(h Handle) Material {
	return t.materials[h]
}

// Len returns the number of stored materials
func (t *Table) Len() int {
	return len(t.materials)
}
