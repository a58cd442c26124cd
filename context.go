package glee

import (
	"github.com/gleevm/glee/ir"
)

// Context holds the target facts a constant expression is evaluated against.
// It is built once and must not be modified while evaluations are running.
type Context struct {
	PointerWidth uint
	LittleEndian bool

	// Layout answers struct offset and element size queries.
	Layout Layout

	// Globals maps global names to addresses.
	Globals *AddressSpace

	// Symbols maps symbolic input names to the arrays backing them.
	Symbols map[string]*Array

	// Pool, if set, canonicalizes every evaluated value.
	Pool *Pool

	nextArrayID uint64
}

// NewContext returns a context for the given layout with an empty address
// space and no symbols.
func NewContext(layout *DataLayout) *Context {
	return &Context{
		PointerWidth: layout.PointerWidth,
		LittleEndian: layout.LittleEndian,
		Layout:       layout,
		Globals:      NewAddressSpace(layout.PointerWidth),
		Symbols:      make(map[string]*Array),
	}
}

// Width returns the bit width of a value of type t. Pointers take the
// context's pointer width.
func (c *Context) Width(t ir.Type) uint {
	switch t := t.(type) {
	case *ir.IntType:
		return t.Width
	case *ir.PointerType:
		return c.PointerWidth
	case *ir.FloatType:
		return t.Format.Bits()
	}
	if l, ok := c.Layout.(*DataLayout); ok {
		return l.Width(t)
	}
	panic("glee.Context.Width: aggregate type without a data layout: " + t.String())
}

// DeclareGlobal reserves storage for a global of type t, laid out by the
// context's DataLayout.
func (c *Context) DeclareGlobal(name string, t ir.Type) *Allocation {
	l, ok := c.Layout.(*DataLayout)
	assert(ok, "declare global: context has no data layout")
	return c.Globals.Alloc(name, l.AllocSize(t), l.AlignOf(t))
}

// DeclareSymbol creates the array backing a symbolic input of the given
// width. Declaring a name twice returns the existing array.
func (c *Context) DeclareSymbol(name string, width uint) *Array {
	if a, ok := c.Symbols[name]; ok {
		return a
	}
	if c.Symbols == nil {
		c.Symbols = make(map[string]*Array)
	}
	c.nextArrayID++
	a := NewArray(c.nextArrayID, name, minBytes(width))
	c.Symbols[name] = a
	return a
}
