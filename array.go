package glee

import (
	"fmt"
)

// Array represents a named array of symbolic bytes.
type Array struct {
	ID   uint64 // unique id
	Name string // symbolic input name
	Size uint   // width, in bytes
}

// NewArray returns a new Array of the given size.
func NewArray(id uint64, name string, size uint) *Array {
	return &Array{
		ID:   id,
		Name: name,
		Size: size,
	}
}

// String returns a string representation of the array.
func (a *Array) String() string {
	if a.Name != "" {
		return fmt.Sprintf("(array #%d %s %d)", a.ID, a.Name, a.Size)
	}
	return fmt.Sprintf("(array #%d %d)", a.ID, a.Size)
}

// Select reads a width-bit value from the array at offset. Widths that are
// not a whole number of bytes read the covering bytes and keep the low bits.
func (a *Array) Select(offset Expr, width uint, isLittleEndian bool) Expr {
	assert(width > 0 && width <= MaxWidth, "select: invalid width: %d", width)

	offset = NewCastExpr(offset, Width64, false)

	// Handle read byte-by-byte.
	var result Expr
	for i, n := uint64(0), uint64(minBytes(width)); i != n; i++ {
		byteOffset := i
		if !isLittleEndian {
			byteOffset = (n - i - 1)
		}

		value := a.selectByte(NewBinaryExpr(ADD, offset, NewConstantExpr64(byteOffset)))
		if i == 0 {
			result = value
		} else {
			result = NewConcatExpr(value, result)
		}
	}
	return NewExtractExpr(result, 0, width)
}

// selectByte reads a single byte from the array.
func (a *Array) selectByte(index Expr) Expr {
	assert(ExprWidth(index) == Width64, "selectByte: invalid array index width: %d", ExprWidth(index))
	if index, ok := index.(*ConstantExpr); ok {
		assert(index.Value < uint64(a.Size), "selectByte: index out of bounds: %d >= %d", index.Value, a.Size)
	}
	return NewReadExpr(a, index)
}

// CompareArray returns an integer comparing two arrays.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareArray(a, b *Array) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if cmp := compareUint(a.ID, b.ID); cmp != 0 {
		return cmp
	} else if cmp := compareUint(uint64(a.Size), uint64(b.Size)); cmp != 0 {
		return cmp
	} else if a.Name < b.Name {
		return -1
	} else if a.Name > b.Name {
		return 1
	}
	return 0
}
