package ir

import (
	"bytes"
	"fmt"
)

// Type represents an IR type descriptor.
type Type interface {
	String() string
	typ()
}

func (*IntType) typ()        {}
func (*PointerType) typ()    {}
func (*FloatType) typ()      {}
func (*StructType) typ()     {}
func (*SequentialType) typ() {}

// IntType represents an integer type of a fixed bit width.
type IntType struct {
	Width uint
}

// Int returns an integer type with the given width.
func Int(width uint) *IntType {
	return &IntType{Width: width}
}

// Common integer types.
var (
	I1  = Int(1)
	I8  = Int(8)
	I16 = Int(16)
	I32 = Int(32)
	I64 = Int(64)
)

// String returns the string representation of the type.
func (t *IntType) String() string { return fmt.Sprintf("i%d", t.Width) }

// PointerType represents an opaque pointer. Its width is a property of the
// target, not of the type.
type PointerType struct{}

// Ptr is the shared pointer type.
var Ptr = &PointerType{}

// String returns the string representation of the type.
func (t *PointerType) String() string { return "ptr" }

// FloatFormat represents an IEEE-754 binary interchange format.
type FloatFormat int

// Supported floating-point formats.
const (
	Float  FloatFormat = 32
	Double FloatFormat = 64
)

// Bits returns the storage width of the format.
func (f FloatFormat) Bits() uint { return uint(f) }

// String returns the IR name of the format.
func (f FloatFormat) String() string {
	switch f {
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("FloatFormat<%d>", int(f))
	}
}

// FloatType represents a floating-point type.
type FloatType struct {
	Format FloatFormat
}

// Common floating-point types.
var (
	F32 = &FloatType{Format: Float}
	F64 = &FloatType{Format: Double}
)

// String returns the string representation of the type.
func (t *FloatType) String() string { return t.Format.String() }

// StructType represents an aggregate of ordered fields.
type StructType struct {
	Fields []Type
	Packed bool
}

// Struct returns a non-packed struct type with the given fields.
func Struct(fields ...Type) *StructType {
	return &StructType{Fields: fields}
}

// String returns the string representation of the type.
func (t *StructType) String() string {
	var buf bytes.Buffer
	if t.Packed {
		buf.WriteByte('<')
	}
	buf.WriteByte('{')
	for i, f := range t.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.String())
	}
	buf.WriteByte('}')
	if t.Packed {
		buf.WriteByte('>')
	}
	return buf.String()
}

// Unbounded is the length of a sequential type with no fixed element count.
const Unbounded = -1

// SequentialType represents an array, vector, or the pointee sequence
// stepped over by the first index of an element-pointer path.
type SequentialType struct {
	Elem Type
	Len  int64
}

// Array returns a sequential type of n elements.
func Array(elem Type, n int64) *SequentialType {
	return &SequentialType{Elem: elem, Len: n}
}

// Seq returns an unbounded sequential type.
func Seq(elem Type) *SequentialType {
	return &SequentialType{Elem: elem, Len: Unbounded}
}

// String returns the string representation of the type.
func (t *SequentialType) String() string {
	if t.Len == Unbounded {
		return fmt.Sprintf("[? x %s]", t.Elem)
	}
	return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
}

// IsInteger returns true if t is an integer type.
func IsInteger(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// IsFloat returns true if t is a floating-point type.
func IsFloat(t Type) bool {
	_, ok := t.(*FloatType)
	return ok
}

// IsPointer returns true if t is a pointer type.
func IsPointer(t Type) bool {
	_, ok := t.(*PointerType)
	return ok
}
