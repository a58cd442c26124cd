package ir

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
)

// Constant represents a node of a constant expression. Nodes are immutable
// and may be shared between several parents.
type Constant interface {
	Type() Type
	Operands() []Constant
	String() string
	constant()
}

func (*IntConst) constant()   {}
func (*FloatConst) constant() {}
func (*Null) constant()       {}
func (*Undef) constant()      {}
func (*Global) constant()     {}
func (*Symbol) constant()     {}
func (*CastExpr) constant()   {}
func (*BinaryExpr) constant() {}
func (*ICmpExpr) constant()   {}
func (*FCmpExpr) constant()   {}
func (*SelectExpr) constant() {}
func (*GEPExpr) constant()    {}

// IntConst represents an integer literal. Value holds the low 64 bits and
// Hi the words above them, least significant first. Hi is nil for types of
// 64 bits or fewer. Bits above the type width are zero.
type IntConst struct {
	Typ   *IntType
	Value uint64
	Hi    []uint64
}

// NewInt returns an integer literal of type t holding v sign-extended or
// truncated to the type width.
func NewInt(t *IntType, v int64) *IntConst {
	if t.Width > 64 {
		return NewBigInt(t, big.NewInt(v))
	}
	value := uint64(v)
	if t.Width < 64 {
		value &= (uint64(1) << t.Width) - 1
	}
	return &IntConst{Typ: t, Value: value}
}

// NewBigInt returns an integer literal of type t holding v modulo 2^width.
// Negative values are taken in two's complement.
func NewBigInt(t *IntType, v *big.Int) *IntConst {
	mask := new(big.Int).Lsh(big.NewInt(1), t.Width)
	x := new(big.Int).And(v, mask.Sub(mask, big.NewInt(1)))

	words := make([]uint64, (t.Width+63)/64)
	word := new(big.Int)
	for i := range words {
		words[i] = word.And(x, maxUint64).Uint64()
		x.Rsh(x, 64)
	}

	c := &IntConst{Typ: t}
	if len(words) > 0 {
		c.Value = words[0]
	}
	if len(words) > 1 {
		c.Hi = words[1:]
	}
	return c
}

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Big returns the unsigned value of the literal.
func (c *IntConst) Big() *big.Int {
	x := new(big.Int)
	for i := len(c.Hi) - 1; i >= 0; i-- {
		x.Lsh(x, 64).Or(x, new(big.Int).SetUint64(c.Hi[i]))
	}
	return x.Lsh(x, 64).Or(x, new(big.Int).SetUint64(c.Value))
}

func (c *IntConst) Type() Type           { return c.Typ }
func (c *IntConst) Operands() []Constant { return nil }

func (c *IntConst) String() string {
	if c.Hi != nil {
		return fmt.Sprintf("%s %s", c.Typ, c.Big())
	}
	return fmt.Sprintf("%s %d", c.Typ, c.Value)
}

// FloatConst represents a floating-point literal by its IEEE bit pattern.
type FloatConst struct {
	Typ  *FloatType
	Bits uint64
}

// NewFloat returns a floating-point literal of type t holding v rounded to its format.
func NewFloat(t *FloatType, v float64) *FloatConst {
	if t.Format == Float {
		return &FloatConst{Typ: t, Bits: uint64(math.Float32bits(float32(v)))}
	}
	return &FloatConst{Typ: t, Bits: math.Float64bits(v)}
}

func (c *FloatConst) Type() Type           { return c.Typ }
func (c *FloatConst) Operands() []Constant { return nil }

func (c *FloatConst) String() string {
	if c.Typ.Format == Float {
		return fmt.Sprintf("%s %g", c.Typ, math.Float32frombits(uint32(c.Bits)))
	}
	return fmt.Sprintf("%s %g", c.Typ, math.Float64frombits(c.Bits))
}

// Null represents the null value of a pointer or the zero value of any scalar.
type Null struct {
	Typ Type
}

func (c *Null) Type() Type           { return c.Typ }
func (c *Null) Operands() []Constant { return nil }
func (c *Null) String() string       { return fmt.Sprintf("%s null", c.Typ) }

// Undef represents an unspecified value. It evaluates to zero.
type Undef struct {
	Typ Type
}

func (c *Undef) Type() Type           { return c.Typ }
func (c *Undef) Operands() []Constant { return nil }
func (c *Undef) String() string       { return fmt.Sprintf("%s undef", c.Typ) }

// Global represents the address of a named global variable or function.
type Global struct {
	Name string
}

func (c *Global) Type() Type           { return Ptr }
func (c *Global) Operands() []Constant { return nil }
func (c *Global) String() string       { return "ptr @" + c.Name }

// Symbol represents a named symbolic input of integer type.
type Symbol struct {
	Name string
	Typ  *IntType
}

func (c *Symbol) Type() Type           { return c.Typ }
func (c *Symbol) Operands() []Constant { return nil }
func (c *Symbol) String() string       { return fmt.Sprintf("%s %%%s", c.Typ, c.Name) }

// CastExpr represents a conversion of X to type To.
type CastExpr struct {
	Op CastOp
	X  Constant
	To Type
}

// NewCast returns a conversion expression.
func NewCast(op CastOp, x Constant, to Type) *CastExpr {
	return &CastExpr{Op: op, X: x, To: to}
}

func (e *CastExpr) Type() Type           { return e.To }
func (e *CastExpr) Operands() []Constant { return []Constant{e.X} }

func (e *CastExpr) String() string {
	return fmt.Sprintf("%s (%s to %s)", e.Op, e.X, e.To)
}

// BinaryExpr represents an arithmetic, bitwise, or floating-point operation.
type BinaryExpr struct {
	Op   BinaryOp
	X, Y Constant
}

// NewBinary returns a binary expression.
func NewBinary(op BinaryOp, x, y Constant) *BinaryExpr {
	return &BinaryExpr{Op: op, X: x, Y: y}
}

func (e *BinaryExpr) Type() Type           { return e.X.Type() }
func (e *BinaryExpr) Operands() []Constant { return []Constant{e.X, e.Y} }

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s (%s, %s)", e.Op, e.X, e.Y)
}

// ICmpExpr represents an integer or pointer comparison. The result is an i1.
type ICmpExpr struct {
	Pred ICmpPred
	X, Y Constant
}

// NewICmp returns an integer comparison expression.
func NewICmp(pred ICmpPred, x, y Constant) *ICmpExpr {
	return &ICmpExpr{Pred: pred, X: x, Y: y}
}

func (e *ICmpExpr) Type() Type           { return I1 }
func (e *ICmpExpr) Operands() []Constant { return []Constant{e.X, e.Y} }

func (e *ICmpExpr) String() string {
	return fmt.Sprintf("icmp %s (%s, %s)", e.Pred, e.X, e.Y)
}

// FCmpExpr represents a floating-point comparison. The result is an i1.
type FCmpExpr struct {
	Pred FCmpPred
	X, Y Constant
}

// NewFCmp returns a floating-point comparison expression.
func NewFCmp(pred FCmpPred, x, y Constant) *FCmpExpr {
	return &FCmpExpr{Pred: pred, X: x, Y: y}
}

func (e *FCmpExpr) Type() Type           { return I1 }
func (e *FCmpExpr) Operands() []Constant { return []Constant{e.X, e.Y} }

func (e *FCmpExpr) String() string {
	return fmt.Sprintf("fcmp %s (%s, %s)", e.Pred, e.X, e.Y)
}

// SelectExpr chooses X when Cond is true and Y otherwise.
type SelectExpr struct {
	Cond Constant
	X, Y Constant
}

// NewSelect returns a select expression.
func NewSelect(cond, x, y Constant) *SelectExpr {
	return &SelectExpr{Cond: cond, X: x, Y: y}
}

func (e *SelectExpr) Type() Type           { return e.X.Type() }
func (e *SelectExpr) Operands() []Constant { return []Constant{e.Cond, e.X, e.Y} }

func (e *SelectExpr) String() string {
	return fmt.Sprintf("select (%s, %s, %s)", e.Cond, e.X, e.Y)
}

// Step represents one index of an element-pointer path.
//
// Type is the aggregate being indexed. A *StructType step selects the
// constant field Field; a *SequentialType step moves Index elements.
type Step struct {
	Type  Type
	Field int
	Index Constant
}

// FieldStep returns a struct step.
func FieldStep(t *StructType, field int) Step {
	return Step{Type: t, Field: field}
}

// IndexStep returns a sequential step.
func IndexStep(t *SequentialType, index Constant) Step {
	return Step{Type: t, Index: index}
}

// GEPExpr computes an address from Base by walking Path.
type GEPExpr struct {
	Base Constant
	Path []Step
}

// NewGEP returns an element-pointer expression.
func NewGEP(base Constant, path ...Step) *GEPExpr {
	return &GEPExpr{Base: base, Path: path}
}

func (e *GEPExpr) Type() Type { return Ptr }

// Operands returns the base followed by the index of every sequential step.
func (e *GEPExpr) Operands() []Constant {
	a := []Constant{e.Base}
	for _, step := range e.Path {
		if step.Index != nil {
			a = append(a, step.Index)
		}
	}
	return a
}

func (e *GEPExpr) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "getelementptr (%s", e.Base)
	for _, step := range e.Path {
		if step.Index != nil {
			fmt.Fprintf(&buf, ", %s", step.Index)
		} else {
			fmt.Fprintf(&buf, ", field %d", step.Field)
		}
	}
	buf.WriteByte(')')
	return buf.String()
}
