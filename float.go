package glee

import (
	"fmt"
	"math"
	"math/big"

	"github.com/gleevm/glee/ir"
)

// FloatExpr represents a symbolic IEEE-754 floating-point expression.
//
// All arithmetic rounds to nearest, ties to even. It is the only rounding
// mode constant expressions are evaluated under.
type FloatExpr interface {
	Value
	floatExpr()
}

func (*FConstantExpr) value() {}
func (*FBinaryExpr) value()   {}
func (*FConvertExpr) value()  {}
func (*IToFExpr) value()      {}
func (*FFromBitsExpr) value() {}
func (*FIteExpr) value()      {}

func (*FConstantExpr) floatExpr() {}
func (*FBinaryExpr) floatExpr()   {}
func (*FConvertExpr) floatExpr()  {}
func (*IToFExpr) floatExpr()      {}
func (*FFromBitsExpr) floatExpr() {}
func (*FIteExpr) floatExpr()      {}

// RoundingMode is the rounding applied by every float operation.
const RoundingMode = big.ToNearestEven

// FloatExprFormat returns the format of the expression.
func FloatExprFormat(expr FloatExpr) ir.FloatFormat {
	switch expr := expr.(type) {
	case *FConstantExpr:
		return expr.Format
	case *FBinaryExpr:
		return FloatExprFormat(expr.LHS)
	case *FConvertExpr:
		return expr.Format
	case *IToFExpr:
		return expr.Format
	case *FFromBitsExpr:
		return expr.Format
	case *FIteExpr:
		return FloatExprFormat(expr.Then)
	default:
		panic(fmt.Sprintf("glee.FloatExprFormat: unexpected expression: %T", expr))
	}
}

func validFormat(f ir.FloatFormat) bool {
	return f == ir.Float || f == ir.Double
}

// FConstantExpr represents a concrete floating-point value by its bit pattern.
type FConstantExpr struct {
	Bits   uint64
	Format ir.FloatFormat
}

// NewFConstantExpr returns a constant of the given format from its bits.
func NewFConstantExpr(bits uint64, format ir.FloatFormat) *FConstantExpr {
	assert(validFormat(format), "float constant: invalid format: %s", format)
	return &FConstantExpr{Bits: bits & bitmask(format.Bits()), Format: format}
}

// NewFloat32Expr returns a single precision constant.
func NewFloat32Expr(v float32) *FConstantExpr {
	return &FConstantExpr{Bits: uint64(math.Float32bits(v)), Format: ir.Float}
}

// NewFloat64Expr returns a double precision constant.
func NewFloat64Expr(v float64) *FConstantExpr {
	return &FConstantExpr{Bits: math.Float64bits(v), Format: ir.Double}
}

// String returns the string representation of the expression.
func (e *FConstantExpr) String() string {
	return fmt.Sprintf("(fconst %g %s)", e.Float64(), e.Format)
}

// Float32 returns the value as a float32. Panics if the format is not single precision.
func (e *FConstantExpr) Float32() float32 {
	assert(e.Format == ir.Float, "Float32: format is %s", e.Format)
	return math.Float32frombits(uint32(e.Bits))
}

// Float64 returns the value widened to a float64. Widening is exact.
func (e *FConstantExpr) Float64() float64 {
	if e.Format == ir.Float {
		return float64(math.Float32frombits(uint32(e.Bits)))
	}
	return math.Float64frombits(e.Bits)
}

// IsNaN returns true if the value is a NaN.
func (e *FConstantExpr) IsNaN() bool {
	return math.IsNaN(e.Float64())
}

// Compare evaluates pred on e and other. Ordered predicates are false if
// either side is NaN; unordered predicates are true.
func (e *FConstantExpr) Compare(pred ir.FCmpPred, other *FConstantExpr) bool {
	a, b := e.Float64(), other.Float64()
	unordered := math.IsNaN(a) || math.IsNaN(b)

	switch pred {
	case ir.FCmpOEQ:
		return a == b
	case ir.FCmpOGT:
		return a > b
	case ir.FCmpOGE:
		return a >= b
	case ir.FCmpOLT:
		return a < b
	case ir.FCmpOLE:
		return a <= b
	case ir.FCmpONE:
		return !unordered && a != b
	case ir.FCmpORD:
		return !unordered
	case ir.FCmpUNO:
		return unordered
	case ir.FCmpUEQ:
		return unordered || a == b
	case ir.FCmpUGT:
		return unordered || a > b
	case ir.FCmpUGE:
		return unordered || a >= b
	case ir.FCmpULT:
		return unordered || a < b
	case ir.FCmpULE:
		return unordered || a <= b
	case ir.FCmpUNE:
		return a != b
	default:
		panic(fmt.Sprintf("fcmp: invalid predicate: %s", pred))
	}
}

// Convert returns e rounded to format.
func (e *FConstantExpr) Convert(format ir.FloatFormat) *FConstantExpr {
	if e.Format == format {
		return e
	} else if format == ir.Float {
		return NewFloat32Expr(float32(e.Float64()))
	}
	return NewFloat64Expr(e.Float64())
}

// ToUnsigned converts e to a width-bit unsigned integer. The value is rounded
// to the nearest integer, saturated to the range of the result and NaN
// converts to zero.
func (e *FConstantExpr) ToUnsigned(width uint) *ConstantExpr {
	f := math.RoundToEven(e.Float64())
	switch {
	case math.IsNaN(f), f <= 0:
		return NewConstantExpr(0, width)
	case f >= math.Ldexp(1, int(width)):
		return NewConstantExpr(0, width).Not()
	case width > Width64:
		i, _ := big.NewFloat(f).Int(nil)
		return NewBigConstantExpr(i, width)
	default:
		return NewConstantExpr(uint64(f), width)
	}
}

// ToSigned converts e to a width-bit signed integer with the same rounding
// and saturation rules as ToUnsigned.
func (e *FConstantExpr) ToSigned(width uint) *ConstantExpr {
	f := math.RoundToEven(e.Float64())
	limit := math.Ldexp(1, int(width)-1)
	switch {
	case math.IsNaN(f):
		return NewConstantExpr(0, width)
	case f >= limit:
		return NewConstantExpr(0, width).Not().LShr(NewConstantExpr(1, width))
	case f < -limit, math.IsInf(f, -1):
		return NewConstantExpr(1, width).Shl(NewConstantExpr(uint64(width-1), width))
	case width > Width64:
		i, _ := big.NewFloat(f).Int(nil)
		return NewBigConstantExpr(i, width)
	default:
		return NewConstantExpr(uint64(int64(f)), width)
	}
}

// binary applies op to e and other in e's format.
func (e *FConstantExpr) binary(op FBinaryOp, other *FConstantExpr) *FConstantExpr {
	assert(e.Format == other.Format, "%s: format mismatch: %s != %s", op, e.Format, other.Format)

	if e.Format == ir.Float {
		a, b := e.Float32(), other.Float32()
		var v float32
		switch op {
		case FADD:
			v = a + b
		case FSUB:
			v = a - b
		case FMUL:
			v = a * b
		case FDIV:
			v = a / b
		case FREM:
			// fmod is exact so computing it wide loses nothing.
			v = float32(math.Mod(float64(a), float64(b)))
		default:
			panic(fmt.Sprintf("invalid float op: %s", op))
		}
		return NewFloat32Expr(v)
	}

	a, b := e.Float64(), other.Float64()
	var v float64
	switch op {
	case FADD:
		v = a + b
	case FSUB:
		v = a - b
	case FMUL:
		v = a * b
	case FDIV:
		v = a / b
	case FREM:
		v = math.Mod(a, b)
	default:
		panic(fmt.Sprintf("invalid float op: %s", op))
	}
	return NewFloat64Expr(v)
}

// FBinaryOp represents a floating-point arithmetic operation.
type FBinaryOp int

// FBinaryExpr operations.
const (
	float_op_begin = FBinaryOp(iota)
	FADD
	FSUB
	FMUL
	FDIV
	FREM
	float_op_end
)

var fbinaryOps = [...]string{
	FADD: "fadd",
	FSUB: "fsub",
	FMUL: "fmul",
	FDIV: "fdiv",
	FREM: "frem",
}

// String returns the string representation of the operation.
func (op FBinaryOp) String() string {
	if op > float_op_begin && op < float_op_end {
		return fbinaryOps[op]
	}
	return fmt.Sprintf("FBinaryOp<%d>", op)
}

// FBinaryExpr represents an arithmetic operation on two floating-point values.
type FBinaryExpr struct {
	Op  FBinaryOp
	LHS FloatExpr
	RHS FloatExpr
}

// NewFBinaryExpr returns an expression for op applied to lhs & rhs. Only
// constant operands are folded: algebraic identities do not hold under IEEE
// arithmetic.
func NewFBinaryExpr(op FBinaryOp, lhs, rhs FloatExpr) FloatExpr {
	assert(op > float_op_begin && op < float_op_end, "invalid float op: %s", op)
	assert(FloatExprFormat(lhs) == FloatExprFormat(rhs), "%s: format mismatch: %s != %s", op, FloatExprFormat(lhs), FloatExprFormat(rhs))

	if lhs, ok := lhs.(*FConstantExpr); ok {
		if rhs, ok := rhs.(*FConstantExpr); ok {
			return lhs.binary(op, rhs)
		}
	}
	return &FBinaryExpr{Op: op, LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *FBinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
}

// FConvertExpr converts a floating-point value to another format.
type FConvertExpr struct {
	Src    FloatExpr
	Format ir.FloatFormat
}

// NewFConvertExpr returns src converted to format. Widening is exact and
// narrowing rounds.
func NewFConvertExpr(src FloatExpr, format ir.FloatFormat) FloatExpr {
	assert(validFormat(format), "fconvert: invalid format: %s", format)

	if FloatExprFormat(src) == format {
		return src
	}
	switch src := src.(type) {
	case *FConstantExpr:
		return src.Convert(format)
	case *FConvertExpr:
		// Widening then narrowing back is the identity.
		if FloatExprFormat(src.Src) == format && format.Bits() < src.Format.Bits() {
			return src.Src
		}
	}
	return &FConvertExpr{Src: src, Format: format}
}

// String returns the string representation of the expression.
func (e *FConvertExpr) String() string {
	return fmt.Sprintf("(fconvert %s %s)", e.Src, e.Format)
}

// IToFExpr converts an integer to a floating-point value.
type IToFExpr struct {
	Src    Expr
	Format ir.FloatFormat
	Signed bool
}

// NewIToFExpr returns src converted to format, treating src as signed or
// unsigned. Inexact results round to nearest, ties to even.
func NewIToFExpr(src Expr, format ir.FloatFormat, signed bool) FloatExpr {
	assert(validFormat(format), "itof: invalid format: %s", format)

	if src, ok := src.(*ConstantExpr); ok {
		f := new(big.Float).SetMode(RoundingMode).SetPrec(mantissaBits(format))
		if signed {
			f.SetInt(src.SignedBig())
		} else {
			f.SetInt(src.Big())
		}
		if format == ir.Float {
			v, _ := f.Float32()
			return NewFloat32Expr(v)
		}
		v, _ := f.Float64()
		return NewFloat64Expr(v)
	}
	return &IToFExpr{Src: src, Format: format, Signed: signed}
}

// mantissaBits returns the significand precision of format, including the
// implicit leading bit.
func mantissaBits(format ir.FloatFormat) uint {
	if format == ir.Float {
		return 24
	}
	return 53
}

// String returns the string representation of the expression.
func (e *IToFExpr) String() string {
	if e.Signed {
		return fmt.Sprintf("(sitofp %s %s)", e.Src, e.Format)
	}
	return fmt.Sprintf("(uitofp %s %s)", e.Src, e.Format)
}

// FFromBitsExpr reinterprets the bits of an integer as a floating-point value.
type FFromBitsExpr struct {
	Src    Expr
	Format ir.FloatFormat
}

// NewFFromBitsExpr returns the float whose bit pattern is src. The width of
// src must match the format.
func NewFFromBitsExpr(src Expr, format ir.FloatFormat) FloatExpr {
	assert(validFormat(format), "ffrombits: invalid format: %s", format)
	assert(ExprWidth(src) == format.Bits(), "ffrombits: width mismatch: %d != %d", ExprWidth(src), format.Bits())

	switch src := src.(type) {
	case *ConstantExpr:
		return NewFConstantExpr(src.Value, format)
	case *FBitsExpr:
		return src.Src
	}
	return &FFromBitsExpr{Src: src, Format: format}
}

// String returns the string representation of the expression.
func (e *FFromBitsExpr) String() string {
	return fmt.Sprintf("(ffrombits %s %s)", e.Src, e.Format)
}

// FIteExpr chooses Then when Cond is true and Else otherwise.
type FIteExpr struct {
	Cond Expr
	Then FloatExpr
	Else FloatExpr
}

// NewFIteExpr returns an if-then-else expression over floating-point values.
func NewFIteExpr(cond Expr, then, els FloatExpr) FloatExpr {
	assert(ExprWidth(cond) == WidthBool, "fite: condition must be boolean: width=%d", ExprWidth(cond))
	assert(FloatExprFormat(then) == FloatExprFormat(els), "fite: format mismatch: %s != %s", FloatExprFormat(then), FloatExprFormat(els))

	if cond, ok := cond.(*ConstantExpr); ok {
		if cond.IsTrue() {
			return then
		}
		return els
	} else if CompareValue(then, els) == 0 {
		return then
	}
	return &FIteExpr{Cond: cond, Then: then, Else: els}
}

// String returns the string representation of the expression.
func (e *FIteExpr) String() string {
	return fmt.Sprintf("(fite %s %s %s)", e.Cond, e.Then, e.Else)
}
