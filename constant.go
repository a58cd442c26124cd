package glee

import (
	"fmt"
	"math"
	"math/big"
)

// ConstantExpr represents a concrete integer of any width. Value holds the
// low 64 bits. Hi holds the words above them, least significant first, and
// is nil for widths of 64 bits or fewer. Bits above Width are always zero.
type ConstantExpr struct {
	Value uint64
	Hi    []uint64
	Width uint
}

// NewConstantExpr returns a new instance of ConstantExpr. Bits of value above
// width are discarded; wider constants are zero-extended.
func NewConstantExpr(value uint64, width uint) *ConstantExpr {
	assert(width > 0 && width <= MaxWidth, "constant: invalid width: %d", width)
	if width > Width64 {
		return &ConstantExpr{Value: value, Hi: make([]uint64, hiWords(width)), Width: width}
	}
	return &ConstantExpr{
		Value: value & bitmask(width),
		Width: width,
	}
}

// NewBigConstantExpr returns a constant holding x modulo 2^width. Negative
// values are taken in two's complement.
func NewBigConstantExpr(x *big.Int, width uint) *ConstantExpr {
	assert(width > 0 && width <= MaxWidth, "constant: invalid width: %d", width)
	m := new(big.Int).And(x, bigMask(width))

	word := new(big.Int)
	e := &ConstantExpr{Value: word.And(m, maxUint64).Uint64(), Width: width}
	if width > Width64 {
		e.Hi = make([]uint64, hiWords(width))
		for i := range e.Hi {
			m.Rsh(m, 64)
			e.Hi[i] = word.And(m, maxUint64).Uint64()
		}
	}
	return e
}

// NewConstantExpr8 returns a 8-bit constant expression.
func NewConstantExpr8(value uint64) *ConstantExpr {
	return NewConstantExpr(value, Width8)
}

// NewConstantExpr32 returns a 32-bit constant expression.
func NewConstantExpr32(value uint64) *ConstantExpr {
	return NewConstantExpr(value, Width32)
}

// NewConstantExpr64 returns a 64-bit constant expression.
func NewConstantExpr64(value uint64) *ConstantExpr {
	return NewConstantExpr(value, Width64)
}

// NewBoolConstantExpr is an ease of use function for creating constant boolean expressions.
func NewBoolConstantExpr(value bool) *ConstantExpr {
	if value {
		return &ConstantExpr{Value: 1, Width: WidthBool}
	}
	return &ConstantExpr{Value: 0, Width: WidthBool}
}

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// hiWords returns the number of words above the low 64 bits of width.
func hiWords(width uint) int {
	if width <= Width64 {
		return 0
	}
	return int((width - 1) / 64)
}

// bigMask returns 2^width - 1.
func bigMask(width uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), width)
	return m.Sub(m, big.NewInt(1))
}

// String returns the string representation of the expression.
func (e *ConstantExpr) String() string {
	if e.isWide() {
		return fmt.Sprintf("(const %s %d)", e.Big(), e.Width)
	}
	return fmt.Sprintf("(const %d %d)", e.Value, e.Width)
}

func (e *ConstantExpr) isWide() bool { return e.Width > Width64 }

// Big returns the value interpreted as an unsigned integer.
func (e *ConstantExpr) Big() *big.Int {
	x := new(big.Int)
	for i := len(e.Hi) - 1; i >= 0; i-- {
		x.Lsh(x, 64).Or(x, new(big.Int).SetUint64(e.Hi[i]))
	}
	return x.Lsh(x, 64).Or(x, new(big.Int).SetUint64(e.Value))
}

// SignedBig returns the value interpreted as a two's complement integer.
func (e *ConstantExpr) SignedBig() *big.Int {
	x := e.Big()
	if x.Bit(int(e.Width-1)) == 1 {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), e.Width))
	}
	return x
}

// Int64 returns the value interpreted as a two's complement integer. Wide
// constants are truncated to their low 64 bits.
func (e *ConstantExpr) Int64() int64 {
	return signExtend(e.Value, e.Width)
}

// IsTrue returns true if this is a boolean true expression.
func (e *ConstantExpr) IsTrue() bool {
	return e.Width == WidthBool && e.Value != 0
}

// IsFalse returns true if this is a boolean false expression.
func (e *ConstantExpr) IsFalse() bool {
	return e.Width == WidthBool && e.Value == 0
}

// IsZero returns true if all bits in the value are zero.
func (e *ConstantExpr) IsZero() bool {
	return e.Value == 0 && zeroWords(e.Hi)
}

// IsOne returns true if the value is one.
func (e *ConstantExpr) IsOne() bool {
	return e.Value == 1 && zeroWords(e.Hi)
}

// IsAllOnes returns true if all bits in the value are one.
func (e *ConstantExpr) IsAllOnes() bool {
	if e.isWide() {
		return e.Big().Cmp(bigMask(e.Width)) == 0
	}
	return e.Value == bitmask(e.Width)
}

func zeroWords(a []uint64) bool {
	for _, w := range a {
		if w != 0 {
			return false
		}
	}
	return true
}

func (e *ConstantExpr) checkWidth(op string, other *ConstantExpr) {
	assert(e.Width == other.Width, "%s: width mismatch: %d != %d", op, e.Width, other.Width)
}

// Add returns the sum of e and other.
func (e *ConstantExpr) Add(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("add", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Add(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value+other.Value, e.Width)
}

// Sub returns the difference of e and other.
func (e *ConstantExpr) Sub(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("sub", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Sub(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value-other.Value, e.Width)
}

// Neg returns the two's complement negation of e.
func (e *ConstantExpr) Neg() *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Neg(e.Big()), e.Width)
	}
	return NewConstantExpr(-e.Value, e.Width)
}

// Mul returns the product of e and other.
func (e *ConstantExpr) Mul(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("mul", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Mul(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value*other.Value, e.Width)
}

// UDiv returns the quotient of unsigned division of e and other.
// Panics if other is zero.
func (e *ConstantExpr) UDiv(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("udiv", other)
	assert(!other.IsZero(), "udiv: division by zero")
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Quo(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value/other.Value, e.Width)
}

// SDiv returns the quotient of signed division of e and other, truncated
// toward zero. The most negative value divided by -1 wraps to itself.
func (e *ConstantExpr) SDiv(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("sdiv", other)
	assert(!other.IsZero(), "sdiv: division by zero")
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Quo(e.SignedBig(), other.SignedBig()), e.Width)
	}
	return NewConstantExpr(uint64(e.Int64()/other.Int64()), e.Width)
}

// URem returns the remainder of unsigned division of e and other.
func (e *ConstantExpr) URem(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("urem", other)
	assert(!other.IsZero(), "urem: division by zero")
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Rem(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value%other.Value, e.Width)
}

// SRem returns the remainder of signed division of e and other. The result
// takes the sign of e.
func (e *ConstantExpr) SRem(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("srem", other)
	assert(!other.IsZero(), "srem: division by zero")
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Rem(e.SignedBig(), other.SignedBig()), e.Width)
	}
	return NewConstantExpr(uint64(e.Int64()%other.Int64()), e.Width)
}

// And returns the bitwise AND of e and other.
func (e *ConstantExpr) And(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("and", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).And(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value&other.Value, e.Width)
}

// Or returns the bitwise OR of e and other.
func (e *ConstantExpr) Or(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("or", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Or(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value|other.Value, e.Width)
}

// Xor returns the bitwise XOR of e and other.
func (e *ConstantExpr) Xor(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("xor", other)
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Xor(e.Big(), other.Big()), e.Width)
	}
	return NewConstantExpr(e.Value^other.Value, e.Width)
}

// shiftAmount returns other as a shift count, clamped to the width of e.
func (e *ConstantExpr) shiftAmount(other *ConstantExpr) uint {
	if !zeroWords(other.Hi) || other.Value >= uint64(e.Width) {
		return e.Width
	}
	return uint(other.Value)
}

// Shl returns the value of e shifted left by other number of bits.
// Shifting by the width or more yields zero.
func (e *ConstantExpr) Shl(other *ConstantExpr) *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Lsh(e.Big(), e.shiftAmount(other)), e.Width)
	}
	return NewConstantExpr(e.Value<<other.Value, e.Width)
}

// LShr returns the value of e logically shifted right by other number of bits.
func (e *ConstantExpr) LShr(other *ConstantExpr) *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Rsh(e.Big(), e.shiftAmount(other)), e.Width)
	}
	return NewConstantExpr(e.Value>>other.Value, e.Width)
}

// AShr returns the value of e arithmetically shifted right by other number
// of bits. Shifting by the width or more fills with the sign bit.
func (e *ConstantExpr) AShr(other *ConstantExpr) *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Rsh(e.SignedBig(), e.shiftAmount(other)), e.Width)
	}
	return NewConstantExpr(uint64(e.Int64()>>other.Value), e.Width)
}

// Eq returns the equality of e and other.
func (e *ConstantExpr) Eq(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("eq", other)
	return NewBoolConstantExpr(compareConstant(e, other) == 0)
}

// Ult returns the unsigned less than comparison of e to other.
func (e *ConstantExpr) Ult(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("ult", other)
	return NewBoolConstantExpr(compareConstant(e, other) < 0)
}

// Ule returns the unsigned less than or equal to comparison of e to other.
func (e *ConstantExpr) Ule(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("ule", other)
	return NewBoolConstantExpr(compareConstant(e, other) <= 0)
}

// Slt returns the signed less than comparison of e to other.
func (e *ConstantExpr) Slt(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("slt", other)
	if e.isWide() {
		return NewBoolConstantExpr(e.SignedBig().Cmp(other.SignedBig()) < 0)
	}
	return NewBoolConstantExpr(e.Int64() < other.Int64())
}

// Sle returns the signed less than or equal to comparison of e to other.
func (e *ConstantExpr) Sle(other *ConstantExpr) *ConstantExpr {
	e.checkWidth("sle", other)
	if e.isWide() {
		return NewBoolConstantExpr(e.SignedBig().Cmp(other.SignedBig()) <= 0)
	}
	return NewBoolConstantExpr(e.Int64() <= other.Int64())
}

// ZExt returns e resized to width, filling new high bits with zero.
// A narrower width truncates.
func (e *ConstantExpr) ZExt(width uint) *ConstantExpr {
	if e.Width == width {
		return e
	} else if e.isWide() {
		return NewBigConstantExpr(e.Big(), width)
	}
	return NewConstantExpr(e.Value, width)
}

// SExt returns e resized to width, filling new high bits with the sign bit.
// A narrower width truncates.
func (e *ConstantExpr) SExt(width uint) *ConstantExpr {
	if e.Width == width {
		return e
	} else if e.isWide() || width > Width64 {
		return NewBigConstantExpr(e.SignedBig(), width)
	}
	return NewConstantExpr(uint64(e.Int64()), width)
}

// Not returns the bitwise NOT of the expression.
func (e *ConstantExpr) Not() *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Not(e.Big()), e.Width)
	}
	return NewConstantExpr(^e.Value, e.Width)
}

// Extract returns width number of bits starting at offset.
func (e *ConstantExpr) Extract(offset, width uint) *ConstantExpr {
	if e.isWide() {
		return NewBigConstantExpr(new(big.Int).Rsh(e.Big(), offset), width)
	}
	return NewConstantExpr(e.Value>>offset, width)
}

// Concat returns the concatenation of e and lsb.
func (e *ConstantExpr) Concat(lsb *ConstantExpr) *ConstantExpr {
	if width := e.Width + lsb.Width; width > Width64 {
		return NewBigConstantExpr(new(big.Int).Or(new(big.Int).Lsh(e.Big(), lsb.Width), lsb.Big()), width)
	}
	return NewConstantExpr((e.Value<<lsb.Width)|lsb.Value, e.Width+lsb.Width)
}

// compareConstant orders constants of equal width by unsigned value.
func compareConstant(a, b *ConstantExpr) int {
	for i := len(a.Hi) - 1; i >= 0; i-- {
		if cmp := compareUint(a.Hi[i], b.Hi[i]); cmp != 0 {
			return cmp
		}
	}
	return compareUint(a.Value, b.Value)
}
