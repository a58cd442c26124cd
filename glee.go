package glee

import (
	"fmt"

	"github.com/pkg/errors"
)

// Standard widths.
const (
	WidthBool = 1
	Width8    = 8
	Width16   = 16
	Width32   = 32
	Width64   = 64

	// MaxWidth is the widest integer an expression may have.
	MaxWidth = 1 << 23
)

var (
	ErrUnknownArray      = errors.New("glee: array not bound")
	ErrInvalidDataLayout = errors.New("glee: invalid data layout")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}

// bitmask returns a mask of the low width bits.
func bitmask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// signExtend interprets the low width bits of v as a two's complement integer.
func signExtend(v uint64, width uint) int64 {
	if width >= 64 {
		return int64(v)
	}
	shift := 64 - width
	return int64(v<<shift) >> shift
}

// minBytes returns smallest number of bytes in which the bits fit.
func minBytes(bits uint) uint {
	return (bits + 7) / 8
}
