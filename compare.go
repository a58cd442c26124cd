package glee

import (
	"fmt"
	"sort"
)

// CompareValue returns an integer comparing two values structurally.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareValue(a, b Value) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := valueKind(a), valueKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ConstantExpr:
		b := b.(*ConstantExpr)
		if cmp := compareUint(uint64(a.Width), uint64(b.Width)); cmp != 0 {
			return cmp
		}
		return compareConstant(a, b)
	case *ReadExpr:
		b := b.(*ReadExpr)
		if cmp := CompareValue(a.Index, b.Index); cmp != 0 {
			return cmp
		}
		return CompareArray(a.Array, b.Array)
	case *ConcatExpr:
		return compareValues(a.MSB, b.(*ConcatExpr).MSB, a.LSB, b.(*ConcatExpr).LSB)
	case *ExtractExpr:
		b := b.(*ExtractExpr)
		if cmp := compareUint(uint64(a.Offset), uint64(b.Offset)); cmp != 0 {
			return cmp
		} else if cmp := compareUint(uint64(a.Width), uint64(b.Width)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Expr, b.Expr)
	case *NotExpr:
		return CompareValue(a.Expr, b.(*NotExpr).Expr)
	case *CastExpr:
		b := b.(*CastExpr)
		if cmp := compareBool(a.Signed, b.Signed); cmp != 0 {
			return cmp
		} else if cmp := compareUint(uint64(a.Width), uint64(b.Width)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Src, b.Src)
	case *BinaryExpr:
		b := b.(*BinaryExpr)
		if cmp := compareUint(uint64(a.Op), uint64(b.Op)); cmp != 0 {
			return cmp
		}
		return compareValues(a.LHS, b.LHS, a.RHS, b.RHS)
	case *IteExpr:
		b := b.(*IteExpr)
		return compareValues(a.Cond, b.Cond, a.Then, b.Then, a.Else, b.Else)
	case *FCmpExpr:
		b := b.(*FCmpExpr)
		if cmp := compareUint(uint64(a.Pred), uint64(b.Pred)); cmp != 0 {
			return cmp
		}
		return compareValues(a.LHS, b.LHS, a.RHS, b.RHS)
	case *FToIExpr:
		b := b.(*FToIExpr)
		if cmp := compareBool(a.Signed, b.Signed); cmp != 0 {
			return cmp
		} else if cmp := compareUint(uint64(a.Width), uint64(b.Width)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Src, b.Src)
	case *FBitsExpr:
		return CompareValue(a.Src, b.(*FBitsExpr).Src)

	case *FConstantExpr:
		b := b.(*FConstantExpr)
		if cmp := compareUint(uint64(a.Format), uint64(b.Format)); cmp != 0 {
			return cmp
		}
		return compareUint(a.Bits, b.Bits)
	case *FBinaryExpr:
		b := b.(*FBinaryExpr)
		if cmp := compareUint(uint64(a.Op), uint64(b.Op)); cmp != 0 {
			return cmp
		}
		return compareValues(a.LHS, b.LHS, a.RHS, b.RHS)
	case *FConvertExpr:
		b := b.(*FConvertExpr)
		if cmp := compareUint(uint64(a.Format), uint64(b.Format)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Src, b.Src)
	case *IToFExpr:
		b := b.(*IToFExpr)
		if cmp := compareBool(a.Signed, b.Signed); cmp != 0 {
			return cmp
		} else if cmp := compareUint(uint64(a.Format), uint64(b.Format)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Src, b.Src)
	case *FFromBitsExpr:
		b := b.(*FFromBitsExpr)
		if cmp := compareUint(uint64(a.Format), uint64(b.Format)); cmp != 0 {
			return cmp
		}
		return CompareValue(a.Src, b.Src)
	case *FIteExpr:
		b := b.(*FIteExpr)
		return compareValues(a.Cond, b.Cond, a.Then, b.Then, a.Else, b.Else)
	default:
		panic(fmt.Sprintf("glee.CompareValue: unexpected value: %T", a))
	}
}

// compareValues compares pairs of values in order and returns the first
// non-zero result.
func compareValues(pairs ...Value) int {
	for i := 0; i < len(pairs); i += 2 {
		if cmp := CompareValue(pairs[i], pairs[i+1]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareUint(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	if !a && b {
		return -1
	} else if a && !b {
		return 1
	}
	return 0
}

// valueKind returns a numeric value for the type of value.
// Only used internally for equality checks, hashing and sorting.
func valueKind(v Value) int {
	switch v.(type) {
	case *ConstantExpr:
		return 1
	case *ReadExpr:
		return 2
	case *ConcatExpr:
		return 3
	case *ExtractExpr:
		return 4
	case *NotExpr:
		return 5
	case *CastExpr:
		return 6
	case *BinaryExpr:
		return 7
	case *IteExpr:
		return 8
	case *FCmpExpr:
		return 9
	case *FToIExpr:
		return 10
	case *FBitsExpr:
		return 11
	case *FConstantExpr:
		return 12
	case *FBinaryExpr:
		return 13
	case *FConvertExpr:
		return 14
	case *IToFExpr:
		return 15
	case *FFromBitsExpr:
		return 16
	case *FIteExpr:
		return 17
	default:
		panic(fmt.Sprintf("glee.valueKind: unexpected value: %T", v))
	}
}

// Children returns the direct sub-values of v in a fixed order.
func Children(v Value) []Value {
	switch v := v.(type) {
	case *ConstantExpr, *FConstantExpr:
		return nil
	case *ReadExpr:
		return []Value{v.Index}
	case *ConcatExpr:
		return []Value{v.MSB, v.LSB}
	case *ExtractExpr:
		return []Value{v.Expr}
	case *NotExpr:
		return []Value{v.Expr}
	case *CastExpr:
		return []Value{v.Src}
	case *BinaryExpr:
		return []Value{v.LHS, v.RHS}
	case *IteExpr:
		return []Value{v.Cond, v.Then, v.Else}
	case *FCmpExpr:
		return []Value{v.LHS, v.RHS}
	case *FToIExpr:
		return []Value{v.Src}
	case *FBitsExpr:
		return []Value{v.Src}
	case *FBinaryExpr:
		return []Value{v.LHS, v.RHS}
	case *FConvertExpr:
		return []Value{v.Src}
	case *IToFExpr:
		return []Value{v.Src}
	case *FFromBitsExpr:
		return []Value{v.Src}
	case *FIteExpr:
		return []Value{v.Cond, v.Then, v.Else}
	default:
		panic(fmt.Sprintf("glee.Children: unexpected value: %T", v))
	}
}

// Inspect traverses v in depth-first order. It calls fn(v) and, if fn
// returns true, inspects each child of v.
func Inspect(v Value, fn func(Value) bool) {
	if !fn(v) {
		return
	}
	for _, child := range Children(v) {
		Inspect(child, fn)
	}
}

// FindArrays returns all symbolic arrays read by the values, ordered by id.
func FindArrays(values ...Value) []*Array {
	m := make(map[uint64]*Array)
	for _, v := range values {
		Inspect(v, func(v Value) bool {
			if v, ok := v.(*ReadExpr); ok {
				m[v.Array.ID] = v.Array
			}
			return true
		})
	}

	a := make([]*Array, 0, len(m))
	for _, array := range m {
		a = append(a, array)
	}
	sort.Slice(a, func(i, j int) bool { return CompareArray(a[i], a[j]) == -1 })
	return a
}
