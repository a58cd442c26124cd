package glee

import (
	"github.com/pkg/errors"
)

// Assignment binds symbolic arrays to concrete bytes so that symbolic
// values can be reduced to constants.
type Assignment struct {
	m map[uint64][]byte // mapping of array id to value
}

// NewAssignment returns a new instance of Assignment with the given array/value mapping.
func NewAssignment(arrays []*Array, values [][]byte) *Assignment {
	assert(len(arrays) == len(values), "array/value count mismatch: %d != %d", len(arrays), len(values))

	m := make(map[uint64][]byte)
	for i, array := range arrays {
		_, ok := m[array.ID]
		assert(!ok, "duplicate array: id=%d", array.ID)
		m[array.ID] = values[i]
	}
	return &Assignment{m: m}
}

// Evaluate reduces v to a *ConstantExpr or *FConstantExpr.
// Returns ErrUnknownArray if v reads an array without a binding.
func (a *Assignment) Evaluate(v Value) (Value, error) {
	switch v := v.(type) {
	case *ConstantExpr, *FConstantExpr:
		return v, nil

	case *ReadExpr:
		i, err := a.evalExpr(v.Index)
		if err != nil {
			return nil, err
		}
		data, ok := a.m[v.Array.ID]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownArray, "id=%d", v.Array.ID)
		} else if i.Value >= uint64(len(data)) {
			return nil, errors.Errorf("read index out of bounds: %d >= %d", i.Value, len(data))
		}
		return NewConstantExpr8(uint64(data[i.Value])), nil

	case *IteExpr:
		// Only the chosen arm needs to be bound.
		cond, err := a.evalExpr(v.Cond)
		if err != nil {
			return nil, err
		} else if cond.IsTrue() {
			return a.Evaluate(v.Then)
		}
		return a.Evaluate(v.Else)

	case *FIteExpr:
		cond, err := a.evalExpr(v.Cond)
		if err != nil {
			return nil, err
		} else if cond.IsTrue() {
			return a.Evaluate(v.Then)
		}
		return a.Evaluate(v.Else)
	}

	children := Children(v)
	args := make([]Value, len(children))
	for i, child := range children {
		arg, err := a.Evaluate(child)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	switch v := v.(type) {
	case *BinaryExpr:
		return constantOrError(NewBinaryExpr(v.Op, args[0].(Expr), args[1].(Expr)))
	case *CastExpr:
		return NewCastExpr(args[0].(Expr), v.Width, v.Signed), nil
	case *ConcatExpr:
		return NewConcatExpr(args[0].(Expr), args[1].(Expr)), nil
	case *ExtractExpr:
		return NewExtractExpr(args[0].(Expr), v.Offset, v.Width), nil
	case *NotExpr:
		return NewNotExpr(args[0].(Expr)), nil
	case *FCmpExpr:
		return NewFCmpExpr(v.Pred, args[0].(FloatExpr), args[1].(FloatExpr)), nil
	case *FToIExpr:
		return NewFToIExpr(args[0].(FloatExpr), v.Width, v.Signed), nil
	case *FBitsExpr:
		return NewFBitsExpr(args[0].(FloatExpr)), nil
	case *FBinaryExpr:
		return NewFBinaryExpr(v.Op, args[0].(FloatExpr), args[1].(FloatExpr)), nil
	case *FConvertExpr:
		return NewFConvertExpr(args[0].(FloatExpr), v.Format), nil
	case *IToFExpr:
		return NewIToFExpr(args[0].(Expr), v.Format, v.Signed), nil
	case *FFromBitsExpr:
		return NewFFromBitsExpr(args[0].(Expr), v.Format), nil
	default:
		return nil, errors.Errorf("invalid value type: %T", v)
	}
}

// evalExpr evaluates an integer expression to a constant.
func (a *Assignment) evalExpr(expr Expr) (*ConstantExpr, error) {
	v, err := a.Evaluate(expr)
	if err != nil {
		return nil, err
	}
	return v.(*ConstantExpr), nil
}

// constantOrError rejects results the builder refused to fold, such as a
// division by zero.
func constantOrError(v Expr) (Value, error) {
	if _, ok := v.(*ConstantExpr); !ok {
		return nil, errors.Errorf("cannot evaluate: %s", v)
	}
	return v, nil
}
