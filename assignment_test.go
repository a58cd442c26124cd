package glee_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
)

func TestAssignment_Evaluate(t *testing.T) {
	x := glee.NewArray(1, "x", 2)
	y := glee.NewArray(2, "y", 1)
	a := glee.NewAssignment([]*glee.Array{x}, [][]byte{{0x34, 0x12}})
	x16 := x.Select(glee.NewConstantExpr64(0), 16, true)

	t.Run("Constant", func(t *testing.T) {
		v, err := a.Evaluate(glee.NewConstantExpr8(7))
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewConstantExpr8(7), v); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Arithmetic", func(t *testing.T) {
		v, err := a.Evaluate(glee.NewBinaryExpr(glee.ADD, glee.NewConstantExpr(1, 16), x16))
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewConstantExpr(0x1235, 16), v); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Cast", func(t *testing.T) {
		v, err := a.Evaluate(glee.NewCastExpr(x16, 32, true))
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewConstantExpr32(0x1234), v); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Float", func(t *testing.T) {
		v, err := a.Evaluate(glee.NewIToFExpr(x16, ir.Double, false))
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewFloat64Expr(0x1234), v); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("IteSkipsUnboundArm", func(t *testing.T) {
		cond := glee.NewBinaryExpr(glee.EQ, glee.NewConstantExpr(0x1234, 16), x16)
		yv := glee.NewReadExpr(y, glee.NewConstantExpr64(0))
		v, err := a.Evaluate(glee.NewIteExpr(cond, glee.NewConstantExpr8(1), yv))
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewConstantExpr8(1), v); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ErrUnknownArray", func(t *testing.T) {
		_, err := a.Evaluate(glee.NewReadExpr(y, glee.NewConstantExpr64(0)))
		assert.Equal(t, glee.ErrUnknownArray, errors.Cause(err))
	})
	t.Run("ErrOutOfBounds", func(t *testing.T) {
		_, err := a.Evaluate(glee.NewReadExpr(x, glee.NewConstantExpr64(5)))
		assert.EqualError(t, err, "read index out of bounds: 5 >= 2")
	})
	t.Run("ErrDivisionByZero", func(t *testing.T) {
		b := glee.NewAssignment([]*glee.Array{y}, [][]byte{{0}})
		yv := glee.NewReadExpr(y, glee.NewConstantExpr64(0))
		_, err := b.Evaluate(glee.NewBinaryExpr(glee.UDIV, glee.NewConstantExpr8(1), yv))
		assert.Error(t, err)
	})
}

func TestNewAssignment(t *testing.T) {
	x := glee.NewArray(1, "x", 1)
	t.Run("ErrCountMismatch", func(t *testing.T) {
		assert.Panics(t, func() { glee.NewAssignment([]*glee.Array{x}, nil) })
	})
	t.Run("ErrDuplicate", func(t *testing.T) {
		assert.Panics(t, func() { glee.NewAssignment([]*glee.Array{x, x}, [][]byte{{1}, {2}}) })
	})
}
