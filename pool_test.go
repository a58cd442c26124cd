package glee_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
)

func TestHashValue(t *testing.T) {
	build := func() glee.Value {
		return glee.NewBinaryExpr(glee.ADD, read(1), glee.NewCastExpr(read(2), 8, true))
	}
	assert.Equal(t, glee.HashValue(build()), glee.HashValue(build()))
	assert.NotEqual(t, glee.HashValue(read(1)), glee.HashValue(read(2)))
	assert.NotEqual(t,
		glee.HashValue(glee.NewCastExpr(read(1), 16, true)),
		glee.HashValue(glee.NewCastExpr(read(1), 16, false)),
	)
	assert.NotEqual(t,
		glee.HashValue(glee.NewFloat64Expr(0)),
		glee.HashValue(glee.NewConstantExpr64(0)),
	)
}

func TestPool_Intern(t *testing.T) {
	t.Run("Canonical", func(t *testing.T) {
		p := glee.NewPool()
		a := glee.NewBinaryExpr(glee.MUL, glee.NewConstantExpr8(3), read(1))
		b := glee.NewBinaryExpr(glee.MUL, glee.NewConstantExpr8(3), read(1))

		assert.Same(t, a, p.Intern(a))
		assert.Same(t, a, p.Intern(b))
		assert.Equal(t, 1, p.Len())

		c := glee.NewBinaryExpr(glee.MUL, glee.NewConstantExpr8(5), read(1))
		assert.Same(t, c, p.Intern(c))
		assert.Equal(t, 2, p.Len())
	})
	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, glee.NewPool().Intern(nil))
	})
	t.Run("SignedZero", func(t *testing.T) {
		p := glee.NewPool()
		pos, neg := glee.NewFloat64Expr(0), glee.NewFloat64Expr(math.Copysign(0, -1))
		assert.Same(t, pos, p.Intern(pos))
		assert.Same(t, neg, p.Intern(neg))
		assert.Equal(t, 2, p.Len())
	})
	t.Run("Float", func(t *testing.T) {
		p := glee.NewPool()
		a := glee.NewIToFExpr(read(1), ir.Double, true)
		assert.Same(t, a, p.Intern(a))
		assert.Same(t, a, p.Intern(glee.NewIToFExpr(read(1), ir.Double, true)))
		assert.NotSame(t, a, p.Intern(glee.NewIToFExpr(read(1), ir.Double, false)))
	})
}

func TestPool_Concurrent(t *testing.T) {
	p := glee.NewPool()

	const n = 32
	results := make([]glee.Value, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := glee.NewBinaryExpr(glee.XOR, glee.NewConstantExpr8(uint64(i%4)), read(1))
			results[i] = p.Intern(v)
		}(i)
	}
	wg.Wait()

	// i%4 == 0 folds to the read itself.
	assert.Equal(t, 4, p.Len())
	for i := 4; i < n; i++ {
		assert.Same(t, results[i%4], results[i])
	}
}
