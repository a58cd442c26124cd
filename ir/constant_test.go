package ir_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/gleevm/glee/ir"
)

func TestNewInt(t *testing.T) {
	t.Run("Truncate", func(t *testing.T) {
		i24 := ir.Int(24)
		c := ir.NewInt(i24, -1)
		if diff := cmp.Diff(&ir.IntConst{Typ: i24, Value: 0xFFFFFF}, c); diff != "" {
			t.Fatal(diff)
		}
		assert.Equal(t, ir.Type(i24), c.Type())
		assert.Equal(t, "i24 16777215", c.String())
	})
	t.Run("Width64", func(t *testing.T) {
		assert.Equal(t, uint64(math.MaxUint64), ir.NewInt(ir.I64, -1).Value)
		assert.Nil(t, ir.NewInt(ir.I64, -1).Hi)
	})
	t.Run("SignExtendWide", func(t *testing.T) {
		i100 := ir.Int(100)
		if diff := cmp.Diff(&ir.IntConst{Typ: i100, Value: math.MaxUint64, Hi: []uint64{1<<36 - 1}}, ir.NewInt(i100, -1)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewBigInt(t *testing.T) {
	i128 := ir.Int(128)
	v := new(big.Int).Lsh(big.NewInt(3), 64)
	c := ir.NewBigInt(i128, v)
	if diff := cmp.Diff(&ir.IntConst{Typ: i128, Value: 0, Hi: []uint64{3}}, c); diff != "" {
		t.Fatal(diff)
	}
	assert.Equal(t, 0, c.Big().Cmp(v))
	assert.Equal(t, "i128 "+v.String(), c.String())

	t.Run("Modulo", func(t *testing.T) {
		c := ir.NewBigInt(ir.I8, big.NewInt(0x1FF))
		assert.Equal(t, uint64(0xFF), c.Value)
	})
}

func TestNewFloat(t *testing.T) {
	c := ir.NewFloat(ir.F32, 0.1)
	assert.Equal(t, uint64(math.Float32bits(0.1)), c.Bits)
	assert.Equal(t, "float 0.1", c.String())
	assert.Equal(t, ir.Float, c.Typ.Format)

	d := ir.NewFloat(ir.F64, -2.5)
	assert.Equal(t, math.Float64bits(-2.5), d.Bits)
	assert.Equal(t, "double -2.5", d.String())
}

func TestGEPExpr(t *testing.T) {
	pair := ir.Struct(ir.I32, ir.I64)
	base := &ir.Global{Name: "table"}
	index := ir.NewInt(ir.I64, 2)
	node := ir.NewGEP(base, ir.IndexStep(ir.Seq(pair), index), ir.FieldStep(pair, 1))

	if diff := cmp.Diff([]ir.Constant{base, index}, node.Operands()); diff != "" {
		t.Fatal(diff)
	}
	assert.Equal(t, "getelementptr (ptr @table, i64 2, field 1)", node.String())
}
