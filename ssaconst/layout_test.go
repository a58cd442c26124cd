package ssaconst_test

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleevm/glee/ir"
	"github.com/gleevm/glee/ssaconst"
)

func TestDataLayoutFor(t *testing.T) {
	for _, arch := range []string{"386", "amd64", "arm", "arm64", "s390x"} {
		t.Run(arch, func(t *testing.T) {
			l, err := ssaconst.DataLayoutFor(arch)
			require.NoError(t, err)
			sizes := types.SizesFor("gc", arch)

			assert.Equal(t, uint(sizes.Sizeof(types.Typ[types.Uintptr])*8), l.PointerWidth)
			assert.Equal(t, arch != "s390x", l.LittleEndian)

			// struct { a int8; b int64; c int16; d float64; e *int8 }
			goFields := []*types.Var{
				types.NewField(token.NoPos, nil, "a", types.Typ[types.Int8], false),
				types.NewField(token.NoPos, nil, "b", types.Typ[types.Int64], false),
				types.NewField(token.NoPos, nil, "c", types.Typ[types.Int16], false),
				types.NewField(token.NoPos, nil, "d", types.Typ[types.Float64], false),
				types.NewField(token.NoPos, nil, "e", types.NewPointer(types.Typ[types.Int8]), false),
			}
			st := ir.Struct(ir.I8, ir.I64, ir.I16, ir.F64, ir.Ptr)

			for i, off := range sizes.Offsetsof(goFields) {
				assert.Equal(t, uint64(off), l.FieldOffset(st, i), "field %d", i)
			}
			gst := types.NewStruct(goFields, nil)
			assert.Equal(t, uint64(sizes.Sizeof(gst)), l.SizeOf(st))
			assert.Equal(t, uint64(sizes.Alignof(gst)), l.AlignOf(st))
		})
	}

	t.Run("ErrUnknownArch", func(t *testing.T) {
		_, err := ssaconst.DataLayoutFor("pdp11")
		assert.Equal(t, ssaconst.ErrUnknownArch, errors.Cause(err))
	})
}
