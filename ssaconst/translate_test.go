package ssaconst_test

import (
	"go/token"
	"go/types"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ssa"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
	"github.com/gleevm/glee/ssaconst"
)

const basicPath = "github.com/gleevm/glee/ssaconst/testdata/basic"

func TestTranslator_Type(t *testing.T) {
	amd64 := ssaconst.NewTranslator(types.SizesFor("gc", "amd64"), nil)
	i386 := ssaconst.NewTranslator(types.SizesFor("gc", "386"), nil)

	pt := types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, nil, "a", types.Typ[types.Int32], false),
		types.NewField(token.NoPos, nil, "b", types.Typ[types.Int64], false),
	}, nil)

	for _, tt := range []struct {
		name string
		tr   *ssaconst.Translator
		typ  types.Type
		want ir.Type
	}{
		{"Bool", amd64, types.Typ[types.Bool], ir.I1},
		{"Int", amd64, types.Typ[types.Int], ir.I64},
		{"Int386", i386, types.Typ[types.Int], ir.I32},
		{"Uint16", amd64, types.Typ[types.Uint16], ir.I16},
		{"UntypedInt", i386, types.Typ[types.UntypedInt], ir.I64},
		{"Float32", amd64, types.Typ[types.Float32], ir.F32},
		{"UntypedFloat", amd64, types.Typ[types.UntypedFloat], ir.F64},
		{"Complex64", amd64, types.Typ[types.Complex64], ir.Struct(ir.F32, ir.F32)},
		{"String", i386, types.Typ[types.String], ir.Struct(ir.Ptr, ir.I32)},
		{"Slice", amd64, types.NewSlice(types.Typ[types.Uint8]), ir.Struct(ir.Ptr, ir.I64, ir.I64)},
		{"Pointer", amd64, types.NewPointer(pt), ir.Ptr},
		{"Map", amd64, types.NewMap(types.Typ[types.String], types.Typ[types.Int]), ir.Ptr},
		{"Interface", amd64, types.NewInterfaceType(nil, nil), ir.Struct(ir.Ptr, ir.Ptr)},
		{"Array", amd64, types.NewArray(types.Typ[types.Int16], 3), ir.Array(ir.I16, 3)},
		{"Struct", amd64, pt, ir.Struct(ir.I32, ir.I64)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := tt.tr.Type(tt.typ)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, typ); diff != "" {
				t.Fatal(diff)
			}
		})
	}

	t.Run("ErrUnsupported", func(t *testing.T) {
		_, err := amd64.Type(types.NewTuple())
		assert.Error(t, err)
	})
}

// MustLoad loads the named testdata package for amd64.
func MustLoad(tb testing.TB, name string) (*ssa.Program, *ssa.Package) {
	tb.Helper()
	prog, pkgs, err := ssaconst.Load("", "amd64", "./testdata/"+name)
	if err != nil {
		tb.Fatal(err)
	}
	require.Len(tb, pkgs, 1)
	return prog, pkgs[0]
}

func TestInitializers(t *testing.T) {
	_, pkg := MustLoad(t, "basic")

	var names []string
	for _, st := range ssaconst.Initializers(pkg) {
		if g, ok := st.Addr.(*ssa.Global); ok {
			names = append(names, g.Name())
		}
	}
	for _, name := range []string{"n", "neg", "u8", "umax", "shifted", "third", "yes", "nilp", "s", "m", "p", "q", "fn"} {
		assert.Contains(t, names, name)
	}
	assert.NotContains(t, names, "table")
}

func TestTranslator_Value(t *testing.T) {
	_, pkg := MustLoad(t, "basic")

	l, err := ssaconst.DataLayoutFor("amd64")
	require.NoError(t, err)
	ctx := glee.NewContext(l)
	tr := ssaconst.NewTranslator(types.SizesFor("gc", "amd64"), ctx)
	require.NoError(t, tr.DeclarePackage(pkg))

	// Every package-level variable is declared up front.
	table := ctx.Globals.Lookup(basicPath + ".table")
	require.NotNil(t, table)
	assert.Equal(t, uint64(64), table.Size)

	values := make(map[string]glee.Value)
	errs := make(map[string]error)
	for _, st := range ssaconst.Initializers(pkg) {
		g, ok := st.Addr.(*ssa.Global)
		if !ok {
			continue
		}

		addr, err := tr.Value(st.Addr)
		require.NoError(t, err)
		if diff := cmp.Diff(glee.NewConstantExpr64(ctx.Globals.Lookup(ssaconst.GlobalName(g)).Address), glee.Evaluate(addr, ctx)); diff != "" {
			t.Fatalf("%s: %s", g.Name(), diff)
		}

		val, err := tr.Value(st.Val)
		if err != nil {
			errs[g.Name()] = err
			continue
		}
		values[g.Name()] = glee.Evaluate(val, ctx)
	}

	for _, tt := range []struct {
		name string
		want glee.Value
	}{
		{"n", glee.NewConstantExpr64(40)},
		{"neg", glee.NewConstantExpr64(uint64(math.MaxUint64 - 6))},
		{"u8", glee.NewConstantExpr8(200)},
		{"umax", glee.NewConstantExpr64(math.MaxUint64)},
		{"shifted", glee.NewConstantExpr32(1 << 31)},
		{"third", glee.NewFloat32Expr(float32(1) / 3)},
		{"yes", glee.NewBoolConstantExpr(true)},
		{"nilp", glee.NewConstantExpr64(0)},
		{"p", glee.NewConstantExpr64(table.Address + 32)},
		{"q", glee.NewConstantExpr64(table.Address + 16 + 8)},
		{"fn", glee.NewConstantExpr64(ctx.Globals.Lookup(basicPath + ".helper").Address)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, errs[tt.name])
			if diff := cmp.Diff(tt.want, values[tt.name]); diff != "" {
				t.Fatal(diff)
			}
		})
	}

	t.Run("ErrNotConstant", func(t *testing.T) {
		assert.Equal(t, ssaconst.ErrNotConstant, errors.Cause(errs["m"]))
	})
	t.Run("ErrNotScalar", func(t *testing.T) {
		assert.Equal(t, ssaconst.ErrNotScalar, errors.Cause(errs["s"]))
	})
}

func TestTranslator_Inputs(t *testing.T) {
	_, pkg := MustLoad(t, "basic")

	l, err := ssaconst.DataLayoutFor("amd64")
	require.NoError(t, err)
	ctx := glee.NewContext(l)
	tr := ssaconst.NewTranslator(types.SizesFor("gc", "amd64"), ctx)
	tr.Inputs = map[string]bool{"n": true}
	require.NoError(t, tr.DeclarePackage(pkg))

	var val ir.Constant
	for _, st := range ssaconst.Initializers(pkg) {
		if g, ok := st.Addr.(*ssa.Global); ok && g.Name() == "m" {
			val, err = tr.Value(st.Val)
			require.NoError(t, err)
		}
	}
	require.NotNil(t, val)

	n := ctx.Symbols["n"]
	require.NotNil(t, n)
	assert.Equal(t, uint(8), n.Size)

	v := glee.Evaluate(val, ctx)
	want := glee.NewBinaryExpr(glee.ADD, glee.NewConstantExpr64(2), n.Select(glee.NewConstantExpr64(0), 64, true))
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatal(diff)
	}

	c, err := glee.NewAssignment([]*glee.Array{n}, [][]byte{{42, 0, 0, 0, 0, 0, 0, 0}}).Evaluate(v)
	require.NoError(t, err)
	if diff := cmp.Diff(glee.NewConstantExpr64(44), c); diff != "" {
		t.Fatal(diff)
	}
}

func TestTranslator_Value_Memoized(t *testing.T) {
	_, pkg := MustLoad(t, "basic")

	l, err := ssaconst.DataLayoutFor("amd64")
	require.NoError(t, err)
	tr := ssaconst.NewTranslator(types.SizesFor("gc", "amd64"), glee.NewContext(l))

	g := pkg.Var("table")
	a, err := tr.Value(g)
	require.NoError(t, err)
	b, err := tr.Value(g)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
