package glee_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
)

// read returns a symbolic byte read from a fresh array.
func read(id uint64) glee.Expr {
	return glee.NewReadExpr(glee.NewArray(id, "", 1), glee.NewConstantExpr64(0))
}

func TestExprWidth(t *testing.T) {
	x := read(1)
	for _, tt := range []struct {
		name string
		expr glee.Expr
		want uint
	}{
		{"ConstantExpr", glee.NewConstantExpr(0, 5), 5},
		{"ReadExpr", x, 8},
		{"ConcatExpr", &glee.ConcatExpr{MSB: x, LSB: glee.NewConstantExpr(0, 16)}, 24},
		{"ExtractExpr", &glee.ExtractExpr{Expr: x, Offset: 2, Width: 3}, 3},
		{"NotExpr", &glee.NotExpr{Expr: x}, 8},
		{"CastExpr", &glee.CastExpr{Src: x, Width: 33}, 33},
		{"BinaryExprCompare", &glee.BinaryExpr{Op: glee.ULT, LHS: x, RHS: x}, 1},
		{"BinaryExprArithmetic", &glee.BinaryExpr{Op: glee.MUL, LHS: x, RHS: x}, 8},
		{"IteExpr", &glee.IteExpr{Cond: glee.NewBoolConstantExpr(true), Then: x, Else: x}, 8},
		{"FCmpExpr", &glee.FCmpExpr{Pred: ir.FCmpOEQ, LHS: glee.NewFloat64Expr(0), RHS: glee.NewFloat64Expr(0)}, 1},
		{"FToIExpr", &glee.FToIExpr{Src: glee.NewFloat64Expr(0), Width: 17}, 17},
		{"FBitsExpr", &glee.FBitsExpr{Src: glee.NewFloat32Expr(0)}, 32},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if w := glee.ExprWidth(tt.expr); w != tt.want {
				t.Fatalf("unexpected width: %d", w)
			}
		})
	}
}

func TestBinaryOp_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := glee.ADD.String(); s != "add" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := glee.BinaryOp(100).String(); s != "BinaryOp<100>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestBinaryOp_IsArithmetic(t *testing.T) {
	if !glee.ADD.IsArithmetic() {
		t.Fatal("expected true")
	} else if glee.EQ.IsArithmetic() {
		t.Fatal("expected false")
	}
}

func TestBinaryOp_IsCompare(t *testing.T) {
	if !glee.ULT.IsCompare() {
		t.Fatal("expected true")
	} else if glee.SUB.IsCompare() {
		t.Fatal("expected false")
	}
}

func TestBinaryExpr_String(t *testing.T) {
	expr := &glee.BinaryExpr{Op: glee.ADD, LHS: glee.NewConstantExpr(0, 32), RHS: glee.NewConstantExpr(1, 32)}
	if s := expr.String(); s != "(add (const 0 32) (const 1 32))" {
		t.Fatalf("unexpected string: %s", s)
	}
}

func TestNewBinaryExpr_Constant(t *testing.T) {
	c32 := glee.NewConstantExpr32

	for _, tt := range []struct {
		name string
		op   glee.BinaryOp
		lhs  glee.Expr
		rhs  glee.Expr
		want glee.Expr
	}{
		{"AddNegative", glee.ADD, c32(5), c32(0xFFFFFFFD), c32(2)},
		{"UDiv", glee.UDIV, c32(7), c32(2), c32(3)},
		{"SDiv", glee.SDIV, c32(0xFFFFFFF9), c32(2), c32(0xFFFFFFFD)},
		{"SGTNegative", glee.SGT, c32(0xFFFFFFFF), c32(0), glee.NewBoolConstantExpr(false)},
		{"UGTNegative", glee.UGT, c32(0xFFFFFFFF), c32(0), glee.NewBoolConstantExpr(true)},
		{"NE", glee.NE, c32(1), c32(2), glee.NewBoolConstantExpr(true)},
		{"SGE", glee.SGE, c32(0), c32(0), glee.NewBoolConstantExpr(true)},
		{"AddBool", glee.ADD, glee.NewBoolConstantExpr(true), glee.NewBoolConstantExpr(true), glee.NewBoolConstantExpr(false)},
		{"MulOdd", glee.MUL, glee.NewConstantExpr(5, 3), glee.NewConstantExpr(3, 3), glee.NewConstantExpr(7, 3)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, glee.NewBinaryExpr(tt.op, tt.lhs, tt.rhs)); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestNewBinaryExpr_DivisionByZero(t *testing.T) {
	for _, op := range []glee.BinaryOp{glee.UDIV, glee.SDIV, glee.UREM, glee.SREM} {
		t.Run(op.String(), func(t *testing.T) {
			lhs, rhs := glee.NewConstantExpr32(7), glee.NewConstantExpr32(0)
			if diff := cmp.Diff(
				&glee.BinaryExpr{Op: op, LHS: lhs, RHS: rhs},
				glee.NewBinaryExpr(op, lhs, rhs),
			); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestNewBinaryExpr_Symbolic(t *testing.T) {
	x := read(1)
	c8 := glee.NewConstantExpr8

	t.Run("AddZero", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewBinaryExpr(glee.ADD, x, c8(0))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AddConstantLeft", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.ADD, LHS: c8(3), RHS: x},
			glee.NewBinaryExpr(glee.ADD, x, c8(3)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AddAssociative", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.ADD, LHS: c8(4), RHS: x},
			glee.NewBinaryExpr(glee.ADD, c8(1), &glee.BinaryExpr{Op: glee.ADD, LHS: c8(3), RHS: x}),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SubConstant", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.ADD, LHS: c8(0xFD), RHS: x},
			glee.NewBinaryExpr(glee.SUB, x, c8(3)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SubSelf", func(t *testing.T) {
		if diff := cmp.Diff(c8(0), glee.NewBinaryExpr(glee.SUB, x, x)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MulOne", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewBinaryExpr(glee.MUL, x, c8(1))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DivOne", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewBinaryExpr(glee.UDIV, x, c8(1))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("RemOne", func(t *testing.T) {
		if diff := cmp.Diff(c8(0), glee.NewBinaryExpr(glee.SREM, x, c8(1))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DivSymbolicByZero", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.UDIV, LHS: x, RHS: c8(0)},
			glee.NewBinaryExpr(glee.UDIV, x, c8(0)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AndAllOnes", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewBinaryExpr(glee.AND, c8(0xFF), x)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OrZero", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewBinaryExpr(glee.OR, c8(0), x)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("XorAllOnes", func(t *testing.T) {
		if diff := cmp.Diff(&glee.NotExpr{Expr: x}, glee.NewBinaryExpr(glee.XOR, x, c8(0xFF))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("EqSelf", func(t *testing.T) {
		if diff := cmp.Diff(glee.NewBoolConstantExpr(true), glee.NewBinaryExpr(glee.EQ, x, x)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("EqConstantLeft", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.EQ, LHS: c8(3), RHS: x},
			glee.NewBinaryExpr(glee.EQ, x, c8(3)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NE", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{
				Op:  glee.EQ,
				LHS: glee.NewBoolConstantExpr(false),
				RHS: &glee.BinaryExpr{Op: glee.EQ, LHS: c8(3), RHS: x},
			},
			glee.NewBinaryExpr(glee.NE, x, c8(3)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("EqExtendedOutOfRange", func(t *testing.T) {
		ext := glee.NewCastExpr(x, 32, false)
		if diff := cmp.Diff(glee.NewBoolConstantExpr(false), glee.NewBinaryExpr(glee.EQ, glee.NewConstantExpr32(0x100), ext)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("UGTReversed", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.BinaryExpr{Op: glee.ULT, LHS: c8(3), RHS: x},
			glee.NewBinaryExpr(glee.UGT, x, c8(3)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("WidthMismatch", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic")
			}
		}()
		glee.NewBinaryExpr(glee.ADD, x, glee.NewConstantExpr32(1))
	})
}

func TestNewCastExpr(t *testing.T) {
	x := read(1)

	t.Run("Same", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewCastExpr(x, 8, true)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Extend", func(t *testing.T) {
		if diff := cmp.Diff(&glee.CastExpr{Src: x, Width: 32, Signed: true}, glee.NewCastExpr(x, 32, true)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Nested", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.CastExpr{Src: x, Width: 64, Signed: true},
			glee.NewCastExpr(glee.NewCastExpr(x, 32, true), 64, true),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SignedOfUnsigned", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.CastExpr{Src: x, Width: 64, Signed: false},
			glee.NewCastExpr(glee.NewCastExpr(x, 32, false), 64, true),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("TruncateExtension", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewCastExpr(glee.NewCastExpr(x, 32, true), 8, false)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("BoolRoundTrip", func(t *testing.T) {
		ext := glee.NewCastExpr(glee.NewBoolConstantExpr(true), 8, true)
		if diff := cmp.Diff(glee.NewConstantExpr8(0xFF), ext); diff != "" {
			t.Fatal(diff)
		} else if diff := cmp.Diff(glee.NewBoolConstantExpr(true), glee.NewCastExpr(ext, 1, false)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewExtractExpr(t *testing.T) {
	x, y := read(1), read(2)
	xy := glee.NewConcatExpr(x, y)

	t.Run("Whole", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewExtractExpr(x, 0, 8)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConcatMSB", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewExtractExpr(xy, 8, 8)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConcatLSB", func(t *testing.T) {
		if diff := cmp.Diff(y, glee.NewExtractExpr(xy, 0, 8)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConcatSplit", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.ConcatExpr{
				MSB: &glee.ExtractExpr{Expr: x, Offset: 0, Width: 4},
				LSB: &glee.ExtractExpr{Expr: y, Offset: 4, Width: 4},
			},
			glee.NewExtractExpr(xy, 4, 8),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Nested", func(t *testing.T) {
		if diff := cmp.Diff(
			&glee.ExtractExpr{Expr: x, Offset: 3, Width: 2},
			glee.NewExtractExpr(glee.NewExtractExpr(x, 2, 5), 1, 2),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OutOfBounds", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic")
			}
		}()
		glee.NewExtractExpr(x, 4, 8)
	})
}

func TestNewConcatExpr(t *testing.T) {
	t.Run("Constant", func(t *testing.T) {
		if diff := cmp.Diff(
			glee.NewConstantExpr(0x1234, 16),
			glee.NewConcatExpr(glee.NewConstantExpr8(0x12), glee.NewConstantExpr8(0x34)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ContiguousExtracts", func(t *testing.T) {
		z := glee.NewBinaryExpr(glee.ADD, glee.NewConstantExpr(1, 16), glee.NewCastExpr(read(1), 16, false))
		if diff := cmp.Diff(z, glee.NewConcatExpr(glee.NewExtractExpr(z, 8, 8), glee.NewExtractExpr(z, 0, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("TooWide", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic")
			}
		}()
		glee.NewConcatExpr(glee.NewConstantExpr64(0), read(1))
	})
}

func TestNewNotExpr(t *testing.T) {
	x := read(1)
	if diff := cmp.Diff(x, glee.NewNotExpr(glee.NewNotExpr(x))); diff != "" {
		t.Fatal(diff)
	} else if diff := cmp.Diff(glee.NewConstantExpr8(0xF0), glee.NewNotExpr(glee.NewConstantExpr8(0x0F))); diff != "" {
		t.Fatal(diff)
	}
}

func TestNewIteExpr(t *testing.T) {
	x, y := read(1), read(2)
	cond := glee.NewBinaryExpr(glee.EQ, x, glee.NewConstantExpr8(3))

	t.Run("ConstantCondition", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewIteExpr(glee.NewBoolConstantExpr(true), x, y)); diff != "" {
			t.Fatal(diff)
		} else if diff := cmp.Diff(y, glee.NewIteExpr(glee.NewBoolConstantExpr(false), x, y)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		if diff := cmp.Diff(&glee.IteExpr{Cond: cond, Then: x, Else: y}, glee.NewIteExpr(cond, x, y)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SameArms", func(t *testing.T) {
		if diff := cmp.Diff(x, glee.NewIteExpr(cond, x, read(1))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("BoolArms", func(t *testing.T) {
		if diff := cmp.Diff(cond, glee.NewIteExpr(cond, glee.NewBoolConstantExpr(true), glee.NewBoolConstantExpr(false))); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestCompareValue(t *testing.T) {
	t.Run("Structural", func(t *testing.T) {
		if n := glee.CompareValue(read(1), read(1)); n != 0 {
			t.Fatalf("unexpected result: %d", n)
		}
	})
	t.Run("Width", func(t *testing.T) {
		if n := glee.CompareValue(glee.NewConstantExpr(1, 8), glee.NewConstantExpr(1, 16)); n != -1 {
			t.Fatalf("unexpected result: %d", n)
		}
	})
	t.Run("Antisymmetric", func(t *testing.T) {
		a, b := read(1), glee.NewFloat64Expr(1)
		if glee.CompareValue(a, b) != -glee.CompareValue(b, a) {
			t.Fatal("expected antisymmetric ordering")
		}
	})
}

func TestFindArrays(t *testing.T) {
	a, b := glee.NewArray(2, "b", 1), glee.NewArray(1, "a", 1)
	x := glee.NewReadExpr(a, glee.NewConstantExpr64(0))
	y := glee.NewReadExpr(b, glee.NewConstantExpr64(0))
	v := glee.NewIToFExpr(glee.NewBinaryExpr(glee.ADD, x, y), ir.Double, false)

	if diff := cmp.Diff([]*glee.Array{b, a}, glee.FindArrays(v, x)); diff != "" {
		t.Fatal(diff)
	}
}
