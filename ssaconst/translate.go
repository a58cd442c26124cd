// Package ssaconst translates constant values of Go programs in SSA form into
// IR constant expressions.
package ssaconst

import (
	"go/constant"
	"go/token"
	"go/types"
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
)

var (
	// ErrNotConstant is returned for values that depend on program execution.
	ErrNotConstant = errors.New("ssaconst: not a constant expression")

	// ErrNotScalar is returned for constants of aggregate type.
	ErrNotScalar = errors.New("ssaconst: not a scalar constant")
)

// Translator converts SSA values into IR constants. Globals and functions
// referenced by translated values are declared in Context.
type Translator struct {
	Sizes   types.Sizes
	Context *glee.Context

	// Inputs holds the unqualified names of integer package variables
	// whose loads translate to symbolic inputs of the same name.
	Inputs map[string]bool

	values map[ssa.Value]ir.Constant
}

// NewTranslator returns a translator for ctx using the given sizes.
func NewTranslator(sizes types.Sizes, ctx *glee.Context) *Translator {
	return &Translator{
		Sizes:   sizes,
		Context: ctx,
		values:  make(map[ssa.Value]ir.Constant),
	}
}

// Type returns the IR type for typ.
func (t *Translator) Type(typ types.Type) (ir.Type, error) {
	switch typ := typ.Underlying().(type) {
	case *types.Basic:
		return t.basicType(typ)
	case *types.Pointer, *types.Signature, *types.Map, *types.Chan:
		return ir.Ptr, nil
	case *types.Slice:
		return ir.Struct(ir.Ptr, t.word(), t.word()), nil
	case *types.Interface:
		return ir.Struct(ir.Ptr, ir.Ptr), nil
	case *types.Array:
		elem, err := t.Type(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, typ.Len()), nil
	case *types.Struct:
		fields := make([]ir.Type, typ.NumFields())
		for i := range fields {
			f, err := t.Type(typ.Field(i).Type())
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return ir.Struct(fields...), nil
	default:
		return nil, errors.Errorf("ssaconst: unsupported type %s", typ)
	}
}

func (t *Translator) basicType(typ *types.Basic) (ir.Type, error) {
	switch typ.Kind() {
	case types.Bool, types.UntypedBool:
		return ir.I1, nil
	case types.UntypedInt, types.UntypedRune:
		return ir.I64, nil
	case types.Float32:
		return ir.F32, nil
	case types.Float64, types.UntypedFloat:
		return ir.F64, nil
	case types.Complex64:
		return ir.Struct(ir.F32, ir.F32), nil
	case types.Complex128:
		return ir.Struct(ir.F64, ir.F64), nil
	case types.String:
		return ir.Struct(ir.Ptr, t.word()), nil
	case types.UnsafePointer, types.UntypedNil:
		return ir.Ptr, nil
	}
	if typ.Info()&types.IsInteger != 0 {
		return ir.Int(uint(t.Sizes.Sizeof(typ) * 8)), nil
	}
	return nil, errors.Errorf("ssaconst: unsupported type %s", typ)
}

// word returns the integer type of a machine word.
func (t *Translator) word() *ir.IntType {
	return ir.Int(uint(t.Sizes.Sizeof(types.Typ[types.Uintptr]) * 8))
}

// DeclarePackage declares every global of pkg in name order so that their
// addresses do not depend on the order values are translated in.
func (t *Translator) DeclarePackage(pkg *ssa.Package) error {
	names := make([]string, 0, len(pkg.Members))
	for name, m := range pkg.Members {
		if _, ok := m.(*ssa.Global); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := t.declareGlobal(pkg.Members[name].(*ssa.Global)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) declareGlobal(g *ssa.Global) (ir.Constant, error) {
	typ, err := t.Type(g.Type().(*types.Pointer).Elem())
	if err != nil {
		return nil, errors.Wrapf(err, "declare %s", g.Name())
	}
	name := GlobalName(g)
	t.Context.DeclareGlobal(name, typ)
	return &ir.Global{Name: name}, nil
}

// GlobalName returns the name a global is declared under.
func GlobalName(g *ssa.Global) string {
	if g.Pkg == nil {
		return g.Name()
	}
	return g.Pkg.Pkg.Path() + "." + g.Name()
}

// Value translates v into an IR constant. Values computed at run time, such
// as loads or calls, return ErrNotConstant.
func (t *Translator) Value(v ssa.Value) (ir.Constant, error) {
	if c, ok := t.values[v]; ok {
		return c, nil
	}
	c, err := t.value(v)
	if err != nil {
		return nil, err
	}
	t.values[v] = c
	return c, nil
}

func (t *Translator) value(v ssa.Value) (ir.Constant, error) {
	switch v := v.(type) {
	case *ssa.Const:
		return t.constant(v)
	case *ssa.Global:
		return t.declareGlobal(v)
	case *ssa.Function:
		name := v.String()
		t.Context.Globals.Alloc(name, 1, 1)
		return &ir.Global{Name: name}, nil
	case *ssa.Convert:
		return t.convert(v)
	case *ssa.ChangeType:
		x, err := t.Value(v.X)
		if err != nil {
			return nil, err
		}
		return ir.NewCast(ir.BitCast, x, x.Type()), nil
	case *ssa.BinOp:
		return t.binOp(v)
	case *ssa.UnOp:
		return t.unOp(v)
	case *ssa.FieldAddr:
		return t.fieldAddr(v)
	case *ssa.IndexAddr:
		return t.indexAddr(v)
	default:
		return nil, errors.Wrapf(ErrNotConstant, "%T %s", v, v.Name())
	}
}

func (t *Translator) constant(c *ssa.Const) (ir.Constant, error) {
	typ, err := t.Type(c.Type())
	if err != nil {
		return nil, err
	}

	if c.Value == nil {
		switch typ.(type) {
		case *ir.IntType, *ir.FloatType, *ir.PointerType:
			return &ir.Null{Typ: typ}, nil
		}
		return nil, errors.Wrapf(ErrNotScalar, "zero %s", c.Type())
	}

	switch typ := typ.(type) {
	case *ir.IntType:
		if c.Value.Kind() == constant.Bool {
			if constant.BoolVal(c.Value) {
				return ir.NewInt(typ, 1), nil
			}
			return ir.NewInt(typ, 0), nil
		}
		x := constant.ToInt(c.Value)
		if i, ok := constant.Int64Val(x); ok {
			return ir.NewInt(typ, i), nil
		} else if u, ok := constant.Uint64Val(x); ok {
			return ir.NewInt(typ, int64(u)), nil
		}
		return nil, errors.Errorf("ssaconst: integer constant overflows: %s", c.Value)
	case *ir.FloatType:
		x := constant.ToFloat(c.Value)
		if typ.Format == ir.Float {
			f, _ := constant.Float32Val(x)
			return ir.NewFloat(typ, float64(f)), nil
		}
		f, _ := constant.Float64Val(x)
		return ir.NewFloat(typ, f), nil
	default:
		return nil, errors.Wrapf(ErrNotScalar, "%s", c.Type())
	}
}

func (t *Translator) convert(v *ssa.Convert) (ir.Constant, error) {
	x, err := t.Value(v.X)
	if err != nil {
		return nil, err
	}
	to, err := t.Type(v.Type())
	if err != nil {
		return nil, err
	}

	from := x.Type()
	fromBasic, _ := v.X.Type().Underlying().(*types.Basic)
	toBasic, _ := v.Type().Underlying().(*types.Basic)

	var op ir.CastOp
	switch {
	case ir.IsInteger(from) && ir.IsInteger(to):
		fw, tw := from.(*ir.IntType).Width, to.(*ir.IntType).Width
		switch {
		case fw > tw:
			op = ir.Trunc
		case fw < tw && isSigned(fromBasic):
			op = ir.SExt
		case fw < tw:
			op = ir.ZExt
		default:
			op = ir.BitCast
		}
	case ir.IsInteger(from) && ir.IsFloat(to):
		op = ir.UIToFP
		if isSigned(fromBasic) {
			op = ir.SIToFP
		}
	case ir.IsFloat(from) && ir.IsInteger(to):
		op = ir.FPToUI
		if isSigned(toBasic) {
			op = ir.FPToSI
		}
	case ir.IsFloat(from) && ir.IsFloat(to):
		fb, tb := from.(*ir.FloatType).Format.Bits(), to.(*ir.FloatType).Format.Bits()
		switch {
		case fb > tb:
			op = ir.FPTrunc
		case fb < tb:
			op = ir.FPExt
		default:
			op = ir.BitCast
		}
	case ir.IsPointer(from) && ir.IsInteger(to):
		op = ir.PtrToInt
	case ir.IsInteger(from) && ir.IsPointer(to):
		op = ir.IntToPtr
	case ir.IsPointer(from) && ir.IsPointer(to):
		op = ir.BitCast
	default:
		return nil, errors.Wrapf(ErrNotConstant, "conversion %s to %s", v.X.Type(), v.Type())
	}
	return ir.NewCast(op, x, to), nil
}

func isSigned(b *types.Basic) bool {
	return b != nil && b.Info()&types.IsInteger != 0 && b.Info()&types.IsUnsigned == 0
}

func isFloat(typ types.Type) bool {
	b, ok := typ.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsFloat != 0
}

func (t *Translator) binOp(v *ssa.BinOp) (ir.Constant, error) {
	x, err := t.Value(v.X)
	if err != nil {
		return nil, err
	}
	y, err := t.Value(v.Y)
	if err != nil {
		return nil, err
	}

	basic, _ := v.X.Type().Underlying().(*types.Basic)
	signed, float := isSigned(basic), isFloat(v.X.Type())
	if basic != nil && basic.Info()&types.IsString != 0 {
		return nil, errors.Wrapf(ErrNotConstant, "string %s", v.Op)
	}

	arith := func(i, s, f ir.BinaryOp) (ir.Constant, error) {
		switch {
		case float:
			return ir.NewBinary(f, x, y), nil
		case signed:
			return ir.NewBinary(s, x, y), nil
		default:
			return ir.NewBinary(i, x, y), nil
		}
	}
	compare := func(u, s ir.ICmpPred, f ir.FCmpPred) (ir.Constant, error) {
		switch {
		case float:
			return ir.NewFCmp(f, x, y), nil
		case signed:
			return ir.NewICmp(s, x, y), nil
		default:
			return ir.NewICmp(u, x, y), nil
		}
	}

	switch v.Op {
	case token.ADD:
		return arith(ir.Add, ir.Add, ir.FAdd)
	case token.SUB:
		return arith(ir.Sub, ir.Sub, ir.FSub)
	case token.MUL:
		return arith(ir.Mul, ir.Mul, ir.FMul)
	case token.QUO:
		return arith(ir.UDiv, ir.SDiv, ir.FDiv)
	case token.REM:
		return arith(ir.URem, ir.SRem, ir.FRem)
	case token.AND:
		return ir.NewBinary(ir.And, x, y), nil
	case token.OR:
		return ir.NewBinary(ir.Or, x, y), nil
	case token.XOR:
		return ir.NewBinary(ir.Xor, x, y), nil
	case token.AND_NOT:
		return ir.NewBinary(ir.And, x, ir.NewBinary(ir.Xor, y, allOnes(x.Type()))), nil
	case token.SHL, token.SHR:
		// Go allows the shift count to have any integer type.
		y = resize(y, x.Type())
		op := ir.Shl
		if v.Op == token.SHR {
			op = ir.LShr
			if signed {
				op = ir.AShr
			}
		}
		return ir.NewBinary(op, x, y), nil
	case token.EQL:
		return compare(ir.ICmpEQ, ir.ICmpEQ, ir.FCmpOEQ)
	case token.NEQ:
		return compare(ir.ICmpNE, ir.ICmpNE, ir.FCmpUNE)
	case token.LSS:
		return compare(ir.ICmpULT, ir.ICmpSLT, ir.FCmpOLT)
	case token.LEQ:
		return compare(ir.ICmpULE, ir.ICmpSLE, ir.FCmpOLE)
	case token.GTR:
		return compare(ir.ICmpUGT, ir.ICmpSGT, ir.FCmpOGT)
	case token.GEQ:
		return compare(ir.ICmpUGE, ir.ICmpSGE, ir.FCmpOGE)
	default:
		return nil, errors.Wrapf(ErrNotConstant, "operator %s", v.Op)
	}
}

// resize converts the integer x to type to by truncation or zero-extension.
func resize(x ir.Constant, to ir.Type) ir.Constant {
	fw, tw := x.Type().(*ir.IntType).Width, to.(*ir.IntType).Width
	switch {
	case fw > tw:
		return ir.NewCast(ir.Trunc, x, to)
	case fw < tw:
		return ir.NewCast(ir.ZExt, x, to)
	default:
		return x
	}
}

func allOnes(typ ir.Type) ir.Constant {
	return ir.NewInt(typ.(*ir.IntType), -1)
}

func (t *Translator) unOp(v *ssa.UnOp) (ir.Constant, error) {
	switch v.Op {
	case token.MUL:
		return t.load(v)
	case token.NOT, token.SUB, token.XOR:
	default:
		return nil, errors.Wrapf(ErrNotConstant, "operator %s", v.Op)
	}

	x, err := t.Value(v.X)
	if err != nil {
		return nil, err
	}

	switch typ := x.Type().(type) {
	case *ir.FloatType:
		if v.Op != token.SUB {
			break
		}
		return ir.NewBinary(ir.FSub, ir.NewFloat(typ, negativeZero()), x), nil
	case *ir.IntType:
		switch v.Op {
		case token.NOT, token.XOR:
			return ir.NewBinary(ir.Xor, x, allOnes(typ)), nil
		case token.SUB:
			return ir.NewBinary(ir.Sub, ir.NewInt(typ, 0), x), nil
		}
	}
	return nil, errors.Wrapf(ErrNotConstant, "operator %s on %s", v.Op, v.X.Type())
}

// load translates a load of an input variable into a symbolic input.
func (t *Translator) load(v *ssa.UnOp) (ir.Constant, error) {
	g, ok := v.X.(*ssa.Global)
	if !ok || !t.Inputs[g.Name()] {
		return nil, errors.Wrapf(ErrNotConstant, "load %s", v.X.Name())
	}

	typ, err := t.Type(v.Type())
	if err != nil {
		return nil, err
	}
	it, ok := typ.(*ir.IntType)
	if !ok {
		return nil, errors.Wrapf(ErrNotConstant, "input %s has type %s", g.Name(), v.Type())
	}
	t.Context.DeclareSymbol(g.Name(), it.Width)
	return &ir.Symbol{Name: g.Name(), Typ: it}, nil
}

func negativeZero() float64 {
	return math.Copysign(0, -1)
}

func (t *Translator) fieldAddr(v *ssa.FieldAddr) (ir.Constant, error) {
	base, err := t.Value(v.X)
	if err != nil {
		return nil, err
	}
	typ, err := t.Type(v.X.Type().Underlying().(*types.Pointer).Elem())
	if err != nil {
		return nil, err
	}
	return ir.NewGEP(base, ir.FieldStep(typ.(*ir.StructType), v.Field)), nil
}

func (t *Translator) indexAddr(v *ssa.IndexAddr) (ir.Constant, error) {
	ptr, ok := v.X.Type().Underlying().(*types.Pointer)
	if !ok {
		return nil, errors.Wrapf(ErrNotConstant, "slice index")
	}
	base, err := t.Value(v.X)
	if err != nil {
		return nil, err
	}
	index, err := t.Value(v.Index)
	if err != nil {
		return nil, err
	}
	typ, err := t.Type(ptr.Elem())
	if err != nil {
		return nil, err
	}
	return ir.NewGEP(base, ir.IndexStep(typ.(*ir.SequentialType), index)), nil
}
