package glee

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"github.com/gleevm/glee/ir"
)

// FatalError describes a constant expression the evaluator cannot translate.
// It always indicates a broken contract between the loader and the evaluator.
type FatalError struct {
	Op     string      // opcode, predicate or node kind
	Node   ir.Constant // offending node, may be nil
	Reason string
	Dump   string // detailed rendering of Node
}

// Error returns the error message.
func (e *FatalError) Error() string {
	return fmt.Sprintf("glee: %s: %s", e.Reason, e.Op)
}

// dumpConfig renders offending nodes for diagnostics.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                6,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Evaluator translates IR constant expressions into symbolic values.
//
// An Evaluator holds no mutable state and may be used from several
// goroutines, provided its Context is not modified.
type Evaluator struct {
	Context *Context

	// Logger receives a debug event per evaluated node and an error event
	// for every fatal condition.
	Logger zerolog.Logger

	// Fatal is invoked on a contract violation. It must not return
	// normally; if it does, the evaluator panics with the error.
	Fatal func(err *FatalError)
}

// NewEvaluator returns an evaluator for ctx that logs nothing and panics on
// contract violations.
func NewEvaluator(ctx *Context) *Evaluator {
	return &Evaluator{
		Context: ctx,
		Logger:  zerolog.Nop(),
		Fatal:   func(err *FatalError) { panic(err) },
	}
}

// Evaluate translates node with a default evaluator for ctx.
func Evaluate(node ir.Constant, ctx *Context) Value {
	return NewEvaluator(ctx).Evaluate(node)
}

// Evaluate translates node into a symbolic value. Nodes shared between
// several parents are evaluated once per call.
func (e *Evaluator) Evaluate(node ir.Constant) Value {
	ev := &evaluation{Evaluator: e, memo: make(map[ir.Constant]Value)}
	return ev.eval(node)
}

// evaluation holds the state of a single Evaluate call.
type evaluation struct {
	*Evaluator
	memo map[ir.Constant]Value
}

func (ev *evaluation) eval(node ir.Constant) Value {
	if node == nil {
		ev.fatal(nil, "nil", "missing operand")
	}
	if v, ok := ev.memo[node]; ok {
		return v
	}

	// Operands are evaluated up front, in order, whether or not the
	// opcode ends up using all of them.
	operands := node.Operands()
	ops := make([]Value, len(operands))
	for i, op := range operands {
		ops[i] = ev.eval(op)
	}
	ev.checkType(node, node.Type())

	v := ev.dispatch(node, ops)
	if ev.Context.Pool != nil {
		v = ev.Context.Pool.Intern(v)
	}
	ev.memo[node] = v

	if e := ev.Logger.Debug(); e.Enabled() {
		e.Str("op", opName(node)).Stringer("type", node.Type()).Stringer("result", v).Msg("eval")
	}
	return v
}

func (ev *evaluation) dispatch(node ir.Constant, ops []Value) Value {
	switch node := node.(type) {
	case *ir.IntConst:
		if node.Typ.Width > Width64 {
			return NewBigConstantExpr(node.Big(), node.Typ.Width)
		}
		return NewConstantExpr(node.Value, node.Typ.Width)
	case *ir.FloatConst:
		return NewFConstantExpr(node.Bits, node.Typ.Format)
	case *ir.Null:
		return ev.zero(node, node.Typ)
	case *ir.Undef:
		return ev.zero(node, node.Typ)
	case *ir.Global:
		a := ev.Context.Globals.Lookup(node.Name)
		if a == nil {
			ev.fatal(node, "global", "unknown global @%s", node.Name)
		}
		return NewConstantExpr(a.Address, ev.Context.PointerWidth)
	case *ir.Symbol:
		a, ok := ev.Context.Symbols[node.Name]
		if !ok {
			ev.fatal(node, "symbol", "unknown symbol %%%s", node.Name)
		}
		if uint(minBytes(node.Typ.Width)) > a.Size {
			ev.fatal(node, "symbol", "symbol %%%s has %d bytes, cannot read %s", node.Name, a.Size, node.Typ)
		}
		return a.Select(NewConstantExpr64(0), node.Typ.Width, ev.Context.LittleEndian)
	case *ir.CastExpr:
		return ev.evalCast(node, ops[0])
	case *ir.BinaryExpr:
		return ev.evalBinary(node, ops[0], ops[1])
	case *ir.ICmpExpr:
		return ev.evalICmp(node, ops[0], ops[1])
	case *ir.FCmpExpr:
		if !node.Pred.Valid() {
			ev.fatal(node, "fcmp "+node.Pred.String(), "unhandled fcmp predicate")
		}
		return NewFCmpExpr(node.Pred, ev.floatOperand(node, ops[0]), ev.floatOperand(node, ops[1]))
	case *ir.SelectExpr:
		return ev.evalSelect(node, ops[0], ops[1], ops[2])
	case *ir.GEPExpr:
		return ev.evalGEP(node, ops)
	default:
		ev.fatal(node, fmt.Sprintf("%T", node), "unknown constant expression")
		return nil
	}
}

// zero returns the zero value of a scalar type.
func (ev *evaluation) zero(node ir.Constant, t ir.Type) Value {
	switch t := t.(type) {
	case *ir.FloatType:
		return NewFConstantExpr(0, t.Format)
	case *ir.IntType, *ir.PointerType:
		return NewConstantExpr(0, ev.Context.Width(t))
	default:
		ev.fatal(node, t.String(), "aggregate has no scalar value")
		return nil
	}
}

func (ev *evaluation) evalCast(node *ir.CastExpr, x Value) Value {
	switch node.Op {
	case ir.Trunc:
		src, width := ev.intOperand(node, x), ev.Context.Width(node.To)
		if width > ExprWidth(src) {
			ev.fatal(node, node.Op.String(), "cannot truncate %d bits to %d", ExprWidth(src), width)
		}
		return NewExtractExpr(src, 0, width)
	case ir.ZExt, ir.IntToPtr, ir.PtrToInt:
		return NewCastExpr(ev.intOperand(node, x), ev.Context.Width(node.To), false)
	case ir.SExt:
		return NewCastExpr(ev.intOperand(node, x), ev.Context.Width(node.To), true)
	case ir.BitCast:
		return ev.evalBitCast(node, x)
	case ir.FPTrunc, ir.FPExt:
		return NewFConvertExpr(ev.floatOperand(node, x), ev.format(node, node.To))
	case ir.UIToFP:
		return NewIToFExpr(ev.intOperand(node, x), ev.format(node, node.To), false)
	case ir.SIToFP:
		return NewIToFExpr(ev.intOperand(node, x), ev.format(node, node.To), true)
	case ir.FPToUI:
		return NewFToIExpr(ev.floatOperand(node, x), ev.Context.Width(node.To), false)
	case ir.FPToSI:
		return NewFToIExpr(ev.floatOperand(node, x), ev.Context.Width(node.To), true)
	default:
		ev.fatal(node, node.Op.String(), "unknown constant expression opcode")
		return nil
	}
}

// evalBitCast returns x unchanged within a family and reinterprets its bits
// across families.
func (ev *evaluation) evalBitCast(node *ir.CastExpr, x Value) Value {
	switch x := x.(type) {
	case Expr:
		if t, ok := node.To.(*ir.FloatType); ok {
			if ExprWidth(x) != t.Format.Bits() {
				ev.fatal(node, node.Op.String(), "cannot reinterpret %d bits as %s", ExprWidth(x), t)
			}
			return NewFFromBitsExpr(x, t.Format)
		}
		return x
	case FloatExpr:
		if ir.IsFloat(node.To) {
			return x
		}
		return NewFBitsExpr(x)
	default:
		ev.fatal(node, node.Op.String(), "unexpected operand %T", x)
		return nil
	}
}

var irBinaryOps = map[ir.BinaryOp]BinaryOp{
	ir.Add:  ADD,
	ir.Sub:  SUB,
	ir.Mul:  MUL,
	ir.SDiv: SDIV,
	ir.UDiv: UDIV,
	ir.SRem: SREM,
	ir.URem: UREM,
	ir.And:  AND,
	ir.Or:   OR,
	ir.Xor:  XOR,
	ir.Shl:  SHL,
	ir.LShr: LSHR,
	ir.AShr: ASHR,
}

var irFBinaryOps = map[ir.BinaryOp]FBinaryOp{
	ir.FAdd: FADD,
	ir.FSub: FSUB,
	ir.FMul: FMUL,
	ir.FDiv: FDIV,
	ir.FRem: FREM,
}

func (ev *evaluation) evalBinary(node *ir.BinaryExpr, x, y Value) Value {
	if op, ok := irBinaryOps[node.Op]; ok {
		lhs, rhs := ev.intOperands(node, x, y)
		return NewBinaryExpr(op, lhs, rhs)
	} else if op, ok := irFBinaryOps[node.Op]; ok {
		return NewFBinaryExpr(op, ev.floatOperand(node, x), ev.floatOperand(node, y))
	}
	ev.fatal(node, node.Op.String(), "unknown constant expression opcode")
	return nil
}

var irICmpOps = map[ir.ICmpPred]BinaryOp{
	ir.ICmpEQ:  EQ,
	ir.ICmpNE:  NE,
	ir.ICmpUGT: UGT,
	ir.ICmpUGE: UGE,
	ir.ICmpULT: ULT,
	ir.ICmpULE: ULE,
	ir.ICmpSGT: SGT,
	ir.ICmpSGE: SGE,
	ir.ICmpSLT: SLT,
	ir.ICmpSLE: SLE,
}

func (ev *evaluation) evalICmp(node *ir.ICmpExpr, x, y Value) Value {
	op, ok := irICmpOps[node.Pred]
	if !ok {
		ev.fatal(node, "icmp "+node.Pred.String(), "unhandled icmp predicate")
	}
	lhs, rhs := ev.intOperands(node, x, y)
	return NewBinaryExpr(op, lhs, rhs)
}

func (ev *evaluation) evalSelect(node *ir.SelectExpr, cond, x, y Value) Value {
	c := ev.intOperand(node, cond)
	if w := ExprWidth(c); w != WidthBool {
		ev.fatal(node, "select", "condition has width %d", w)
	}

	switch x := x.(type) {
	case Expr:
		return NewIteExpr(c, x, ev.intOperand(node, y))
	case FloatExpr:
		return NewFIteExpr(c, x, ev.floatOperand(node, y))
	default:
		ev.fatal(node, "select", "unexpected operand %T", x)
		return nil
	}
}

// evalGEP starts from the base address and adds the offset of each step of
// the path. Struct steps add a field offset; sequential steps add the index
// times the element size. The index is zero-extended to pointer width.
func (ev *evaluation) evalGEP(node *ir.GEPExpr, ops []Value) Value {
	width := ev.Context.PointerWidth
	addr := NewCastExpr(ev.intOperand(node, ops[0]), width, false)

	indices := ops[1:]
	for _, step := range node.Path {
		var offset Expr
		switch t := step.Type.(type) {
		case *ir.StructType:
			if step.Index != nil {
				ev.fatal(node, "getelementptr", "struct step has an index operand")
			}
			if step.Field < 0 || step.Field >= len(t.Fields) {
				ev.fatal(node, "getelementptr", "field %d out of range for %s", step.Field, t)
			}
			offset = NewConstantExpr(ev.Context.Layout.FieldOffset(t, step.Field), width)
		case *ir.SequentialType:
			if step.Index == nil || len(indices) == 0 {
				ev.fatal(node, "getelementptr", "sequential step without index")
			}
			index := NewCastExpr(ev.intOperand(node, indices[0]), width, false)
			indices = indices[1:]
			size := NewConstantExpr(ev.Context.Layout.ElementSize(t), width)
			offset = NewBinaryExpr(MUL, index, size)
		default:
			ev.fatal(node, "getelementptr", "cannot index into %v", step.Type)
		}
		addr = NewBinaryExpr(ADD, addr, offset)
	}
	return addr
}

// checkType rejects integer types no expression can hold.
func (ev *evaluation) checkType(node ir.Constant, t ir.Type) {
	if t, ok := t.(*ir.IntType); ok && (t.Width == 0 || t.Width > MaxWidth) {
		ev.fatal(node, opName(node), "unsupported integer width %d", t.Width)
	}
}

// intOperand returns v as an integer expression.
func (ev *evaluation) intOperand(node ir.Constant, v Value) Expr {
	x, ok := v.(Expr)
	if !ok {
		ev.fatal(node, opName(node), "expected integer operand, got %s", v)
	}
	return x
}

// intOperands returns x and y as integer expressions of equal width.
func (ev *evaluation) intOperands(node ir.Constant, x, y Value) (Expr, Expr) {
	lhs, rhs := ev.intOperand(node, x), ev.intOperand(node, y)
	if ExprWidth(lhs) != ExprWidth(rhs) {
		ev.fatal(node, opName(node), "operand width mismatch: %d != %d", ExprWidth(lhs), ExprWidth(rhs))
	}
	return lhs, rhs
}

// floatOperand returns v as a floating-point expression.
func (ev *evaluation) floatOperand(node ir.Constant, v Value) FloatExpr {
	x, ok := v.(FloatExpr)
	if !ok {
		ev.fatal(node, opName(node), "expected floating-point operand, got %s", v)
	}
	return x
}

func (ev *evaluation) format(node ir.Constant, t ir.Type) ir.FloatFormat {
	ft, ok := t.(*ir.FloatType)
	if !ok {
		ev.fatal(node, opName(node), "expected floating-point type, got %s", t)
	}
	return ft.Format
}

// fatal reports a contract violation. It never returns.
func (ev *evaluation) fatal(node ir.Constant, op string, format string, args ...interface{}) {
	err := &FatalError{
		Op:     op,
		Node:   node,
		Reason: fmt.Sprintf(format, args...),
		Dump:   dumpConfig.Sdump(node),
	}
	ev.Logger.Error().Str("op", op).Str("node", nodeString(node)).Msg(err.Reason)

	if ev.Fatal != nil {
		ev.Fatal(err)
	}
	panic(err)
}

// opName returns a short name for the opcode of node.
func opName(node ir.Constant) string {
	switch node := node.(type) {
	case *ir.CastExpr:
		return node.Op.String()
	case *ir.BinaryExpr:
		return node.Op.String()
	case *ir.ICmpExpr:
		return "icmp " + node.Pred.String()
	case *ir.FCmpExpr:
		return "fcmp " + node.Pred.String()
	case *ir.SelectExpr:
		return "select"
	case *ir.GEPExpr:
		return "getelementptr"
	case *ir.IntConst, *ir.FloatConst:
		return "const"
	case *ir.Null:
		return "null"
	case *ir.Undef:
		return "undef"
	case *ir.Global:
		return "global"
	case *ir.Symbol:
		return "symbol"
	default:
		return fmt.Sprintf("%T", node)
	}
}

func nodeString(node ir.Constant) string {
	if node == nil {
		return "<nil>"
	}
	return node.String()
}
