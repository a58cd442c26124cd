package ir

import "fmt"

// CastOp represents a conversion opcode.
type CastOp int

// Conversion opcodes.
const (
	cast_op_begin = CastOp(iota)
	Trunc
	ZExt
	SExt
	BitCast
	IntToPtr
	PtrToInt
	FPTrunc
	FPExt
	UIToFP
	SIToFP
	FPToUI
	FPToSI
	cast_op_end
)

var castOps = [...]string{
	Trunc:    "trunc",
	ZExt:     "zext",
	SExt:     "sext",
	BitCast:  "bitcast",
	IntToPtr: "inttoptr",
	PtrToInt: "ptrtoint",
	FPTrunc:  "fptrunc",
	FPExt:    "fpext",
	UIToFP:   "uitofp",
	SIToFP:   "sitofp",
	FPToUI:   "fptoui",
	FPToSI:   "fptosi",
}

// String returns the IR mnemonic of the opcode.
func (op CastOp) String() string {
	if op > cast_op_begin && op < cast_op_end {
		return castOps[op]
	}
	return fmt.Sprintf("CastOp<%d>", int(op))
}

// Valid returns true if op is a known conversion opcode.
func (op CastOp) Valid() bool { return op > cast_op_begin && op < cast_op_end }

// BinaryOp represents a two-operand arithmetic or bitwise opcode.
type BinaryOp int

// Binary opcodes.
const (
	int_op_begin = BinaryOp(iota)
	Add
	Sub
	Mul
	SDiv
	UDiv
	SRem
	URem
	And
	Or
	Xor
	Shl
	LShr
	AShr
	int_op_end

	float_op_begin
	FAdd
	FSub
	FMul
	FDiv
	FRem
	float_op_end
)

var binaryOps = [...]string{
	Add:  "add",
	Sub:  "sub",
	Mul:  "mul",
	SDiv: "sdiv",
	UDiv: "udiv",
	SRem: "srem",
	URem: "urem",
	And:  "and",
	Or:   "or",
	Xor:  "xor",
	Shl:  "shl",
	LShr: "lshr",
	AShr: "ashr",
	FAdd: "fadd",
	FSub: "fsub",
	FMul: "fmul",
	FDiv: "fdiv",
	FRem: "frem",
}

// String returns the IR mnemonic of the opcode.
func (op BinaryOp) String() string {
	if op.IsInteger() || op.IsFloat() {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", int(op))
}

// IsInteger returns true if op operates on integers.
func (op BinaryOp) IsInteger() bool { return op > int_op_begin && op < int_op_end }

// IsFloat returns true if op operates on floating-point values.
func (op BinaryOp) IsFloat() bool { return op > float_op_begin && op < float_op_end }

// ICmpPred represents an integer comparison predicate.
type ICmpPred int

// Integer comparison predicates.
const (
	icmp_begin = ICmpPred(iota)
	ICmpEQ
	ICmpNE
	ICmpUGT
	ICmpUGE
	ICmpULT
	ICmpULE
	ICmpSGT
	ICmpSGE
	ICmpSLT
	ICmpSLE
	icmp_end
)

var icmpPreds = [...]string{
	ICmpEQ:  "eq",
	ICmpNE:  "ne",
	ICmpUGT: "ugt",
	ICmpUGE: "uge",
	ICmpULT: "ult",
	ICmpULE: "ule",
	ICmpSGT: "sgt",
	ICmpSGE: "sge",
	ICmpSLT: "slt",
	ICmpSLE: "sle",
}

// String returns the IR name of the predicate.
func (p ICmpPred) String() string {
	if p.Valid() {
		return icmpPreds[p]
	}
	return fmt.Sprintf("ICmpPred<%d>", int(p))
}

// Valid returns true if p is one of the ten integer predicates.
func (p ICmpPred) Valid() bool { return p > icmp_begin && p < icmp_end }

// FCmpPred represents a floating-point comparison predicate.
type FCmpPred int

// Floating-point comparison predicates. Ordered predicates are false when
// either operand is NaN; unordered predicates are true.
const (
	fcmp_begin = FCmpPred(iota)
	FCmpOEQ
	FCmpOGT
	FCmpOGE
	FCmpOLT
	FCmpOLE
	FCmpONE
	FCmpORD
	FCmpUNO
	FCmpUEQ
	FCmpUGT
	FCmpUGE
	FCmpULT
	FCmpULE
	FCmpUNE
	fcmp_end
)

var fcmpPreds = [...]string{
	FCmpOEQ: "oeq",
	FCmpOGT: "ogt",
	FCmpOGE: "oge",
	FCmpOLT: "olt",
	FCmpOLE: "ole",
	FCmpONE: "one",
	FCmpORD: "ord",
	FCmpUNO: "uno",
	FCmpUEQ: "ueq",
	FCmpUGT: "ugt",
	FCmpUGE: "uge",
	FCmpULT: "ult",
	FCmpULE: "ule",
	FCmpUNE: "une",
}

// String returns the IR name of the predicate.
func (p FCmpPred) String() string {
	if p.Valid() {
		return fcmpPreds[p]
	}
	return fmt.Sprintf("FCmpPred<%d>", int(p))
}

// Valid returns true if p is one of the fourteen floating-point predicates.
func (p FCmpPred) Valid() bool { return p > fcmp_begin && p < fcmp_end }
