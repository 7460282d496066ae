package ir

// Opcode enumerates the IR instruction kinds of spec.md §3, matching the
// original implementation's IROpCode (original_source/Header/.../
// IRStatement.h) one-for-one.
type Opcode uint8

const (
	OpLoadConst Opcode = iota
	OpLoadSymbol
	OpStoreSymbol
	OpDeclareSymbol
	OpBinary
	OpUnary
	OpTest
	OpDefined
	OpGetMember
	OpGetSubscript
	OpSetMember
	OpSetSubscript
	OpBr
	OpBrCond
	OpJumpTable
	OpCall
	OpInvoke
	OpRaise
	OpReturn
	OpAssert
	OpSelect
	OpMakeList
	OpMakeMap
	OpMakeClosure
	OpImport
	OpExport
)

var opcodeNames = [...]string{
	OpLoadConst:     "LOADCONST",
	OpLoadSymbol:    "LOADSYMBOL",
	OpStoreSymbol:   "STORESYMBOL",
	OpDeclareSymbol: "DECLARESYMBOL",
	OpBinary:        "BINARY",
	OpUnary:         "UNARY",
	OpTest:          "TEST",
	OpDefined:       "DEFINED",
	OpGetMember:     "GETMEMBER",
	OpGetSubscript:  "GETSUBSCRIPT",
	OpSetMember:     "SETMEMBER",
	OpSetSubscript:  "SETSUBSCRIPT",
	OpBr:            "BR",
	OpBrCond:        "BRCOND",
	OpJumpTable:     "JUMPTABLE",
	OpCall:          "CALL",
	OpInvoke:        "INVOKE",
	OpRaise:         "RAISE",
	OpReturn:        "RETURN",
	OpAssert:        "ASSERT",
	OpSelect:        "SELECT",
	OpMakeList:      "MAKELIST",
	OpMakeMap:       "MAKEMAP",
	OpMakeClosure:   "MAKECLOSURE",
	OpImport:        "IMPORT",
	OpExport:        "EXPORT",
}

func (op Opcode) String() string {
	if int(op) >= len(opcodeNames) {
		return "OP(?)"
	}
	return opcodeNames[op]
}

// IsTerminal reports whether op ends control flow in its BasicBlock, per
// the original IRStatement::IsTerminal.
func (op Opcode) IsTerminal() bool {
	switch op {
	case OpBr, OpBrCond, OpJumpTable, OpReturn, OpRaise:
		return true
	default:
		return false
	}
}

// BinOp is the kind of a binary arithmetic/bitwise IR operation.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Shr
	Shl
	And
	Or
	Xor
)

var binOpNames = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%", Shr: ">>", Shl: "<<", And: "&", Or: "|", Xor: "^"}

func (b BinOp) String() string {
	if int(b) >= len(binOpNames) {
		return "binop(?)"
	}
	return binOpNames[b]
}

// UnOp is the kind of a unary IR operation.
type UnOp uint8

const (
	Not UnOp = iota
	Neg
)

func (u UnOp) String() string {
	if u == Not {
		return "not"
	}
	return "-"
}

// TestKind is the kind of comparison performed by a Test statement.
type TestKind uint8

const (
	Greater TestKind = iota
	GreaterOrEqual
	Less
	LessOrEqual
	Equal
	NotEqual
	Instance
	NotInstance
	Contain
	NotContain
)

var testKindNames = [...]string{
	Greater: ">", GreaterOrEqual: ">=", Less: "<", LessOrEqual: "<=",
	Equal: "==", NotEqual: "!=", Instance: "is", NotInstance: "is not",
	Contain: "in", NotContain: "not in",
}

func (k TestKind) String() string {
	if int(k) >= len(testKindNames) {
		return "test(?)"
	}
	return testKindNames[k]
}
