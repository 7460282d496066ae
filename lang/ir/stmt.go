package ir

import "github.com/klang/buildscript/lang/token"

// Stmt is one IR instruction. The set of concrete types below is closed and
// is always consumed with an exhaustive type switch (spec.md §9 asks the
// analyzer and IR builder to prefer this over double-dispatch visitors;
// IRValueReplacer follows the same rule in replacer.go).
type Stmt interface {
	Op() Opcode
	Pos() token.Pos
	IsTerminal() bool
}

type base struct {
	op  Opcode
	pos token.Pos
}

func (b base) Op() Opcode       { return b.op }
func (b base) Pos() token.Pos   { return b.pos }
func (b base) IsTerminal() bool { return b.op.IsTerminal() }

// LoadConst loads a compile-time constant value into Result.
type LoadConst struct {
	base
	Result Value
	Const  any // a compile-time Value: string | int64 | float64 | bool | nil
}

func NewLoadConst(pos token.Pos, result Value, c any) *LoadConst {
	return &LoadConst{base{OpLoadConst, pos}, result, c}
}

// LoadSymbol reads the current value of Symbol into Result.
type LoadSymbol struct {
	base
	Result Value
	Symbol any // *resolver.Binding
}

func NewLoadSymbol(pos token.Pos, result Value, sym any) *LoadSymbol {
	return &LoadSymbol{base{OpLoadSymbol, pos}, result, sym}
}

// StoreSymbol assigns Value to Symbol.
type StoreSymbol struct {
	base
	Symbol any // *resolver.Binding
	Value  Value
}

func NewStoreSymbol(pos token.Pos, sym any, v Value) *StoreSymbol {
	return &StoreSymbol{base{OpStoreSymbol, pos}, sym, v}
}

// DeclareSymbol introduces Symbol into scope without assigning it.
type DeclareSymbol struct {
	base
	Symbol any // *resolver.Binding
}

func NewDeclareSymbol(pos token.Pos, sym any) *DeclareSymbol {
	return &DeclareSymbol{base{OpDeclareSymbol, pos}, sym}
}

// Binary computes Left Op Right into Result.
type Binary struct {
	base
	Result      Value
	Op2         BinOp
	Left, Right Value
}

func NewBinary(pos token.Pos, result Value, op BinOp, left, right Value) *Binary {
	return &Binary{base{OpBinary, pos}, result, op, left, right}
}

// Unary computes Op Operand into Result.
type Unary struct {
	base
	Result  Value
	Op2     UnOp
	Operand Value
}

func NewUnary(pos token.Pos, result Value, op UnOp, operand Value) *Unary {
	return &Unary{base{OpUnary, pos}, result, op, operand}
}

// Test compares Left and Right per Kind into Result (a boolean Value).
type Test struct {
	base
	Result      Value
	Kind        TestKind
	Left, Right Value
}

func NewTest(pos token.Pos, result Value, kind TestKind, left, right Value) *Test {
	return &Test{base{OpTest, pos}, result, kind, left, right}
}

// Defined reports whether Symbol currently has a value, into Result.
type Defined struct {
	base
	Result Value
	Symbol any // *resolver.Binding
}

func NewDefined(pos token.Pos, result Value, sym any) *Defined {
	return &Defined{base{OpDefined, pos}, result, sym}
}

// GetMember reads Target.Member into Result.
type GetMember struct {
	base
	Result Value
	Target Value
	Member string
}

func NewGetMember(pos token.Pos, result, target Value, member string) *GetMember {
	return &GetMember{base{OpGetMember, pos}, result, target, member}
}

// GetSubscript reads Target[Index] into Result.
type GetSubscript struct {
	base
	Result       Value
	Target, Index Value
}

func NewGetSubscript(pos token.Pos, result, target, index Value) *GetSubscript {
	return &GetSubscript{base{OpGetSubscript, pos}, result, target, index}
}

// SetMember assigns Target.Member = Value.
type SetMember struct {
	base
	Target Value
	Member string
	Value  Value
}

func NewSetMember(pos token.Pos, target Value, member string, v Value) *SetMember {
	return &SetMember{base{OpSetMember, pos}, target, member, v}
}

// SetSubscript assigns Target[Index] = Value.
type SetSubscript struct {
	base
	Target, Index Value
	Value         Value
}

func NewSetSubscript(pos token.Pos, target, index, v Value) *SetSubscript {
	return &SetSubscript{base{OpSetSubscript, pos}, target, index, v}
}

// Br is an unconditional jump, always the last statement of its block.
type Br struct {
	base
	Target *BasicBlock
}

func NewBr(pos token.Pos, target *BasicBlock) *Br {
	return &Br{base{OpBr, pos}, target}
}

// BrCond jumps to True if Cond is truthy, else False.
type BrCond struct {
	base
	Cond        Value
	True, False *BasicBlock
}

func NewBrCond(pos token.Pos, cond Value, t, f *BasicBlock) *BrCond {
	return &BrCond{base{OpBrCond, pos}, cond, t, f}
}

// JumpCase is one match-case target of a JumpTable.
type JumpCase struct {
	Value  Value
	Target *BasicBlock
}

// JumpTable dispatches Subject to the matching Case target, or Default.
type JumpTable struct {
	base
	Subject Value
	Cases   []JumpCase
	Default *BasicBlock
}

func NewJumpTable(pos token.Pos, subject Value, cases []JumpCase, def *BasicBlock) *JumpTable {
	return &JumpTable{base{OpJumpTable, pos}, subject, cases, def}
}

// Call invokes Target(Args...) into Result.
type Call struct {
	base
	Result Value
	Target Value
	Args   []Value
}

func NewCall(pos token.Pos, result, target Value, args []Value) *Call {
	return &Call{base{OpCall, pos}, result, target, args}
}

// Invoke calls Target.Member(Args...) into Result (a combined GetMember+Call
// for the common method-call shape, avoiding an intermediate bound-method
// value).
type Invoke struct {
	base
	Result Value
	Target Value
	Member string
	Args   []Value
}

func NewInvoke(pos token.Pos, result, target Value, member string, args []Value) *Invoke {
	return &Invoke{base{OpInvoke, pos}, result, target, member, args}
}

// Raise throws Value (Invalid for a bare re-raise inside an except block).
type Raise struct {
	base
	Value Value
}

func NewRaise(pos token.Pos, v Value) *Raise {
	return &Raise{base{OpRaise, pos}, v}
}

// Return exits the enclosing code unit with Value (Invalid for a bare
// return, equivalent to returning none).
type Return struct {
	base
	Value Value
}

func NewReturn(pos token.Pos, v Value) *Return {
	return &Return{base{OpReturn, pos}, v}
}

// Assert raises if Cond is falsy, with optional Msg.
type Assert struct {
	base
	Cond Value
	Msg  Value // Invalid if no message
}

func NewAssert(pos token.Pos, cond, msg Value) *Assert {
	return &Assert{base{OpAssert, pos}, cond, msg}
}

// SelectIncoming is one (predecessor block, incoming value) pair of a Select.
type SelectIncoming struct {
	Block *BasicBlock
	Value Value
}

// Select merges one value per predecessor block at a join point, the IR's
// only form of phi node (spec.md §4.5).
type Select struct {
	base
	Result   Value
	Incoming []SelectIncoming
}

func NewSelect(pos token.Pos, result Value, incoming []SelectIncoming) *Select {
	return &Select{base{OpSelect, pos}, result, incoming}
}

// MakeList builds a list literal from Items into Result.
type MakeList struct {
	base
	Result Value
	Items  []Value
}

func NewMakeList(pos token.Pos, result Value, items []Value) *MakeList {
	return &MakeList{base{OpMakeList, pos}, result, items}
}

// MakeMap builds a map literal from parallel Keys/Values into Result.
type MakeMap struct {
	base
	Result      Value
	Keys, Values []Value
}

func NewMakeMap(pos token.Pos, result Value, keys, values []Value) *MakeMap {
	return &MakeMap{base{OpMakeMap, pos}, result, keys, values}
}

// MakeClosure builds a closure over Code, capturing Captures (in the
// resolver's FreeVars order) into Result.
type MakeClosure struct {
	base
	Result   Value
	Code     *CodeBlock
	Captures []Value
}

func NewMakeClosure(pos token.Pos, result Value, code *CodeBlock, captures []Value) *MakeClosure {
	return &MakeClosure{base{OpMakeClosure, pos}, result, code, captures}
}

// Import loads the module at Path into Result.
type Import struct {
	base
	Result Value
	Path   string
}

func NewImport(pos token.Pos, result Value, path string) *Import {
	return &Import{base{OpImport, pos}, result, path}
}

// Export re-exports Symbol's current Value from the enclosing chunk.
type Export struct {
	base
	Symbol any // *resolver.Binding
	Value  Value
}

func NewExport(pos token.Pos, sym any, v Value) *Export {
	return &Export{base{OpExport, pos}, sym, v}
}
