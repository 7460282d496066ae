package irgen

import (
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/token"
)

// expr lowers one expression to the Value holding its result.
func (g *generator) expr(e ast.Expr) ir.Value {
	switch e := e.(type) {
	case *ast.BadExpr:
		unexpectedExpr(e)
		return ir.Invalid
	case *ast.ParenExpr:
		return g.expr(e.Expr)
	case *ast.LiteralExpr:
		return g.literalExpr(e)
	case *ast.IdentExpr:
		b := g.cur()
		return b.ReadVariable(sym(e), b.Current())
	case *ast.InterpStringExpr:
		return g.interpStringExpr(e)
	case *ast.ArrayExpr:
		return g.arrayExpr(e)
	case *ast.MapExpr:
		return g.mapExpr(e)
	case *ast.UnaryOpExpr:
		return g.unaryOpExpr(e)
	case *ast.BinOpExpr:
		return g.binOpExpr(e)
	case *ast.TernaryExpr:
		return g.ternaryExpr(e)
	case *ast.CallExpr:
		return g.callExpr(e)
	case *ast.DotExpr:
		return g.dotExpr(e)
	case *ast.IndexExpr:
		return g.indexExpr(e)
	case *ast.ClosureExpr:
		return g.closureExpr(e)
	default:
		unexpectedExpr(e)
		return ir.Invalid
	}
}

func (g *generator) literalExpr(e *ast.LiteralExpr) ir.Value {
	b := g.cur()
	return g.emitConst(b, e.Start, e.Value)
}

// interpStringExpr folds an interpolated string's parts with the language's
// polymorphic "+" (no dedicated Concat opcode exists, per lang/ir/opcode.go),
// left to right. A literal with zero parts lowers to the empty string.
func (g *generator) interpStringExpr(e *ast.InterpStringExpr) ir.Value {
	b := g.cur()
	if len(e.Parts) == 0 {
		return g.emitConst(b, e.Start, "")
	}
	acc := g.expr(e.Parts[0])
	for _, part := range e.Parts[1:] {
		v := g.expr(part)
		result := b.NewValue()
		b.Emit(ir.NewBinary(e.Start, result, ir.Add, acc, v))
		acc = result
	}
	return acc
}

func (g *generator) arrayExpr(e *ast.ArrayExpr) ir.Value {
	b := g.cur()
	items := make([]ir.Value, len(e.Items))
	for i, it := range e.Items {
		items[i] = g.expr(it)
	}
	result := b.NewValue()
	b.Emit(ir.NewMakeList(e.Lbrack, result, items))
	return result
}

func (g *generator) mapExpr(e *ast.MapExpr) ir.Value {
	b := g.cur()
	keys := make([]ir.Value, len(e.Items))
	vals := make([]ir.Value, len(e.Items))
	for i, kv := range e.Items {
		keys[i] = g.expr(kv.Key)
		vals[i] = g.expr(kv.Value)
	}
	result := b.NewValue()
	b.Emit(ir.NewMakeMap(e.Lbrace, result, keys, vals))
	return result
}

// unaryOpExpr lowers a prefix operator. "+" is a syntactic pass-through (no
// IR is emitted for it: it has no runtime effect beyond the parse). "~" has
// no dedicated bitwise-complement opcode, so it lowers to "operand ^ -1".
func (g *generator) unaryOpExpr(e *ast.UnaryOpExpr) ir.Value {
	b := g.cur()
	switch e.Type {
	case token.PLUS:
		return g.expr(e.Right)
	case token.MINUS:
		v := g.expr(e.Right)
		result := b.NewValue()
		b.Emit(ir.NewUnary(e.Op, result, ir.Neg, v))
		return result
	case token.NOT:
		v := g.expr(e.Right)
		result := b.NewValue()
		b.Emit(ir.NewUnary(e.Op, result, ir.Not, v))
		return result
	case token.TILDE:
		v := g.expr(e.Right)
		negOne := g.emitConst(b, e.Op, int64(-1))
		result := b.NewValue()
		b.Emit(ir.NewBinary(e.Op, result, ir.Xor, v, negOne))
		return result
	case token.MUST:
		v := g.expr(e.Right)
		none := g.emitConst(b, e.Op, nil)
		cond := b.NewValue()
		b.Emit(ir.NewTest(e.Op, cond, ir.NotEqual, v, none))
		b.Emit(ir.NewAssert(e.Op, cond, ir.Invalid))
		return v
	case token.TRY:
		return g.tryExpr(e)
	default:
		unexpectedExpr(e)
		return ir.Invalid
	}
}

// tryExpr evaluates Right under a protected region, yielding none instead of
// propagating any raised exception — the expression-level counterpart of a
// try statement with a catch-all handler and no finally.
func (g *generator) tryExpr(e *ast.UnaryOpExpr) ir.Value {
	b := g.cur()
	beginBlk := b.NewBlock("tryexpr.begin")
	handlerBlk := b.NewBlock("tryexpr.handler")
	joinBlk := b.NewBlock("tryexpr.join")

	entry := b.Current()
	b.Emit(ir.NewBr(e.Op, beginBlk))
	entry.AddSuccessor(beginBlk)
	b.SealBlock(beginBlk)

	b.SetCurrent(beginBlk)
	normalVal := g.expr(e.Right)
	normalEnd := b.Current()
	b.Emit(ir.NewBr(e.Op, joinBlk))
	normalEnd.AddSuccessor(joinBlk)

	b.SealBlock(handlerBlk)
	b.SetCurrent(handlerBlk)
	noneVal := g.emitConst(b, e.Op, nil)
	b.Emit(ir.NewBr(e.Op, joinBlk))
	handlerBlk.AddSuccessor(joinBlk)

	b.AddHandler(ir.ExceptInfo{
		Begin: beginBlk,
		End:   normalEnd,
		Handlers: []ir.ExceptHandler{
			{Pattern: ir.Invalid, Entry: handlerBlk},
		},
	})

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
	result := b.NewValue()
	b.Emit(ir.NewSelect(e.Op, result, []ir.SelectIncoming{
		{Block: normalEnd, Value: normalVal},
		{Block: handlerBlk, Value: noneVal},
	}))
	return result
}

// binOpExpr lowers a binary expression. AND/OR short-circuit via explicit
// branching and a manually-emitted Select merging the two evaluation paths
// (spec.md §4.5: Select is the IR's only phi node, and this is a deliberate
// use of it outside the builder's automatic SSA-renaming mechanism). Every
// other operator maps directly onto a single Binary or Test instruction.
func (g *generator) binOpExpr(e *ast.BinOpExpr) ir.Value {
	if e.Type == token.AND || e.Type == token.OR {
		return g.shortCircuit(e)
	}
	b := g.cur()
	left := g.expr(e.Left)
	right := g.expr(e.Right)
	result := b.NewValue()
	if kind, ok := tokenToTestKind(e.Type); ok {
		b.Emit(ir.NewTest(e.Op, result, kind, left, right))
		return result
	}
	op := tokenToBinOp(e.Type)
	b.Emit(ir.NewBinary(e.Op, result, op, left, right))
	return result
}

func (g *generator) shortCircuit(e *ast.BinOpExpr) ir.Value {
	b := g.cur()
	left := g.expr(e.Left)
	leftEnd := b.Current()

	rhsBlk := b.NewBlock("logic.rhs")
	joinBlk := b.NewBlock("logic.join")

	if e.Type == token.AND {
		b.Emit(ir.NewBrCond(e.Op, left, rhsBlk, joinBlk))
	} else {
		b.Emit(ir.NewBrCond(e.Op, left, joinBlk, rhsBlk))
	}
	leftEnd.AddSuccessor(rhsBlk)
	leftEnd.AddSuccessor(joinBlk)
	b.SealBlock(rhsBlk)

	b.SetCurrent(rhsBlk)
	right := g.expr(e.Right)
	rhsEnd := b.Current()
	b.Emit(ir.NewBr(e.Op, joinBlk))
	rhsEnd.AddSuccessor(joinBlk)

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
	result := b.NewValue()
	b.Emit(ir.NewSelect(e.Op, result, []ir.SelectIncoming{
		{Block: leftEnd, Value: left},
		{Block: rhsEnd, Value: right},
	}))
	return result
}

func tokenToTestKind(t token.Token) (ir.TestKind, bool) {
	switch t {
	case token.LT:
		return ir.Less, true
	case token.GT:
		return ir.Greater, true
	case token.GE:
		return ir.GreaterOrEqual, true
	case token.LE:
		return ir.LessOrEqual, true
	case token.EQL:
		return ir.Equal, true
	case token.NEQ:
		return ir.NotEqual, true
	case token.IS:
		return ir.Instance, true
	case token.IN:
		return ir.Contain, true
	default:
		return 0, false
	}
}

func tokenToBinOp(t token.Token) ir.BinOp {
	switch t {
	case token.PLUS:
		return ir.Add
	case token.MINUS:
		return ir.Sub
	case token.STAR:
		return ir.Mul
	case token.SLASH:
		return ir.Div
	case token.PERCENT:
		return ir.Mod
	case token.SHR:
		return ir.Shr
	case token.SHL:
		return ir.Shl
	case token.AMPERSAND:
		return ir.And
	case token.PIPE:
		return ir.Or
	case token.CARET:
		return ir.Xor
	default:
		panic("irgen: unexpected binary operator " + t.String())
	}
}

// compoundBinOp decodes a compound-assignment operator's base binary
// operator. PLUS_EQ..CARET_EQ mirrors PLUS..CARET in the same relative
// order (token.go), so the base operator is a constant offset away.
func compoundBinOp(t token.Token) ir.BinOp {
	return tokenToBinOp(t - token.PLUS_EQ + token.PLUS)
}

// ternaryExpr lowers "Then if Cond else Alt" with the same three-block
// then/else/join shape as an if statement, merging the two results with a
// manually-emitted Select.
func (g *generator) ternaryExpr(e *ast.TernaryExpr) ir.Value {
	b := g.cur()
	cond := g.expr(e.Cond)
	entry := b.Current()

	thenBlk := b.NewBlock("ternary.then")
	elseBlk := b.NewBlock("ternary.else")
	joinBlk := b.NewBlock("ternary.join")

	b.Emit(ir.NewBrCond(e.If, cond, thenBlk, elseBlk))
	entry.AddSuccessor(thenBlk)
	entry.AddSuccessor(elseBlk)
	b.SealBlock(thenBlk)
	b.SealBlock(elseBlk)

	b.SetCurrent(thenBlk)
	thenVal := g.expr(e.Then)
	thenEnd := b.Current()
	b.Emit(ir.NewBr(e.If, joinBlk))
	thenEnd.AddSuccessor(joinBlk)

	b.SetCurrent(elseBlk)
	altVal := g.expr(e.Alt)
	altEnd := b.Current()
	b.Emit(ir.NewBr(e.Else, joinBlk))
	altEnd.AddSuccessor(joinBlk)

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
	result := b.NewValue()
	b.Emit(ir.NewSelect(e.If, result, []ir.SelectIncoming{
		{Block: thenEnd, Value: thenVal},
		{Block: altEnd, Value: altVal},
	}))
	return result
}

// callExpr dispatches to Invoke for a method-call shape (x.y(...)), which
// bundles the member read and the call into one opcode, and to Call
// otherwise (a bare function value being invoked).
func (g *generator) callExpr(e *ast.CallExpr) ir.Value {
	b := g.cur()
	args := make([]ir.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.expr(a)
	}
	result := b.NewValue()
	if dot, ok := ast.Unwrap(e.Fn).(*ast.DotExpr); ok {
		target := g.expr(dot.Left)
		b.Emit(ir.NewInvoke(e.Lparen, result, target, dot.Right.Lit, args))
		return result
	}
	fn := g.expr(e.Fn)
	b.Emit(ir.NewCall(e.Lparen, result, fn, args))
	return result
}

func (g *generator) dotExpr(e *ast.DotExpr) ir.Value {
	b := g.cur()
	target := g.expr(e.Left)
	result := b.NewValue()
	b.Emit(ir.NewGetMember(e.Dot, result, target, e.Right.Lit))
	return result
}

func (g *generator) indexExpr(e *ast.IndexExpr) ir.Value {
	b := g.cur()
	target := g.expr(e.Prefix)
	index := g.expr(e.Index)
	result := b.NewValue()
	b.Emit(ir.NewGetSubscript(e.Lbrack, result, target, index))
	return result
}

// closureExpr lowers an anonymous function literal: its own code unit, built
// and captured exactly like a named def's, minus the self-name binding (an
// anonymous closure cannot refer to itself by name).
func (g *generator) closureExpr(e *ast.ClosureExpr) ir.Value {
	fn := g.functions[e]
	g.pushFunction("<closure>", paramSyms(e.Sig), e.Sig.DotDotDot.IsValid(), fn)
	g.block(e.Body)
	return g.makeClosure(e.Def, nil)
}
