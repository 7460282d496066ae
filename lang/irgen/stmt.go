package irgen

import (
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/token"
)

// stmt lowers one statement into the current builder.
func (g *generator) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BadStmt:
		// parsing already failed; nothing to lower
	case *ast.PassStmt:
		// no-op
	case *ast.ExprStmt:
		g.expr(s.Expr)
	case *ast.AssignStmt:
		g.assignStmt(s)
	case *ast.IfStmt:
		g.ifStmt(s)
	case *ast.MatchStmt:
		g.matchStmt(s)
	case *ast.ForStmt:
		g.forStmt(s)
	case *ast.WhileStmt:
		g.whileStmt(s)
	case *ast.TryStmt:
		g.tryStmt(s)
	case *ast.WithStmt:
		g.withStmt(s)
	case *ast.BreakStmt:
		g.breakStmt(s)
	case *ast.ContinueStmt:
		g.continueStmt(s)
	case *ast.ReturnStmt:
		g.returnStmt(s)
	case *ast.RaiseStmt:
		g.raiseStmt(s)
	case *ast.AssertStmt:
		g.assertStmt(s)
	case *ast.ImportDecl:
		g.importDecl(s)
	case *ast.ExportDecl:
		g.exportDecl(s)
	case *ast.VarDecl:
		g.varDecl(s)
	case *ast.FuncDecl:
		g.funcDecl(s)
	case *ast.TaskDecl:
		g.taskDecl(s)
	case *ast.ClassDecl:
		g.classDecl(s)
	default:
		unexpectedStmt(s)
	}
}

// loadTarget reads the current value of an assignable expression (spec.md's
// IdentExpr/DotExpr/IndexExpr), for the read half of a compound assignment.
func (g *generator) loadTarget(e ast.Expr) ir.Value {
	b := g.cur()
	switch e := ast.Unwrap(e).(type) {
	case *ast.IdentExpr:
		return b.ReadVariable(sym(e), b.Current())
	case *ast.DotExpr:
		target := g.expr(e.Left)
		result := b.NewValue()
		b.Emit(ir.NewGetMember(e.Dot, result, target, e.Right.Lit))
		return result
	case *ast.IndexExpr:
		target := g.expr(e.Prefix)
		index := g.expr(e.Index)
		result := b.NewValue()
		b.Emit(ir.NewGetSubscript(e.Lbrack, result, target, index))
		return result
	default:
		unexpectedExpr(e)
		return ir.Invalid
	}
}

// storeTarget assigns v to an assignable expression.
func (g *generator) storeTarget(e ast.Expr, v ir.Value) {
	b := g.cur()
	switch e := ast.Unwrap(e).(type) {
	case *ast.IdentExpr:
		b.WriteVariable(sym(e), v)
	case *ast.DotExpr:
		target := g.expr(e.Left)
		b.Emit(ir.NewSetMember(e.Dot, target, e.Right.Lit, v))
	case *ast.IndexExpr:
		target := g.expr(e.Prefix)
		index := g.expr(e.Index)
		b.Emit(ir.NewSetSubscript(e.Lbrack, target, index, v))
	default:
		unexpectedExpr(e)
	}
}

func (g *generator) assignStmt(s *ast.AssignStmt) {
	b := g.cur()
	if s.Op != token.EQ {
		target := s.Left[0]
		cur := g.loadTarget(target)
		rhs := g.expr(s.Right[0])
		result := b.NewValue()
		b.Emit(ir.NewBinary(s.AssignTok, result, compoundBinOp(s.Op), cur, rhs))
		g.storeTarget(target, result)
		return
	}

	vals := make([]ir.Value, len(s.Right))
	for i, r := range s.Right {
		vals[i] = g.expr(r)
	}
	for i, l := range s.Left {
		g.storeTarget(l, vals[i])
	}
}

func (g *generator) ifStmt(s *ast.IfStmt) {
	b := g.cur()
	cond := g.expr(s.Cond)
	entry := b.Current()

	thenBlk := b.NewBlock("if.then")
	joinBlk := b.NewBlock("if.join")
	elseBlk := joinBlk
	if s.False != nil {
		elseBlk = b.NewBlock("if.else")
	}

	b.Emit(ir.NewBrCond(s.If, cond, thenBlk, elseBlk))
	entry.AddSuccessor(thenBlk)
	entry.AddSuccessor(elseBlk)
	b.SealBlock(thenBlk)
	if elseBlk != joinBlk {
		b.SealBlock(elseBlk)
	}

	b.SetCurrent(thenBlk)
	g.block(s.True)
	if b.Current().Terminator() == nil {
		b.Emit(ir.NewBr(s.If, joinBlk))
		b.Current().AddSuccessor(joinBlk)
	}

	if s.False != nil {
		b.SetCurrent(elseBlk)
		g.block(s.False)
		if b.Current().Terminator() == nil {
			b.Emit(ir.NewBr(s.If, joinBlk))
			b.Current().AddSuccessor(joinBlk)
		}
	}

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
}

// whileStmt lowers to the usual three-block shape: a header that evaluates
// Cond and re-evaluates it on every iteration, a body, and a join block.
func (g *generator) whileStmt(s *ast.WhileStmt) {
	b := g.cur()
	headerBlk := b.NewBlock("while.header")
	bodyBlk := b.NewBlock("while.body")
	joinBlk := b.NewBlock("while.join")

	entry := b.Current()
	b.Emit(ir.NewBr(s.While, headerBlk))
	entry.AddSuccessor(headerBlk)

	b.SetCurrent(headerBlk)
	cond := g.expr(s.Cond)
	b.Emit(ir.NewBrCond(s.While, cond, bodyBlk, joinBlk))
	b.Current().AddSuccessor(bodyBlk)
	b.Current().AddSuccessor(joinBlk)
	b.SealBlock(bodyBlk)

	b.PushLoop(joinBlk, headerBlk)
	var labelSym any
	if s.Label != nil {
		labelSym = sym(s.Label.Name)
		g.pushLoopLabel(labelSym, joinBlk, headerBlk)
	}

	b.SetCurrent(bodyBlk)
	g.block(s.Body)
	if b.Current().Terminator() == nil {
		b.Emit(ir.NewBr(s.While, headerBlk))
		b.Current().AddSuccessor(headerBlk)
	}

	b.PopLoop()
	if s.Label != nil {
		g.popLoopLabel(labelSym)
	}

	b.SealBlock(headerBlk)
	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
}

// forStmt lowers "for x, y in expr { ... }" against a hasNext/next iterator
// protocol (Invoke calls by convention: no dedicated for-each opcode exists,
// and the object that Right evaluates to is expected to respond to
// "iterate", "hasNext" and "next" the way the runtime's built-in collections
// do). Multiple loop variables destructure the yielded item by index.
func (g *generator) forStmt(s *ast.ForStmt) {
	b := g.cur()
	right := g.expr(s.Right)
	iter := b.NewValue()
	b.Emit(ir.NewInvoke(s.In, iter, right, "iterate", nil))
	b.WriteVariable(s, iter)

	headerBlk := b.NewBlock("for.header")
	bodyBlk := b.NewBlock("for.body")
	joinBlk := b.NewBlock("for.join")

	entry := b.Current()
	b.Emit(ir.NewBr(s.For, headerBlk))
	entry.AddSuccessor(headerBlk)

	b.SetCurrent(headerBlk)
	iterVal := b.ReadVariable(s, headerBlk)
	hasNext := b.NewValue()
	b.Emit(ir.NewInvoke(s.In, hasNext, iterVal, "hasNext", nil))
	b.Emit(ir.NewBrCond(s.In, hasNext, bodyBlk, joinBlk))
	b.Current().AddSuccessor(bodyBlk)
	b.Current().AddSuccessor(joinBlk)
	b.SealBlock(bodyBlk)

	b.PushLoop(joinBlk, headerBlk)
	var labelSym any
	if s.Label != nil {
		labelSym = sym(s.Label.Name)
		g.pushLoopLabel(labelSym, joinBlk, headerBlk)
	}

	b.SetCurrent(bodyBlk)
	item := b.NewValue()
	b.Emit(ir.NewInvoke(s.In, item, iterVal, "next", nil))
	if len(s.Left) == 1 {
		b.WriteVariable(sym(s.Left[0]), item)
	} else {
		for i, id := range s.Left {
			idx := g.emitConst(b, s.In, int64(i))
			v := b.NewValue()
			b.Emit(ir.NewGetSubscript(s.In, v, item, idx))
			b.WriteVariable(sym(id), v)
		}
	}
	g.block(s.Body)
	if b.Current().Terminator() == nil {
		b.Emit(ir.NewBr(s.For, headerBlk))
		b.Current().AddSuccessor(headerBlk)
	}

	b.PopLoop()
	if s.Label != nil {
		g.popLoopLabel(labelSym)
	}

	b.SealBlock(headerBlk)
	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
}

// matchStmt dispatches on Subject across Cases, using a dense JumpTable when
// every pattern is an integer literal (spec.md §4.5) and falling back to a
// sequential Test/BrCond chain otherwise.
func (g *generator) matchStmt(s *ast.MatchStmt) {
	b := g.cur()
	subject := g.expr(s.Subject)
	joinBlk := b.NewBlock("match.join")

	if allIntPatterns(s.Cases) {
		g.matchJumpTable(s, subject, joinBlk)
	} else {
		g.matchChain(s, subject, joinBlk)
	}

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
}

func allIntPatterns(cases []*ast.MatchCase) bool {
	for _, c := range cases {
		if c.IsDefault {
			continue
		}
		for _, p := range c.Patterns {
			lit, ok := ast.Unwrap(p).(*ast.LiteralExpr)
			if !ok || lit.Type != token.INT {
				return false
			}
		}
	}
	return true
}

func (g *generator) matchJumpTable(s *ast.MatchStmt, subject ir.Value, joinBlk *ir.BasicBlock) {
	b := g.cur()
	entry := b.Current()

	caseBlocks := make([]*ir.BasicBlock, len(s.Cases))
	var cases []ir.JumpCase
	var defaultBlk *ir.BasicBlock
	for i, c := range s.Cases {
		blk := b.NewBlock("match.case")
		caseBlocks[i] = blk
		if c.IsDefault {
			defaultBlk = blk
			continue
		}
		for _, p := range c.Patterns {
			lit := ast.Unwrap(p).(*ast.LiteralExpr)
			v := g.emitConst(b, lit.Start, lit.Value)
			cases = append(cases, ir.JumpCase{Value: v, Target: blk})
		}
	}
	if defaultBlk == nil {
		defaultBlk = joinBlk
	}

	b.Emit(ir.NewJumpTable(s.Match, subject, cases, defaultBlk))
	entry.AddSuccessor(defaultBlk)
	for i, c := range s.Cases {
		if !c.IsDefault {
			entry.AddSuccessor(caseBlocks[i])
		}
	}

	for i, c := range s.Cases {
		blk := caseBlocks[i]
		b.SealBlock(blk)
		b.SetCurrent(blk)
		g.block(c.Body)
		if b.Current().Terminator() == nil {
			b.Emit(ir.NewBr(s.Rbrace, joinBlk))
			b.Current().AddSuccessor(joinBlk)
		}
	}
}

// matchChain lowers a match with non-integer patterns as a sequential chain
// of equality tests: each case tests its patterns in order (an OR of Equal
// tests), falling through to the next case's tests on no match.
func (g *generator) matchChain(s *ast.MatchStmt, subject ir.Value, joinBlk *ir.BasicBlock) {
	b := g.cur()
	cur := b.Current()

	for _, c := range s.Cases {
		bodyBlk := b.NewBlock("match.case")
		b.SetCurrent(cur)

		if c.IsDefault {
			b.Emit(ir.NewBr(c.Case, bodyBlk))
			cur.AddSuccessor(bodyBlk)
			b.SealBlock(bodyBlk)
			cur = nil
		} else {
			for i, p := range c.Patterns {
				pos, _ := p.Span()
				patVal := g.expr(p)
				testVal := b.NewValue()
				b.Emit(ir.NewTest(pos, testVal, ir.Equal, subject, patVal))

				testBlk := cur
				nextBlk := b.NewBlock("match.test")
				if i == len(c.Patterns)-1 {
					nextBlk.Label = "match.next"
				}
				b.Emit(ir.NewBrCond(pos, testVal, bodyBlk, nextBlk))
				testBlk.AddSuccessor(bodyBlk)
				testBlk.AddSuccessor(nextBlk)
				b.SetCurrent(nextBlk)
				cur = nextBlk
			}
			b.SealBlock(bodyBlk)
			b.SealBlock(cur)
		}

		b.SetCurrent(bodyBlk)
		g.block(c.Body)
		if b.Current().Terminator() == nil {
			b.Emit(ir.NewBr(s.Rbrace, joinBlk))
			b.Current().AddSuccessor(joinBlk)
		}

		if cur == nil {
			return
		}
	}

	b.SetCurrent(cur)
	if b.Current().Terminator() == nil {
		b.Emit(ir.NewBr(s.Rbrace, joinBlk))
		b.Current().AddSuccessor(joinBlk)
	}
}

// tryStmt lowers a try/except/finally statement. Except patterns are
// evaluated once, ahead of the protected region, matching ExceptHandler's
// Pattern being an already-computed Value rather than an Expr for the
// runtime's dispatcher to re-test per raised exception.
//
// Finally is duplicated at every normal-completion exit of the body and of
// each handler. It is not re-run on a break/continue/return/raise taken from
// the middle of the body or a handler — a known, documented simplification;
// fully general finally semantics would require rewriting every early exit
// within the protected region, which this pass does not yet do.
func (g *generator) tryStmt(s *ast.TryStmt) {
	b := g.cur()
	patVals := make([]ir.Value, len(s.Excepts))
	for i, ex := range s.Excepts {
		if ex.Pattern != nil {
			patVals[i] = g.expr(ex.Pattern)
		} else {
			patVals[i] = ir.Invalid
		}
	}

	beginBlk := b.NewBlock("try.begin")
	joinBlk := b.NewBlock("try.join")
	entry := b.Current()
	b.Emit(ir.NewBr(s.Try, beginBlk))
	entry.AddSuccessor(beginBlk)
	b.SealBlock(beginBlk)

	b.SetCurrent(beginBlk)
	g.block(s.Body)
	bodyEnd := b.Current()
	if bodyEnd.Terminator() == nil {
		if s.Finally != nil {
			g.block(s.Finally)
			bodyEnd = b.Current()
		}
		if bodyEnd.Terminator() == nil {
			b.Emit(ir.NewBr(s.Try, joinBlk))
			bodyEnd.AddSuccessor(joinBlk)
		}
	}

	var handlers []ir.ExceptHandler
	for i, ex := range s.Excepts {
		handlerBlk := b.NewBlock("try.except")
		b.SealBlock(handlerBlk)
		b.SetCurrent(handlerBlk)
		if ex.As != nil {
			// The runtime seeds the caught exception at handler entry,
			// exactly like a parameter realized at function entry.
			excVal := b.NewValue()
			b.WriteVariable(sym(ex.As), excVal)
		}
		g.block(ex.Body)
		hEnd := b.Current()
		if hEnd.Terminator() == nil {
			if s.Finally != nil {
				g.block(s.Finally)
				hEnd = b.Current()
			}
			if hEnd.Terminator() == nil {
				b.Emit(ir.NewBr(ex.Except, joinBlk))
				hEnd.AddSuccessor(joinBlk)
			}
		}
		handlers = append(handlers, ir.ExceptHandler{Pattern: patVals[i], Entry: handlerBlk})
	}

	b.AddHandler(ir.ExceptInfo{Begin: beginBlk, End: bodyEnd, Handlers: handlers})

	b.SealBlock(joinBlk)
	b.SetCurrent(joinBlk)
}

// withStmt lowers a resource-scoped statement: acquire, run Body, release.
// Like tryStmt's finally, release only runs on normal completion of Body.
func (g *generator) withStmt(s *ast.WithStmt) {
	b := g.cur()
	resource := g.expr(s.Right)
	if s.As != nil {
		b.WriteVariable(sym(s.As), resource)
	}
	g.block(s.Body)
	if b.Current().Terminator() == nil {
		closeResult := b.NewValue()
		b.Emit(ir.NewInvoke(s.With, closeResult, resource, "close", nil))
	}
}

func (g *generator) breakStmt(s *ast.BreakStmt) {
	b := g.cur()
	brk, _ := g.loopTargetsFor(s.Label)
	b.Emit(ir.NewBr(s.Break, brk))
	b.Current().AddSuccessor(brk)
}

func (g *generator) continueStmt(s *ast.ContinueStmt) {
	b := g.cur()
	_, cont := g.loopTargetsFor(s.Label)
	b.Emit(ir.NewBr(s.Continue, cont))
	b.Current().AddSuccessor(cont)
}

func (g *generator) returnStmt(s *ast.ReturnStmt) {
	b := g.cur()
	var v ir.Value
	if s.Expr != nil {
		v = g.expr(s.Expr)
	} else {
		v = g.emitConst(b, s.Return, nil)
	}
	b.Emit(ir.NewReturn(s.Return, v))
}

func (g *generator) raiseStmt(s *ast.RaiseStmt) {
	b := g.cur()
	v := ir.Invalid
	if s.Expr != nil {
		v = g.expr(s.Expr)
	}
	b.Emit(ir.NewRaise(s.Raise, v))
}

func (g *generator) assertStmt(s *ast.AssertStmt) {
	b := g.cur()
	cond := g.expr(s.Cond)
	msg := ir.Invalid
	if s.Msg != nil {
		msg = g.expr(s.Msg)
	}
	b.Emit(ir.NewAssert(s.Assert, cond, msg))
}
