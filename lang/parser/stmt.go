package parser

import (
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/token"
)

// parseStmt parses and returns the next statement or declaration, or nil for
// a statement to ignore/skip (the ";" statement). A parse error resynchronizes
// to the next safe point (see syncToks) and returns a BadStmt spanning the
// skipped interval, rather than aborting the whole block.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.val.Pos

	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				stmt = &ast.BadStmt{
					Start: start,
					End:   p.syncAfterError(),
				}
				return
			}
			panic(err)
		}
	}()

	switch p.tok {
	case token.SEMI:
		// ignore empty statements
		p.advance()
		return nil

	case token.IMPORT:
		return p.parseImportDecl()
	case token.EXPORT:
		return p.parseExportDecl()
	case token.VAR, token.CONST:
		return p.parseVarDecl()
	case token.DEF:
		return p.parseFuncDecl()
	case token.TASK:
		return p.parseTaskDecl()
	case token.CLASS:
		return p.parseClassDecl()

	case token.IF:
		return p.parseIfStmt()
	case token.MATCH:
		return p.parseMatchStmt()
	case token.FOR:
		return p.parseForStmt(nil)
	case token.WHILE:
		return p.parseWhileStmt(nil)
	case token.COLON:
		lbl := p.parseLabel()
		switch p.tok {
		case token.FOR:
			return p.parseForStmt(lbl)
		case token.WHILE:
			return p.parseWhileStmt(lbl)
		default:
			p.expect(token.FOR, token.WHILE)
			panic("unreachable")
		}
	case token.TRY:
		return p.parseTryStmt()
	case token.WITH:
		return p.parseWithStmt()

	case token.BREAK:
		return p.parseBreakStmt()
	case token.CONTINUE:
		return p.parseContinueStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.RAISE:
		return p.parseRaiseStmt()
	case token.ASSERT:
		return p.parseAssertStmt()
	case token.PASS:
		return p.parsePassStmt()

	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseDecl parses one of the declaration kinds that may follow "export".
func (p *parser) parseDecl() ast.Decl {
	switch p.tok {
	case token.VAR, token.CONST:
		return p.parseVarDecl()
	case token.DEF:
		return p.parseFuncDecl()
	case token.TASK:
		return p.parseTaskDecl()
	case token.CLASS:
		return p.parseClassDecl()
	default:
		p.expect(token.VAR, token.CONST, token.DEF, token.TASK, token.CLASS)
		panic("unreachable")
	}
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	var d ast.ImportDecl
	d.Import = p.expect(token.IMPORT)
	d.Path = p.parseStringLiteral()
	if p.tok == token.AS {
		d.As = p.expect(token.AS)
		d.Alias = p.parseIdentExpr()
	}
	return &d
}

func (p *parser) parseExportDecl() *ast.ExportDecl {
	var d ast.ExportDecl
	d.Export = p.expect(token.EXPORT)
	d.Decl = p.parseDecl()
	return &d
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	var d ast.VarDecl
	d.DeclType = p.tok
	d.Start = p.expect(token.VAR, token.CONST)

	d.Left = append(d.Left, p.parseIdentExpr())
	for p.tok == token.COMMA {
		p.advance()
		d.Left = append(d.Left, p.parseIdentExpr())
	}

	if p.tok == token.EQ {
		d.Assign = p.expect(token.EQ)
		d.Right = append(d.Right, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			d.Right = append(d.Right, p.parseExpr())
		}
	}
	return &d
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	var d ast.FuncDecl
	d.Def = p.expect(token.DEF)
	d.Name = p.parseIdentExpr()
	d.Sig = p.parseParameterList()
	d.Body = p.parseBracedBlock()
	return &d
}

// parseParameterList parses the "(name, name = default, ...name)" shape
// shared by def, task and closure signatures (spec.md's Open Question on
// parameter lists, resolved by ast.ParameterList).
func (p *parser) parseParameterList() *ast.ParameterList {
	var sig ast.ParameterList
	sig.Lparen = p.expect(token.LPAREN)

	for p.tok != token.RPAREN && p.tok != token.EOF {
		if p.tok == token.DOTDOTDOT {
			sig.DotDotDot = p.expect(token.DOTDOTDOT)
			sig.Params = append(sig.Params, &ast.Param{Name: p.parseIdentExpr()})
			break
		}

		name := p.parseIdentExpr()
		var def ast.Expr
		if p.tok == token.EQ {
			p.advance()
			def = p.parseExpr()
		}
		sig.Params = append(sig.Params, &ast.Param{Name: name, Default: def})

		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}

	sig.Rparen = p.expect(token.RPAREN)
	return &sig
}

// parseTaskDecl parses a task declaration: a name, optional invocation
// parameters, and a brace-delimited body of clauses that may appear in any
// order (inputs/outputs/dependsOn/from/doFirst/do/doLast). The clause
// keywords are contextual: they lex as plain IDENT everywhere outside a task
// body (spec.md §3, §6).
func (p *parser) parseTaskDecl() *ast.TaskDecl {
	var d ast.TaskDecl
	d.Task = p.expect(token.TASK)
	d.Name = p.parseIdentExpr()
	if p.tok == token.LPAREN {
		d.Sig = p.parseParameterList()
	}

	p.expect(token.LBRACE)
	p.inTask++
	for p.tok != token.RBRACE && p.tok != token.EOF {
		kw, isCtx := token.ILLEGAL, false
		if p.tok == token.IDENT {
			kw, isCtx = token.ContextualKeyword(p.val.Raw)
		}
		switch {
		case isCtx && kw == token.INPUTS:
			p.advance()
			p.expect(token.COLON)
			d.Inputs = p.parseClauseExprList()
		case isCtx && kw == token.OUTPUTS:
			p.advance()
			p.expect(token.COLON)
			d.Outputs = p.parseClauseExprList()
		case isCtx && kw == token.DEPENDSON:
			p.advance()
			p.expect(token.COLON)
			d.DependsOn = p.parseClauseExprList()
		case isCtx && kw == token.FROM:
			p.advance()
			p.expect(token.COLON)
			d.From = p.parseExpr()
		case isCtx && kw == token.DOFIRST:
			p.advance()
			d.DoFirst = p.parseBracedBlock()
		case isCtx && kw == token.DO:
			p.advance()
			d.Do = p.parseBracedBlock()
		case isCtx && kw == token.DOLAST:
			p.advance()
			d.DoLast = p.parseBracedBlock()
		default:
			p.errorExpected(p.val.Pos, "task clause")
			panic(errPanicMode)
		}
	}
	p.inTask--
	p.expect(token.RBRACE)
	return &d
}

// parseClauseExprList parses the value of an "inputs:"/"outputs:"/
// "dependsOn:" clause: either an array literal, whose items become the
// list, or a single expression (e.g. a variable holding a list) kept as a
// one-element list.
func (p *parser) parseClauseExprList() []ast.Expr {
	e := p.parseExpr()
	if arr, ok := e.(*ast.ArrayExpr); ok {
		return arr.Items
	}
	return []ast.Expr{e}
}

func (p *parser) parseClassDecl() *ast.ClassDecl {
	var d ast.ClassDecl
	d.Class = p.expect(token.CLASS)
	d.Name = p.parseIdentExpr()
	if p.tok == token.EXTENDS {
		p.advance()
		d.Extends = p.parseExpr()
	}

	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		switch p.tok {
		case token.VAR, token.CONST:
			d.Fields = append(d.Fields, p.parseVarDecl())
		case token.DEF:
			d.Methods = append(d.Methods, p.parseFuncDecl())
		case token.GET, token.SET:
			d.Props = append(d.Props, p.parsePropDecl())
		default:
			p.errorExpected(p.val.Pos, "class member")
			panic(errPanicMode)
		}
	}
	d.Rbrace = p.expect(token.RBRACE)
	return &d
}

func (p *parser) parsePropDecl() *ast.PropDecl {
	var d ast.PropDecl
	if p.tok == token.GET {
		p.advance()
		d.Name = p.parseIdentExpr()
		d.Get = p.parseBracedBlock()
		return &d
	}
	p.expect(token.SET)
	d.Name = p.parseIdentExpr()
	p.expect(token.LPAREN)
	d.SetArg = p.parseIdentExpr()
	p.expect(token.RPAREN)
	d.Set = p.parseBracedBlock()
	return &d
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	var s ast.IfStmt
	s.If = p.expect(token.IF)
	s.Cond = p.parseExpr()
	s.True = p.parseBracedBlock()
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			nested := p.parseIfStmt()
			var blk ast.Block
			blk.Lbrace, blk.Rbrace = nested.Span()
			blk.Stmts = []ast.Stmt{nested}
			s.False = &blk
		} else {
			s.False = p.parseBracedBlock()
		}
	}
	return &s
}

func (p *parser) parseMatchStmt() *ast.MatchStmt {
	var s ast.MatchStmt
	s.Match = p.expect(token.MATCH)
	s.Subject = p.parseExpr()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		s.Cases = append(s.Cases, p.parseMatchCase())
	}
	s.Rbrace = p.expect(token.RBRACE)
	return &s
}

func (p *parser) parseMatchCase() *ast.MatchCase {
	var c ast.MatchCase
	if p.tok == token.DEFAULT {
		c.IsDefault = true
		c.Case = p.expect(token.DEFAULT)
	} else {
		c.Case = p.expect(token.CASE)
		c.Patterns = append(c.Patterns, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			c.Patterns = append(c.Patterns, p.parseExpr())
		}
	}
	p.expect(token.COLON)
	c.Body = p.parseBracedBlock()
	return &c
}

func (p *parser) parseLabel() *ast.Label {
	var l ast.Label
	l.ColonColon = p.expect(token.COLON)
	p.expect(token.COLON)
	l.Name = p.parseIdentExpr()
	p.expect(token.COLON)
	p.expect(token.COLON)
	return &l
}

// parseLabelRef parses the "::name::" reference used by a labeled
// break/continue to target an outer loop; the leading "::" can't start an
// expression so it disambiguates cleanly from a bare break/continue.
func (p *parser) parseLabelRef() *ast.IdentExpr {
	p.expect(token.COLON)
	p.expect(token.COLON)
	name := p.parseIdentExpr()
	p.expect(token.COLON)
	p.expect(token.COLON)
	return name
}

func (p *parser) parseForStmt(label *ast.Label) *ast.ForStmt {
	var s ast.ForStmt
	s.Label = label
	s.For = p.expect(token.FOR)
	s.Left = append(s.Left, p.parseIdentExpr())
	for p.tok == token.COMMA {
		p.advance()
		s.Left = append(s.Left, p.parseIdentExpr())
	}
	s.In = p.expect(token.IN)
	s.Right = p.parseExpr()
	s.Body = p.parseBracedBlock()
	return &s
}

func (p *parser) parseWhileStmt(label *ast.Label) *ast.WhileStmt {
	var s ast.WhileStmt
	s.Label = label
	s.While = p.expect(token.WHILE)
	s.Cond = p.parseExpr()
	s.Body = p.parseBracedBlock()
	return &s
}

func (p *parser) parseTryStmt() *ast.TryStmt {
	var s ast.TryStmt
	s.Try = p.expect(token.TRY)
	s.Body = p.parseBracedBlock()
	for p.tok == token.EXCEPT {
		s.Excepts = append(s.Excepts, p.parseExceptClause())
	}
	if p.tok == token.FINALLY {
		p.advance()
		s.Finally = p.parseBracedBlock()
	}
	return &s
}

func (p *parser) parseExceptClause() *ast.ExceptClause {
	var c ast.ExceptClause
	c.Except = p.expect(token.EXCEPT)
	if p.tok != token.AS && p.tok != token.LBRACE {
		c.Pattern = p.parseExpr()
	}
	if p.tok == token.AS {
		p.advance()
		c.As = p.parseIdentExpr()
	}
	c.Body = p.parseBracedBlock()
	return &c
}

func (p *parser) parseWithStmt() *ast.WithStmt {
	var s ast.WithStmt
	s.With = p.expect(token.WITH)
	s.Right = p.parseExpr()
	if p.tok == token.AS {
		p.advance()
		s.As = p.parseIdentExpr()
	}
	s.Body = p.parseBracedBlock()
	return &s
}

func (p *parser) parseBreakStmt() *ast.BreakStmt {
	var s ast.BreakStmt
	s.Break = p.expect(token.BREAK)
	if p.tok == token.COLON {
		s.Label = p.parseLabelRef()
	}
	return &s
}

func (p *parser) parseContinueStmt() *ast.ContinueStmt {
	var s ast.ContinueStmt
	s.Continue = p.expect(token.CONTINUE)
	if p.tok == token.COLON {
		s.Label = p.parseLabelRef()
	}
	return &s
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	var s ast.ReturnStmt
	s.Return = p.expect(token.RETURN)
	if maybeExprStart(p.tok) {
		s.Expr = p.parseExpr()
	}
	return &s
}

func (p *parser) parseRaiseStmt() *ast.RaiseStmt {
	var s ast.RaiseStmt
	s.Raise = p.expect(token.RAISE)
	if maybeExprStart(p.tok) {
		s.Expr = p.parseExpr()
	}
	return &s
}

func (p *parser) parseAssertStmt() *ast.AssertStmt {
	var s ast.AssertStmt
	s.Assert = p.expect(token.ASSERT)
	s.Cond = p.parseExpr()
	if p.tok == token.COMMA {
		p.advance()
		s.Msg = p.parseExpr()
	}
	return &s
}

func (p *parser) parsePassStmt() *ast.PassStmt {
	var s ast.PassStmt
	s.Pass = p.expect(token.PASS)
	return &s
}

func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	first := p.parseExpr()
	if p.tok == token.COMMA || p.tok == token.EQ {
		return p.parseAssignStmt(first)
	}
	if p.tok.IsAugBinop() {
		return p.parseAugAssignStmt(first)
	}
	if !ast.IsValidStmt(first) {
		start, end := first.Span()
		p.errorExpected(start, "function or task call")
		return &ast.BadStmt{Start: start, End: end}
	}
	return &ast.ExprStmt{Expr: first}
}

func (p *parser) parseAssignStmt(firstExpr ast.Expr) *ast.AssignStmt {
	var s ast.AssignStmt

	left := []ast.Expr{firstExpr}
	for p.tok == token.COMMA {
		s.LeftCommas = append(s.LeftCommas, p.expect(token.COMMA))
		left = append(left, p.parseExpr())
	}
	for _, e := range left {
		if !ast.IsAssignable(e) {
			start, _ := e.Span()
			p.errorExpected(start, "assignable expression")
		}
	}
	s.Left = left

	s.Op = token.EQ
	s.AssignTok = p.expect(token.EQ)
	s.Right = append(s.Right, p.parseExpr())
	for p.tok == token.COMMA {
		p.advance()
		s.Right = append(s.Right, p.parseExpr())
	}
	return &s
}

func (p *parser) parseAugAssignStmt(firstExpr ast.Expr) *ast.AssignStmt {
	var s ast.AssignStmt
	if !ast.IsAssignable(firstExpr) {
		start, _ := firstExpr.Span()
		p.errorExpected(start, "assignable expression")
	}
	s.Left = []ast.Expr{firstExpr}
	s.Op = p.tok
	s.AssignTok = p.expect(p.tok)
	s.Right = []ast.Expr{p.parseExpr()}
	return &s
}

func (p *parser) parseIdentExpr() *ast.IdentExpr {
	var e ast.IdentExpr
	e.Lit = p.val.Raw
	e.Start = p.expect(token.IDENT)
	return &e
}

func (p *parser) parseStringLiteral() *ast.LiteralExpr {
	if len(p.val.InterpRanges) > 0 {
		p.error(p.val.Pos, "string interpolation is not allowed here")
	}
	lit := &ast.LiteralExpr{Type: token.STRING, Raw: p.val.Raw, Value: p.val.String}
	lit.Start = p.expect(token.STRING)
	return lit
}

// maybeExprStart reports whether tok can begin an expression, used to decide
// whether a bare "return"/"raise" is followed by a value.
func maybeExprStart(tok token.Token) bool {
	if tok.IsAtom() || tok.IsUnop() {
		return true
	}
	switch tok {
	case token.LPAREN, token.LBRACK, token.LBRACE, token.DEF:
		return true
	default:
		return false
	}
}
