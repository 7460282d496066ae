package parser

import (
	"strings"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/token"
)

// binopPriority maps each binary operator token to its (left, right) binding
// power for precedence climbing; left == right everywhere here since every
// operator in this grammar is left-associative.
var binopPriority = map[token.Token]struct{ left, right int }{
	token.OR:  {1, 1},
	token.AND: {2, 2},
	token.LT:  {3, 3}, token.LE: {3, 3}, token.GT: {3, 3}, token.GE: {3, 3},
	token.EQL: {3, 3}, token.NEQ: {3, 3}, token.IS: {3, 3}, token.IN: {3, 3},
	token.PIPE:      {4, 4},
	token.CARET:     {5, 5},
	token.AMPERSAND: {6, 6},
	token.SHL:       {7, 7}, token.SHR: {7, 7},
	token.PLUS: {8, 8}, token.MINUS: {8, 8},
	token.STAR: {9, 9}, token.SLASH: {9, 9}, token.PERCENT: {9, 9},
}

const unopPriority = 10

// parseExpr parses a full expression, including the lowest-precedence
// "then if cond else alt" ternary form. An "if" that follows a line break
// (p.advance skipped an EOL before it, so preCommentPos differs from its
// position) starts a new statement rather than a ternary.
func (p *parser) parseExpr() ast.Expr {
	then := p.parseSubExpr(0)
	if p.tok != token.IF || p.preCommentPos != p.val.Pos {
		return then
	}
	var t ast.TernaryExpr
	t.Then = then
	t.If = p.expect(token.IF)
	t.Cond = p.parseSubExpr(0)
	t.Else = p.expect(token.ELSE)
	t.Alt = p.parseExpr()
	return &t
}

// parseSubExpr parses an expression whose outermost binary operator binds
// tighter than priority (precedence climbing).
func (p *parser) parseSubExpr(priority int) ast.Expr {
	var left ast.Expr

	if p.tok.IsUnop() {
		var u ast.UnaryOpExpr
		u.Type = p.tok
		u.Op = p.expect(p.tok)
		u.Right = p.parseSubExpr(unopPriority)
		left = &u
	} else {
		left = p.parsePostfixExpr()
	}

	for {
		pr, ok := binopPriority[p.tok]
		if !ok || pr.left <= priority {
			break
		}
		var b ast.BinOpExpr
		b.Left = left
		b.Type = p.tok
		b.Op = p.expect(p.tok)
		b.Right = p.parseSubExpr(pr.right)
		left = &b
	}
	return left
}

func (p *parser) parsePostfixExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch p.tok {
		case token.DOT:
			e = p.parseDotExpr(e)
		case token.LBRACK:
			e = p.parseIndexExpr(e)
		case token.LPAREN:
			e = p.parseCallExpr(e)
		default:
			return e
		}
	}
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch {
	case p.tok == token.IDENT || p.tok == token.SELF || p.tok == token.SUPER:
		var e ast.IdentExpr
		e.Lit = p.val.Raw
		e.Start = p.expect(p.tok)
		return &e
	case p.tok == token.STRING:
		return p.parseStringExpr()
	case p.tok == token.INT || p.tok == token.FLOAT || p.tok == token.TRUE ||
		p.tok == token.FALSE || p.tok == token.NONE:
		return p.parseLiteralExpr()
	case p.tok == token.LPAREN:
		return p.parseParenExpr()
	case p.tok == token.LBRACK:
		return p.parseArrayExpr()
	case p.tok == token.LBRACE:
		return p.parseMapExpr()
	case p.tok == token.DEF:
		return p.parseClosureExpr()
	default:
		p.errorExpected(p.val.Pos, "expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseLiteralExpr() *ast.LiteralExpr {
	var val any
	switch p.tok {
	case token.INT:
		val = p.val.Int
	case token.FLOAT:
		val = p.val.Float
	}
	lit := &ast.LiteralExpr{Type: p.tok, Raw: p.val.Raw, Value: val}
	lit.Start = p.expect(p.tok)
	return lit
}

// parseStringExpr returns a plain *ast.LiteralExpr for a string literal with
// no interpolation holes, or an *ast.InterpStringExpr that re-lexes each
// "${ ... }" hole as a nested expression (spec.md §4.2).
func (p *parser) parseStringExpr() ast.Expr {
	val := p.val
	pos := p.val.Pos
	p.advance()

	if len(val.InterpRanges) == 0 {
		return &ast.LiteralExpr{Type: token.STRING, Start: pos, Raw: val.Raw, Value: val.String}
	}
	return p.buildInterpString(pos, val)
}

// buildInterpString splits val.Raw (the verbatim quoted literal, including
// its surrounding quote characters) into alternating literal runs and hole
// expressions using val.InterpRanges, which give each hole's inner-expression
// byte span relative to the start of Raw.
func (p *parser) buildInterpString(pos token.Pos, val token.Value) *ast.InterpStringExpr {
	var e ast.InterpStringExpr
	e.Start = pos
	e.End = pos + token.Pos(len(val.Raw))

	raw := val.Raw
	const quoteLen = 1
	bodyEnd := len(raw) - quoteLen

	last := quoteLen
	for _, r := range val.InterpRanges {
		seg := raw[last : r.Begin-2] // stop before the hole's "${"
		e.Parts = append(e.Parts, &ast.LiteralExpr{
			Type:  token.STRING,
			Start: pos + token.Pos(last),
			Raw:   seg,
			Value: decodeStringSegment(seg),
		})
		e.Parts = append(e.Parts, p.parseInterpHole(raw, r))
		last = int(r.End) + 1 // resume after the hole's "}"
	}
	seg := raw[last:bodyEnd]
	e.Parts = append(e.Parts, &ast.LiteralExpr{
		Type:  token.STRING,
		Start: pos + token.Pos(last),
		Raw:   seg,
		Value: decodeStringSegment(seg),
	})
	return &e
}

// parseInterpHole re-lexes the inner text of a single "${ ... }" hole as a
// standalone expression, using its own mini source file so position
// reporting inside the hole does not collide with the parent file's offsets.
func (p *parser) parseInterpHole(raw string, r token.Range) ast.Expr {
	src := raw[r.Begin:r.End]

	var sub parser
	sub.fset = p.fset
	sub.file = p.fset.AddFile(p.file.Name()+"$interp", -1, len(src))
	sub.scanner.Init(sub.file, []byte(src), p.errors.Add)
	sub.advance()
	expr := sub.parseExpr()
	sub.expect(token.EOF)
	return expr
}

// decodeStringSegment decodes the backslash escapes in a literal run of a
// string token (a full string, or the literal text between/around
// interpolation holes): \a \b \f \n \r \t \v, \\, \$, \' , \" and a
// backslash-newline line continuation that is dropped from the result.
func decodeStringSegment(seg string) string {
	if !strings.ContainsRune(seg, '\\') {
		return seg
	}
	var sb strings.Builder
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c != '\\' || i+1 >= len(seg) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch seg[i] {
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '\\':
			sb.WriteByte('\\')
		case '$':
			sb.WriteByte('$')
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')
		case '\n':
			// line continuation: emit nothing
		default:
			sb.WriteByte('\\')
			sb.WriteByte(seg[i])
		}
	}
	return sb.String()
}

func (p *parser) parseParenExpr() *ast.ParenExpr {
	var e ast.ParenExpr
	e.Lparen = p.expect(token.LPAREN)
	e.Expr = p.parseExpr()
	e.Rparen = p.expect(token.RPAREN)
	return &e
}

func (p *parser) parseArrayExpr() *ast.ArrayExpr {
	var e ast.ArrayExpr
	e.Lbrack = p.expect(token.LBRACK)
	for p.tok != token.RBRACK && p.tok != token.EOF {
		e.Items = append(e.Items, p.parseExpr())
		if p.tok == token.COMMA {
			e.Commas = append(e.Commas, p.expect(token.COMMA))
		} else {
			break
		}
	}
	e.Rbrack = p.expect(token.RBRACK)
	return &e
}

func (p *parser) parseMapExpr() *ast.MapExpr {
	var e ast.MapExpr
	e.Lbrace = p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		e.Items = append(e.Items, p.parseKeyVal())
		if p.tok == token.COMMA {
			e.Commas = append(e.Commas, p.expect(token.COMMA))
		} else {
			break
		}
	}
	e.Rbrace = p.expect(token.RBRACE)
	return &e
}

func (p *parser) parseKeyVal() *ast.KeyVal {
	var kv ast.KeyVal
	switch p.tok {
	case token.LBRACK:
		p.expect(token.LBRACK)
		kv.Key = p.parseExpr()
		p.expect(token.RBRACK)
	case token.STRING:
		kv.Key = p.parseStringExpr()
	case token.IDENT:
		kv.Key = p.parseIdentExpr()
	default:
		p.expect(token.IDENT, token.LBRACK, token.STRING)
		panic("unreachable")
	}
	kv.Colon = p.expect(token.COLON)
	kv.Value = p.parseExpr()
	return &kv
}

func (p *parser) parseClosureExpr() *ast.ClosureExpr {
	var e ast.ClosureExpr
	e.Def = p.expect(token.DEF)
	e.Sig = p.parseParameterList()
	e.Body = p.parseBracedBlock()
	return &e
}

func (p *parser) parseDotExpr(left ast.Expr) *ast.DotExpr {
	var e ast.DotExpr
	e.Left = left
	e.Dot = p.expect(token.DOT)
	e.Right = p.parseIdentExpr()
	return &e
}

func (p *parser) parseIndexExpr(prefix ast.Expr) *ast.IndexExpr {
	var e ast.IndexExpr
	e.Prefix = prefix
	e.Lbrack = p.expect(token.LBRACK)
	e.Index = p.parseExpr()
	e.Rbrack = p.expect(token.RBRACK)
	return &e
}

func (p *parser) parseCallExpr(fn ast.Expr) *ast.CallExpr {
	var e ast.CallExpr
	e.Fn = fn
	e.Lparen = p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		e.Args, e.Commas = p.parseExprList()
	}
	e.Rparen = p.expect(token.RPAREN)
	return &e
}

func (p *parser) parseExprList() ([]ast.Expr, []token.Pos) {
	var exprs []ast.Expr
	var commas []token.Pos

	exprs = append(exprs, p.parseExpr())
	for p.tok == token.COMMA {
		commas = append(commas, p.expect(token.COMMA))
		exprs = append(exprs, p.parseExpr())
	}
	return exprs, commas
}
