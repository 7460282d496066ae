package parser

import (
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/token"
)

func (p *parser) parseChunk() *ast.Chunk {
	var chunk ast.Chunk
	chunk.Block = p.parseBlock()
	chunk.EOF = p.expect(token.EOF)

	if p.parseComments {
		p.processComments(&chunk)
	}
	return &chunk
}

// parseBlock parses a brace-delimited or top-level sequence of declarations
// and statements, stopping at one of endToks (EOF is always an implicit end
// token). If endToks is empty, the block is the top-level chunk block and is
// not itself braced.
func (p *parser) parseBlock(endToks ...token.Token) *ast.Block {
	var block ast.Block
	var list []ast.Stmt

	p.enterBlock(&block)

	// EOF is always an end token
	endToks = append(endToks, token.EOF)

	var ending ast.Stmt
	var endingReported bool
	for !tokenIn(p.tok, endToks...) {
		if stmt := p.parseStmt(); stmt != nil {
			if ending != nil {
				if !endingReported {
					pos, _ := stmt.Span()
					p.errorExpected(pos, "end of block")
					endingReported = true
				}
			} else if stmt.BlockEnding() {
				ending = stmt
			}
			list = append(list, stmt)
		}
	}

	block.Stmts = list
	block.Rbrace = p.val.Pos
	p.exitBlock(&block)
	return &block
}

// parseBracedBlock parses a "{ ... }" block, consuming the surrounding
// braces.
func (p *parser) parseBracedBlock() *ast.Block {
	p.expect(token.LBRACE)
	block := p.parseBlock(token.RBRACE)
	block.Rbrace = p.expect(token.RBRACE)
	return block
}

type syncMode int

const (
	syncAfter syncMode = iota
	syncAt
)

// syncToks lists the tokens that are safe resynchronization points after a
// parse error: either skip past them (syncAfter, e.g. a statement-ending
// ';') or stop right before them (syncAt, e.g. the start of the next
// statement). def/task/class/var/const are not included because, unlike a
// leading keyword, the bad statement may have started mid-expression and
// those keywords can also appear nested (e.g. a "def" closure literal), so
// stopping there is not reliably safe.
var syncToks = map[token.Token]syncMode{
	token.SEMI:     syncAfter,
	token.RBRACE:   syncAt,
	token.IF:       syncAt,
	token.FOR:      syncAt,
	token.WHILE:    syncAt,
	token.MATCH:    syncAt,
	token.TRY:      syncAt,
	token.WITH:     syncAt,
	token.RETURN:   syncAt,
	token.RAISE:    syncAt,
	token.BREAK:    syncAt,
	token.CONTINUE: syncAt,
	token.ASSERT:   syncAt,
	token.PASS:     syncAt,
}

// syncAfterError always consumes at least one token before returning, even
// if the parser is already sitting on a syncAt token: a failed "if"/"for"/
// "while"/etc. clause may abort before consuming its opening "{", leaving a
// stray "}" exactly on a sync token, and stopping there without advancing
// would spin forever reparsing the same unconsumed token.
func (p *parser) syncAfterError() token.Pos {
	advanced := false
	for p.tok != token.EOF {
		if mode, ok := syncToks[p.tok]; ok && advanced {
			if mode == syncAfter {
				p.advance()
				if p.tok == token.EOF {
					// EOF is 1 past the end of the file
					return p.val.Pos - 1
				}
			}
			return p.val.Pos
		}
		p.advance()
		advanced = true
	}
	return p.val.Pos - 1 // EOF is 1 past the end of the file
}
