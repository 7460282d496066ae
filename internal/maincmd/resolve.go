package maincmd

import (
	"context"
	"fmt"

	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/parser"
	"github.com/klang/buildscript/lang/resolver"
	"github.com/klang/buildscript/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var parseMode parser.Mode
	if c.WithComments {
		parseMode |= parser.Comments
	}
	var resolveMode resolver.Mode
	resolveMode |= resolver.NameBlocks
	_, err := ResolveFiles(ctx, stdio, parseMode, resolveMode, token.PosLong, "", args...)
	return err
}

// ResolveFiles parses and resolves files, printing the resolved AST to
// stdio.Stdout, and returns the Function map lang/irgen needs to lower the
// same chunks (nil if parsing or resolving failed).
func ResolveFiles(ctx context.Context, stdio mainer.Stdio, parseMode parser.Mode,
	resolvMode resolver.Mode, posMode token.PosMode, nodeFmt string, files ...string) (map[ast.Node]*resolver.Function, error) {
	printer := ast.Printer{
		Output:  stdio.Stdout,
		Pos:     posMode,
		NodeFmt: nodeFmt,
	}
	if err := checkFilesReadable(files...); err != nil {
		return nil, reportDiagnostics(stdio.Stderr, err)
	}

	fs, chunks, perr := parser.ParseFiles(ctx, parseMode, files...)
	if perr != nil {
		// cannot resolve AST if parsing has errors
		return nil, reportDiagnostics(stdio.Stderr, perr)
	}

	// No embedder-predeclared names or language built-ins are wired into
	// this CLI entry point yet: every free identifier must resolve within
	// the chunks themselves.
	functions, rerr := resolver.ResolveFiles(ctx, fs, chunks, resolvMode, nil, nil)
	for _, ch := range chunks {
		start, _ := ch.Span()
		file := fs.File(start)
		if err := printer.Print(ch, file); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return functions, err
		}
	}
	if rerr != nil {
		return functions, reportDiagnostics(stdio.Stderr, rerr)
	}
	return functions, nil
}
