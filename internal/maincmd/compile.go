package maincmd

import (
	"context"
	"fmt"

	"github.com/klang/buildscript/internal/compileopts"
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/irgen"
	"github.com/klang/buildscript/lang/optimize"
	"github.com/klang/buildscript/lang/parser"
	"github.com/klang/buildscript/lang/resolver"
	"github.com/klang/buildscript/lang/token"
	"github.com/mna/mainer"
)

// Compile runs the full pipeline through IR generation: tokenize, parse,
// resolve, lower to IR (lang/irgen), optionally optimize (lang/optimize),
// then print the result (lang/ast.Printer for --syntax-only, lang/ir.Dump
// otherwise).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts := compileopts.Default()
	if c.Config != "" {
		fileOpts, err := compileopts.LoadFile(c.Config)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", c.Config, err)
			return err
		}
		opts = fileOpts
	}
	// flags always win over the config file
	if c.flags["with-comments"] {
		opts.WithComments = c.WithComments
	}
	if c.flags["syntax-only"] {
		opts.SyntaxOnly = c.SyntaxOnly
	}
	if c.Optimize {
		opts.OptimizeLevel = int(optimize.Optimize)
	}
	return CompileFiles(ctx, stdio, opts, args...)
}

func CompileFiles(ctx context.Context, stdio mainer.Stdio, opts compileopts.CompileOptions, files ...string) error {
	var parseMode parser.Mode
	if opts.WithComments {
		parseMode |= parser.Comments
	}

	if err := checkFilesReadable(files...); err != nil {
		return reportDiagnostics(stdio.Stderr, err)
	}

	fs, chunks, perr := parser.ParseFiles(ctx, parseMode, files...)
	if perr != nil {
		return reportDiagnostics(stdio.Stderr, perr)
	}

	if opts.SyntaxOnly {
		printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong}
		for _, ch := range chunks {
			start, _ := ch.Span()
			if err := printer.Print(ch, fs.File(start)); err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
		}
		return nil
	}

	functions, rerr := resolver.ResolveFiles(ctx, fs, chunks, 0, nil, nil)
	if rerr != nil {
		return reportDiagnostics(stdio.Stderr, rerr)
	}

	codes := irgen.Generate(chunks, functions)
	optimize.Run(codes, optimize.Level(opts.OptimizeLevel))

	for _, code := range codes {
		if err := ir.Dump(stdio.Stdout, code); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}
