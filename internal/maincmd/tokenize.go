package maincmd

import (
	"context"
	"fmt"

	"github.com/klang/buildscript/lang/scanner"
	"github.com/klang/buildscript/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, token.PosLong, c.Encoding, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, encoding string, files ...string) error {
	if err := checkFilesReadable(files...); err != nil {
		return reportDiagnostics(stdio.Stderr, err)
	}

	fs, toksByFile, err := scanner.ScanFiles(ctx, encoding, files...)
	for _, toks := range toksByFile {
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(posMode, fs.File(tok.Value.Pos), tok.Value.Pos, true), tok.Token)
			if lit := tok.Token.Literal(tok.Value); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		return reportDiagnostics(stdio.Stderr, err)
	}
	return nil
}
