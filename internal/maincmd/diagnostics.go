package maincmd

import (
	"fmt"
	"io"

	"github.com/klang/buildscript/lang/diag"
	"github.com/klang/buildscript/lang/scanner"
	"github.com/klang/buildscript/lang/token"
)

// multiError is satisfied by scanner.ErrorList and by go.uber.org/multierr's
// combined errors (both expose their members via Unwrap() []error since
// multierr v1.11), letting reportDiagnostics flatten either into a Channel
// without a type switch per error-producing stage.
type multiError interface {
	Unwrap() []error
}

// reportDiagnostics replays err through a lang/diag Channel and prints the
// result to w, so every CLI command surfaces scanner, parser, resolver and
// precheck failures with the same severity-tagged, position-sorted format
// (spec.md §4.7/§6) regardless of which stage produced them. It returns the
// channel's own summarizing error, or nil if err was nil.
func reportDiagnostics(w io.Writer, err error) error {
	if err == nil {
		return nil
	}

	var ch diag.Channel
	ch.Subscribe(func(e diag.Entry) { fmt.Fprintln(w, e) })

	if me, ok := err.(multiError); ok {
		for _, sub := range me.Unwrap() {
			reportOne(&ch, sub)
		}
	} else {
		reportOne(&ch, err)
	}

	ch.Notify()
	if cerr := ch.Err(); cerr != nil {
		return cerr
	}
	return err
}

func reportOne(ch *diag.Channel, err error) {
	if se, ok := err.(*scanner.Error); ok {
		ch.Reportf(diag.Error, se.Pos, "%s", se.Msg)
		return
	}
	ch.Reportf(diag.Error, token.Position{}, "%s", err.Error())
}
