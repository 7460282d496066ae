package scanner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klang/buildscript/lang/token"
)

// Error is a single diagnostic produced while scanning or parsing, tied to a
// resolved source Position rather than a bare Pos so it prints correctly
// even after the originating File is gone.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return e.Pos.String() + ": " + e.Msg
}

// ErrorList collects Errors in the order they are added; Sort puts them in
// source order before they are reported to the user.
type ErrorList []*Error

// Add appends an error at pos with the given message.
func (l *ErrorList) Add(pos token.Position, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

// Reset clears the list.
func (l *ErrorList) Reset() { *l = (*l)[:0] }

func (l ErrorList) Len() int      { return len(l) }
func (l ErrorList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ErrorList) Less(i, j int) bool {
	pi, pj := l[i].Pos, l[j].Pos
	if pi.Filename != pj.Filename {
		return pi.Filename < pj.Filename
	}
	if pi.Line != pj.Line {
		return pi.Line < pj.Line
	}
	if pi.Column != pj.Column {
		return pi.Column < pj.Column
	}
	return l[i].Msg < l[j].Msg
}

// Sort orders the list by source position.
func (l ErrorList) Sort() { sort.Sort(l) }

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more errors)", l[0], len(l)-1)
	return sb.String()
}

// Unwrap exposes the individual errors for errors.Is/errors.As traversal.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns l as an error if it is non-empty, else nil.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
