package diag

import "fmt"

// ID indexes the message-template catalog, following the original
// implementation's ErrorReporter::ReportID enum (spec.md §4 "supplemented
// features"): every diagnostic text lives in one table instead of being
// scattered as ad hoc fmt.Sprintf call sites through the lexer, parser,
// resolver and builder.
type ID uint16

const (
	_ ID = iota // zero ID is reserved, never reported

	ErrInvalidEncoding
	ErrInvalidCharacter
	ErrInvalidRadixDigit
	ErrUnterminatedString
	ErrUnterminatedComment

	ErrExpectedToken
	ErrExpectedIdentifier
	ErrUnexpectedToken

	ErrAlreadyDeclared
	ErrUndefinedName
	ErrRedefinition

	ErrBreakOutsideLoop
	ErrContinueOutsideLoop
	ErrReturnOutsideFunction
	ErrRaiseOutsideExcept
	ErrLabelNotDefined

	ErrOutOfMemory

	WarnUnreachableCode
	WarnUnusedLocal
)

type template struct {
	severity Severity
	format   string
}

// catalog maps each ID to its severity and a positional fmt format string;
// formatting is positional/indexed per spec.md §4.7, never language-specific.
var catalog = map[ID]template{
	ErrInvalidEncoding:     {Error, "invalid encoding: %s"},
	ErrInvalidCharacter:    {Error, "invalid character %q"},
	ErrInvalidRadixDigit:   {Error, "invalid digit %q for base %d"},
	ErrUnterminatedString:  {Error, "string literal not terminated"},
	ErrUnterminatedComment: {Error, "comment not terminated"},

	ErrExpectedToken:      {Error, "expected %s, found %s"},
	ErrExpectedIdentifier: {Error, "expected identifier, found %s"},
	ErrUnexpectedToken:    {Error, "unexpected %s"},

	ErrAlreadyDeclared: {Error, "%s already declared in this block"},
	ErrUndefinedName:   {Error, "undefined: %s"},
	ErrRedefinition:    {Error, "%s redefines a %s with the same arity"},

	ErrBreakOutsideLoop:      {Error, "break outside of a loop"},
	ErrContinueOutsideLoop:   {Error, "continue outside of a loop"},
	ErrReturnOutsideFunction: {Error, "return outside of a function"},
	ErrRaiseOutsideExcept:    {Error, "raise with no expression is not inside an except block"},
	ErrLabelNotDefined:       {Error, "label not defined: %s"},

	ErrOutOfMemory: {Error, "out of memory: chunk reserved bound exceeded"},

	WarnUnreachableCode: {Warning, "unreachable code"},
	WarnUnusedLocal:     {Warning, "unused local %s"},
}

// Severity reports the severity a message ID was registered with.
func (id ID) Severity() Severity {
	t, ok := catalog[id]
	if !ok {
		return Error
	}
	return t.severity
}

// Format renders id's template with args, positionally, like fmt.Sprintf.
func (id ID) Format(args ...any) string {
	t, ok := catalog[id]
	if !ok {
		return fmt.Sprintf("diag: unregistered message id %d", id)
	}
	return fmt.Sprintf(t.format, args...)
}
