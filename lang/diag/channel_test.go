package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/diag"
	"github.com/klang/buildscript/lang/token"
)

func TestChannelReportAndNotifyOrdersByPosition(t *testing.T) {
	var c diag.Channel
	c.Report(diag.ErrUndefinedName, token.Position{Filename: "a", Line: 3, Column: 1}, "y")
	c.Report(diag.ErrUndefinedName, token.Position{Filename: "a", Line: 1, Column: 1}, "x")

	var seen []string
	c.Subscribe(func(e diag.Entry) { seen = append(seen, e.Message) })
	c.Notify()

	require.Len(t, seen, 2)
	assert.Equal(t, []string{"undefined: x", "undefined: y"}, seen)
}

func TestChannelHasErrorAndHasWarning(t *testing.T) {
	var c diag.Channel
	assert.False(t, c.HasError())
	assert.False(t, c.HasWarning())

	c.Report(diag.WarnUnreachableCode, token.Position{Line: 1, Column: 1})
	assert.False(t, c.HasError())
	assert.True(t, c.HasWarning())

	c.Report(diag.ErrBreakOutsideLoop, token.Position{Line: 2, Column: 1})
	assert.True(t, c.HasError())
}

func TestChannelAddFixItAttachesToLastEntry(t *testing.T) {
	var c diag.Channel
	c.Report(diag.ErrExpectedToken, token.Position{Line: 1, Column: 5}, "','", "'b'")
	c.AddFixIt(token.Position{Line: 1, Column: 5}, ",")

	entries := c.Entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].FixIts, 1)
	assert.Equal(t, ",", entries[0].FixIts[0].Insert)
}

func TestChannelErrAggregatesMultipleErrors(t *testing.T) {
	var c diag.Channel
	c.Report(diag.ErrUndefinedName, token.Position{Line: 1, Column: 1}, "x")
	c.Report(diag.ErrUndefinedName, token.Position{Line: 2, Column: 1}, "y")

	err := c.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "and 1 more errors")
}

func TestChannelErrNilWhenNoErrors(t *testing.T) {
	var c diag.Channel
	c.Report(diag.WarnUnusedLocal, token.Position{Line: 1, Column: 1}, "x")
	assert.NoError(t, c.Err())
}

func TestEntryStringMatchesDiagnosticFormat(t *testing.T) {
	e := diag.Entry{
		Severity: diag.Error,
		Position: token.Position{Filename: "f.bs", Line: 4, Column: 2},
		Message:  "undefined: x",
	}
	assert.Equal(t, "f.bs:4:2: error: undefined: x", e.String())
}
