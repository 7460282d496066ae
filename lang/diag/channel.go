// Package diag implements the append-only diagnostic channel of spec.md
// §4.7: severity-tagged entries keyed by source position, with an explicit
// Notify step that replays the (sorted) entries to every Subscriber. No
// stage throws; every stage reports here and keeps going.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/klang/buildscript/lang/token"
)

// FixIt is an insertion hint attached to an Entry, per spec.md §4.3's error
// recovery ("insert `,` here").
type FixIt struct {
	Pos    token.Position
	Insert string
}

// Entry is one diagnostic: a severity-tagged, positioned, formatted
// message, with optional fix-it insertions.
type Entry struct {
	ID       ID // zero if reported via Reportf rather than the catalog
	Severity Severity
	Position token.Position
	Message  string
	FixIts   []FixIt
}

// String renders the entry using spec.md §6's diagnostic format:
// "<line>:<column>: <severity>: <message>".
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Position, e.Severity, e.Message)
}

// Subscriber receives every Entry, in source-position order, during Notify.
type Subscriber func(Entry)

// Channel is an append-only, concurrency-safe diagnostic sink shared by a
// Context's lexer, parser, resolver and builder. Zero value is ready to use.
type Channel struct {
	mu      sync.Mutex
	entries []Entry
	subs    []Subscriber
}

// Report appends a diagnostic built from a catalog ID and positional args.
func (c *Channel) Report(id ID, pos token.Position, args ...any) {
	c.append(Entry{ID: id, Severity: id.Severity(), Position: pos, Message: id.Format(args...)})
}

// Reportf appends a diagnostic with an explicit severity and ad hoc
// message, for call sites with no catalog entry of their own.
func (c *Channel) Reportf(sev Severity, pos token.Position, format string, args ...any) {
	c.append(Entry{Severity: sev, Position: pos, Message: fmt.Sprintf(format, args...)})
}

// AddFixIt attaches a fix-it hint to the most recently reported entry.
func (c *Channel) AddFixIt(pos token.Position, insert string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return
	}
	last := &c.entries[len(c.entries)-1]
	last.FixIts = append(last.FixIts, FixIt{Pos: pos, Insert: insert})
}

func (c *Channel) append(e Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

// Subscribe registers fn to be invoked, once per entry in position order,
// on the next call to Notify.
func (c *Channel) Subscribe(fn Subscriber) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Notify replays every entry recorded so far to every subscriber, sorted by
// source position. It does not mutate the channel: calling Notify twice
// replays the same (possibly grown) entry list both times.
func (c *Channel) Notify() {
	c.mu.Lock()
	entries := slices.Clone(c.entries)
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position.Compare(entries[j].Position) < 0
	})
	for _, e := range entries {
		for _, sub := range subs {
			sub(e)
		}
	}
}

// Entries returns a snapshot of every diagnostic reported so far, in report
// order (not position order; call Notify, or sort a copy, for that).
func (c *Channel) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.entries)
}

// HasError reports whether any Error-severity entry was reported.
func (c *Channel) HasError() bool { return c.count(Error) > 0 }

// HasWarning reports whether any Warning-severity entry was reported.
func (c *Channel) HasWarning() bool { return c.count(Warning) > 0 }

func (c *Channel) count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Err returns a non-nil error summarizing the channel's entries if it has
// at least one Error-severity entry, else nil. With more than one error the
// result implements Unwrap() []error, one error per Error-severity entry.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, e := range c.entries {
		if e.Severity == Error {
			ee := e
			errs = append(errs, channelError{ee})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errList(errs)
}

type channelError struct{ Entry }

func (e channelError) Error() string { return e.Entry.String() }

type errList []error

func (l errList) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

func (l errList) Unwrap() []error { return l }
