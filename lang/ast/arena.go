package ast

// Arena owns every node allocated while parsing a single compile unit. It
// mirrors the C++ compiler's per-unit arena (a singly-linked allocation list
// with manual destructor calls) as a typed bump pool: each node family gets
// its own slab, and only families whose element type asks for cleanup via
// Dropper get a recorded drop thunk. Nodes are plain data (identifiers,
// literals, operator tokens), so in practice almost no family registers one;
// the mechanism exists for the rare node that wraps a non-GC resource
// (e.g. a parser-owned buffer) rather than being exercised by every node.
//
// An Arena is not safe for concurrent use. Each compile unit gets its own,
// matching the resolver's Context: single-threaded, non-copyable, never
// shared across goroutines (spec.md §5).
type Arena struct {
	slabs   []any // one *arenaSlab[T] per distinct T seen by New
	drops   []func()
	nodes   int
	dropped bool
}

// Dropper is implemented by node payloads that hold a resource needing
// explicit release when the arena is freed. Most AST node types do not
// implement it.
type Dropper interface {
	Drop()
}

type arenaSlab[T any] struct {
	items []T
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{} }

func slabFor[T any](a *Arena) *arenaSlab[T] {
	for _, s := range a.slabs {
		if slab, ok := s.(*arenaSlab[T]); ok {
			return slab
		}
	}
	slab := &arenaSlab[T]{}
	a.slabs = append(a.slabs, slab)
	return slab
}

// New allocates a zero-valued T inside a, returning a stable pointer to it.
// Every T of the same underlying type shares one growable slab, so repeated
// allocation of the same node kind (e.g. every IdentExpr in a file) does not
// fragment across many small heap objects. If *T implements Dropper, its
// Drop method is queued to run, in LIFO order, when Free is called.
func New[T any](a *Arena) *T {
	if a.dropped {
		panic("ast: Arena.New called after Free")
	}
	slab := slabFor[T](a)
	slab.items = append(slab.items, *new(T))
	n := &slab.items[len(slab.items)-1]
	a.nodes++
	if d, ok := any(n).(Dropper); ok {
		a.drops = append(a.drops, d.Drop)
	}
	return n
}

// Nodes reports how many nodes have been allocated from a so far.
func (a *Arena) Nodes() int { return a.nodes }

// Free runs every queued drop thunk, most-recently-registered first, and
// marks the arena unusable. It is idempotent: calling Free twice runs no
// thunk a second time.
func (a *Arena) Free() {
	if a.dropped {
		return
	}
	for i := len(a.drops) - 1; i >= 0; i-- {
		a.drops[i]()
	}
	a.drops = nil
	a.slabs = nil
	a.dropped = true
}
