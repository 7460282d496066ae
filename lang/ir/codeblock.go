package ir

// ExceptInfo records one protected region [Begin, End) and its ordered
// handler table, each handler a (pattern value, handler entry block) pair,
// matching the original's BasicBlock*/Symbol* tuple generalized to carry
// the already-computed pattern Value instead of a raw symbol.
type ExceptInfo struct {
	Begin, End *BasicBlock
	Handlers   []ExceptHandler
}

// ExceptHandler is one except clause of a protected region: Pattern is
// Invalid for a catch-all, Entry is the block the handler body begins at.
type ExceptHandler struct {
	Pattern Value
	Entry   *BasicBlock
}

// CodeBlock is one compiled executable unit: a chunk, a def/task body, a
// method, a property accessor or a closure, per spec.md §3 "IRCodeBlock".
type CodeBlock struct {
	Name      string
	Blocks    []*BasicBlock
	HasVarArg bool
	Handlers  []ExceptInfo
	Args      []any // *resolver.Binding, in parameter order

	// Captures lists, in order, the free-variable bindings this unit
	// expects a MakeClosure to supply; MakeClosure.Captures must carry
	// exactly len(Captures) values, positionally matched.
	Captures []any // *resolver.Binding
}

// ArgumentCount returns len(Args): every parameter slot, counting a variadic
// last parameter and, for methods and accessors, the implicit self/super
// slots.
func (c *CodeBlock) ArgumentCount() int { return len(c.Args) }
