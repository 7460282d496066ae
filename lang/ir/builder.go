package ir

import "github.com/klang/buildscript/lang/token"

// Builder performs single-pass SSA construction for one CodeBlock: each
// def/task/method/property/closure body of the resolved AST pushes its own
// Builder (spec.md §4.5), reads and writes symbols through WriteVariable/
// ReadVariable, and the builder inserts a Select wherever a read reaches a
// block with more than one predecessor, exactly as spec.md §4.5 requires
// ("Select at merge points"). This follows the minimal/"braun" SSA
// construction algorithm (no separate dominance-frontier pre-pass): a read
// of an unsealed or multi-predecessor block immediately allocates a Select
// placeholder value to break cycles, and the builder records it as pending
// until the block is sealed (all of its predecessors are known), at which
// point the placeholder's incoming operands are filled in.
type Builder struct {
	name      string
	args      []any
	hasVarArg bool

	blocks   []*BasicBlock
	handlers []ExceptInfo

	current *BasicBlock
	nextVal Value

	sealed  map[*BasicBlock]bool
	pending map[*BasicBlock][]pendingSelect

	loops []loopInfo
}

type pendingSelect struct {
	sym any
	sel *Select
}

type loopInfo struct {
	Break, Continue *BasicBlock
}

// NewBuilder starts constructing a code unit named name over args (in
// parameter order), variadic per hasVarArg.
func NewBuilder(name string, args []any, hasVarArg bool) *Builder {
	return &Builder{
		name:      name,
		args:      args,
		hasVarArg: hasVarArg,
		sealed:    make(map[*BasicBlock]bool),
		pending:   make(map[*BasicBlock][]pendingSelect),
	}
}

// NewBlock creates and registers a fresh, unsealed BasicBlock.
func (b *Builder) NewBlock(label string) *BasicBlock {
	blk := NewBasicBlock(label)
	b.blocks = append(b.blocks, blk)
	return blk
}

// SetCurrent makes blk the insertion point for subsequent Emit/NewValue
// calls and variable writes.
func (b *Builder) SetCurrent(blk *BasicBlock) { b.current = blk }

// Current returns the block Emit currently appends to.
func (b *Builder) Current() *BasicBlock { return b.current }

// NewValue allocates the next dense Value slot.
func (b *Builder) NewValue() Value {
	v := b.nextVal
	b.nextVal++
	return v
}

// Emit appends s to the current block. The caller must not Emit into a
// block whose Terminator is already set.
func (b *Builder) Emit(s Stmt) { b.current.Append(s) }

// WriteVariable records that sym's current value, as of the current block,
// is v.
func (b *Builder) WriteVariable(sym any, v Value) { b.current.Defined[sym] = v }

// ReadVariable resolves sym's current value as seen from blk, inserting a
// Select if blk has (or may yet have) more than one predecessor.
func (b *Builder) ReadVariable(sym any, blk *BasicBlock) Value {
	if v, ok := blk.Defined[sym]; ok {
		return v
	}

	preds := predSlice(blk)
	if b.sealed[blk] && len(preds) == 1 {
		v := b.ReadVariable(sym, preds[0])
		blk.Defined[sym] = v
		return v
	}

	// Unsealed, or a genuine merge point: allocate a placeholder now (before
	// recursing) so a loop back-edge that reads sym again sees this value
	// instead of recursing forever.
	v := b.NewValue()
	blk.Defined[sym] = v
	sel := NewSelect(token.NoPos, v, nil)
	b.pending[blk] = append(b.pending[blk], pendingSelect{sym: sym, sel: sel})
	if b.sealed[blk] {
		b.fillSelect(sel, sym, blk)
	}
	return v
}

func (b *Builder) fillSelect(sel *Select, sym any, blk *BasicBlock) {
	for _, pred := range predSlice(blk) {
		sel.Incoming = append(sel.Incoming, SelectIncoming{Block: pred, Value: b.ReadVariable(sym, pred)})
	}
}

// SealBlock declares that blk's predecessor set is now final: every Select
// placeholder requested against blk while it was unsealed is filled in.
// Every block the builder creates must eventually be sealed.
func (b *Builder) SealBlock(blk *BasicBlock) {
	if b.sealed[blk] {
		return
	}
	b.sealed[blk] = true
	for _, p := range b.pending[blk] {
		if len(p.sel.Incoming) == 0 && len(predSlice(blk)) > 0 {
			b.fillSelect(p.sel, p.sym, blk)
		}
	}
}

func predSlice(blk *BasicBlock) []*BasicBlock {
	preds := make([]*BasicBlock, 0, len(blk.Predecessors()))
	for p := range blk.Predecessors() {
		preds = append(preds, p)
	}
	return preds
}

// PushLoop records the break/continue targets for a nested for/while body.
func (b *Builder) PushLoop(brk, cont *BasicBlock) {
	b.loops = append(b.loops, loopInfo{Break: brk, Continue: cont})
}

// PopLoop discards the innermost loop's break/continue targets.
func (b *Builder) PopLoop() { b.loops = b.loops[:len(b.loops)-1] }

// Loop returns the innermost loop's break/continue targets.
func (b *Builder) Loop() (brk, cont *BasicBlock, ok bool) {
	if len(b.loops) == 0 {
		return nil, nil, false
	}
	top := b.loops[len(b.loops)-1]
	return top.Break, top.Continue, true
}

// AddHandler registers a protected region and its handler table, built by
// the caller as it walks a try/except statement.
func (b *Builder) AddHandler(h ExceptInfo) { b.handlers = append(b.handlers, h) }

// Finish seals any block the caller forgot to seal (finalizing its pending
// Selects against whatever predecessors it has by now) and returns the
// completed CodeBlock. Every pending Select gets prepended to its block's
// statement list, in the order it was first requested.
func (b *Builder) Finish() *CodeBlock {
	for _, blk := range b.blocks {
		b.SealBlock(blk)
		if pend := b.pending[blk]; len(pend) > 0 {
			prefix := make([]Stmt, 0, len(pend))
			for _, p := range pend {
				prefix = append(prefix, p.sel)
			}
			blk.Stmts = append(prefix, blk.Stmts...)
		}
	}
	return &CodeBlock{
		Name:      b.name,
		Blocks:    b.blocks,
		HasVarArg: b.hasVarArg,
		Handlers:  b.handlers,
		Args:      b.args,
	}
}
