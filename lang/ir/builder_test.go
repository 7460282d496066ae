package ir_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/token"
)

// sym is a stand-in for *resolver.Binding, since lang/ir treats symbols as
// an opaque "any" to avoid an import cycle (the same trick ast.IdentExpr
// uses for its own Binding field).
type sym struct{ name string }

func TestBuilderStraightLineReadAfterWrite(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SealBlock(entry)

	x := &sym{"x"}
	v := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, v, int64(1)))
	b.WriteVariable(x, v)

	got := b.ReadVariable(x, entry)
	assert.Equal(t, v, got)

	code := b.Finish()
	require.Len(t, code.Blocks, 1)
	assert.Len(t, code.Blocks[0].Stmts, 1)
}

func TestBuilderMergePointInsertsSelect(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	left := b.NewBlock("left")
	right := b.NewBlock("right")
	join := b.NewBlock("join")

	b.SetCurrent(entry)
	b.SealBlock(entry)
	cond := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, cond, true))
	b.Emit(ir.NewBrCond(token.NoPos, cond, left, right))
	entry.AddSuccessor(left)
	entry.AddSuccessor(right)

	x := &sym{"x"}

	b.SetCurrent(left)
	lv := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, lv, int64(1)))
	b.WriteVariable(x, lv)
	b.Emit(ir.NewBr(token.NoPos, join))
	left.AddSuccessor(join)
	b.SealBlock(left)

	b.SetCurrent(right)
	rv := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, rv, int64(2)))
	b.WriteVariable(x, rv)
	b.Emit(ir.NewBr(token.NoPos, join))
	right.AddSuccessor(join)
	b.SealBlock(right)

	b.SetCurrent(join)
	b.SealBlock(join)
	merged := b.ReadVariable(x, join)
	assert.NotEqual(t, lv, merged)
	assert.NotEqual(t, rv, merged)

	code := b.Finish()
	joinBlock := code.Blocks[3]
	require.NotEmpty(t, joinBlock.Stmts)
	sel, ok := joinBlock.Stmts[0].(*ir.Select)
	require.True(t, ok, "expected a Select as the join block's first statement")
	assert.Equal(t, merged, sel.Result)
	assert.Len(t, sel.Incoming, 2)
}

func TestBuilderLoopStack(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	brk := b.NewBlock("break")
	cont := b.NewBlock("continue")

	_, _, ok := b.Loop()
	assert.False(t, ok)

	b.PushLoop(brk, cont)
	gotBrk, gotCont, ok := b.Loop()
	require.True(t, ok)
	assert.Same(t, brk, gotBrk)
	assert.Same(t, cont, gotCont)

	b.PopLoop()
	_, _, ok = b.Loop()
	assert.False(t, ok)
}

func TestDumpProducesOneLinePerStatement(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SealBlock(entry)
	v := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, v, int64(1)))
	b.Emit(ir.NewReturn(token.NoPos, v))
	code := b.Finish()

	var buf bytes.Buffer
	require.NoError(t, ir.Dump(&buf, code))
	out := buf.String()
	assert.Contains(t, out, "entry:")
	assert.Contains(t, out, "LOADCONST")
	assert.Contains(t, out, "RETURN")
}

func TestReplaceValueRewritesOperands(t *testing.T) {
	blk := ir.NewBasicBlock("b")
	blk.Append(ir.NewBinary(token.NoPos, 2, ir.Add, 0, 1))
	ir.ReplaceValue(blk, 1, 99)

	bin := blk.Stmts[0].(*ir.Binary)
	assert.Equal(t, ir.Value(0), bin.Left)
	assert.Equal(t, ir.Value(99), bin.Right)
}

func TestOpcodeIsTerminal(t *testing.T) {
	assert.True(t, ir.OpReturn.IsTerminal())
	assert.True(t, ir.OpBr.IsTerminal())
	assert.False(t, ir.OpBinary.IsTerminal())
}
