package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/optimize"
	"github.com/klang/buildscript/lang/token"
)

func TestConstantPropagationFoldsBinary(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SealBlock(entry)

	a, c, r := b.NewValue(), b.NewValue(), b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, a, int64(2)))
	b.Emit(ir.NewLoadConst(token.NoPos, c, int64(3)))
	b.Emit(ir.NewBinary(token.NoPos, r, ir.Add, a, c))
	b.Emit(ir.NewReturn(token.NoPos, r))

	code := b.Finish()
	optimize.ConstantPropagation(code)

	folded, ok := code.Blocks[0].Stmts[2].(*ir.LoadConst)
	require.True(t, ok, "expected the Binary to fold into a LoadConst")
	assert.Equal(t, int64(5), folded.Const)
}

func TestCSEDropsRecomputation(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SealBlock(entry)

	x, y := b.NewValue(), b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, x, int64(1)))
	b.Emit(ir.NewLoadConst(token.NoPos, y, int64(2)))
	r1 := b.NewValue()
	b.Emit(ir.NewBinary(token.NoPos, r1, ir.Add, x, y))
	r2 := b.NewValue()
	b.Emit(ir.NewBinary(token.NoPos, r2, ir.Add, x, y))
	b.Emit(ir.NewReturn(token.NoPos, r2))

	code := b.Finish()
	optimize.CommonSubexpressionElimination(code)

	var binaries int
	for _, s := range code.Blocks[0].Stmts {
		if _, ok := s.(*ir.Binary); ok {
			binaries++
		}
	}
	assert.Equal(t, 1, binaries)

	ret, ok := code.Blocks[0].Stmts[len(code.Blocks[0].Stmts)-1].(*ir.Return)
	require.True(t, ok)
	assert.Equal(t, r1, ret.Value)
}

func TestSimplifyBranchesFoldsConstantCondition(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	left := b.NewBlock("left")
	right := b.NewBlock("right")

	b.SetCurrent(entry)
	cond := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, cond, true))
	b.Emit(ir.NewBrCond(token.NoPos, cond, left, right))
	entry.AddSuccessor(left)
	entry.AddSuccessor(right)
	b.SealBlock(entry)

	b.SetCurrent(left)
	b.Emit(ir.NewReturn(token.NoPos, ir.Invalid))
	b.SealBlock(left)

	b.SetCurrent(right)
	b.Emit(ir.NewReturn(token.NoPos, ir.Invalid))
	b.SealBlock(right)

	code := b.Finish()
	optimize.SimplifyBranches(code)

	br, ok := code.Blocks[0].Stmts[len(code.Blocks[0].Stmts)-1].(*ir.Br)
	require.True(t, ok, "expected BrCond to fold into Br")
	assert.Same(t, left, br.Target)
}

func TestRemoveRedundantBranchesMergesStraightLine(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	next := b.NewBlock("next")

	b.SetCurrent(entry)
	b.Emit(ir.NewBr(token.NoPos, next))
	entry.AddSuccessor(next)
	b.SealBlock(entry)

	b.SetCurrent(next)
	v := b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, v, int64(1)))
	b.Emit(ir.NewReturn(token.NoPos, v))
	b.SealBlock(next)

	code := b.Finish()
	optimize.RemoveRedundantBranches(code)

	require.Len(t, code.Blocks, 1)
	assert.Equal(t, "entry", code.Blocks[0].Label)
	last := code.Blocks[0].Stmts[len(code.Blocks[0].Stmts)-1]
	_, ok := last.(*ir.Return)
	assert.True(t, ok)
}

func TestRunSkipsPassesWhenLevelIsNone(t *testing.T) {
	b := ir.NewBuilder("f", nil, false)
	entry := b.NewBlock("entry")
	b.SetCurrent(entry)
	b.SealBlock(entry)
	a, c, r := b.NewValue(), b.NewValue(), b.NewValue()
	b.Emit(ir.NewLoadConst(token.NoPos, a, int64(2)))
	b.Emit(ir.NewLoadConst(token.NoPos, c, int64(3)))
	b.Emit(ir.NewBinary(token.NoPos, r, ir.Add, a, c))
	b.Emit(ir.NewReturn(token.NoPos, r))
	code := b.Finish()

	optimize.Run([]*ir.CodeBlock{code}, optimize.None)

	_, stillBinary := code.Blocks[0].Stmts[2].(*ir.Binary)
	assert.True(t, stillBinary)
}
