// Package optimize implements the five IR optimization passes of spec.md
// §4.6, run once per code unit in the fixed order
// Optimizer::Optimize uses in
// original_source/Source/Compiler/Optimize/Optimizer.cpp. Every pass in the
// original ships as an unimplemented TODO stub (confirmed by reading
// original_source/Source/Compiler/Optimize/Pass/*.cpp), so only the pass
// list and ordering carry over; the behavior of each pass is implemented
// fresh against spec.md's description, with no direct C++ lineage.
package optimize

import "github.com/klang/buildscript/lang/ir"

// Level selects how much of the pipeline below runs, matching the
// CLI "optimize-level" option of spec.md §6.
type Level uint8

const (
	None Level = iota
	Optimize
)

// Run applies the pass pipeline to every code unit in codes, in place,
// unless level is None.
func Run(codes []*ir.CodeBlock, level Level) {
	if level == None {
		return
	}
	for _, code := range codes {
		ConstantPropagation(code)
		CommonSubexpressionElimination(code)
		LoopInvariantMove(code)
		SimplifyBranches(code)
		RemoveRedundantBranches(code)
	}
}
