package ir

// Value is a dense, read-only, single-assignment value produced by one
// IR statement within one BasicBlock, per spec.md §3 "IRValue".
type Value uint32

// Invalid is the zero-information Value, returned by statements with no
// result (Store, Br, ...).
const Invalid Value = 1<<32 - 1

// IsValid reports whether v was produced by some statement.
func (v Value) IsValid() bool { return v != Invalid }
