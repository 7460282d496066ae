package gc

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
)

// GlobalHandle is a process-wide, explicitly released reference to a heap
// Object, mirroring Internal::GCHandleBase's "global" flavor in
// GC/Handle.cpp. Every live GlobalHandle is a GC root.
type GlobalHandle struct {
	obj *Object
}

// NewGlobal creates a global handle for obj and registers it as a GC
// root. Callers must call Release when the handle is no longer needed.
func NewGlobal(obj *Object) *GlobalHandle {
	h := &GlobalHandle{obj: obj}
	registerGlobal(h)
	return h
}

// Release unregisters the handle, matching
// Internal::GCHandleBase::UnregisterGlobal (invoked from the original's
// destructor; Go callers must call it explicitly).
func (h *GlobalHandle) Release() { unregisterGlobal(h) }

// Object returns the handle's referent.
func (h *GlobalHandle) Object() *Object { return h.obj }

// Set overwrites the handle's referent, mirroring
// GCHandleBase::WriteBarrier. The original leaves the write barrier a TODO
// stub ("do nothing but the store"); this port keeps the same no-op
// barrier, matching the shipped NoopAllocator's "no collector runs" story.
func (h *GlobalHandle) Set(obj *Object) { h.obj = obj }

// localNode is one link in a thread's LIFO local-handle chain, mirroring
// Internal::GCLocalBase's m_prev chain anchored at the thread-local
// HandleRoot in Handle.cpp.
type localNode struct {
	obj  *Object
	prev *localNode
}

// LocalScope anchors one "thread"'s local handle chain. Go has no native
// thread-local storage (goroutines are not individually addressable), so
// RegisterThread returns this token explicitly instead of stashing it in
// TLS; callers thread it through their own call stack or a
// context.Context, per SPEC_FULL.md §3.10/§5 open question 5. A LocalScope
// must not be shared across goroutines.
type LocalScope struct {
	head *localNode
}

// LocalHandle is a scope-lifetime reference to a heap Object, mirroring
// Internal::GCLocalBase. It always links onto the front of its scope's
// chain (LIFO), and Release must unwind handles in the reverse order they
// were created.
type LocalHandle struct {
	node *localNode
}

// NewLocal pushes a new local handle for obj onto scope's chain.
func (s *LocalScope) NewLocal(obj *Object) *LocalHandle {
	n := &localNode{obj: obj, prev: s.head}
	s.head = n
	return &LocalHandle{node: n}
}

// Release pops h off its scope's chain. It panics if h is not the chain's
// current head, since local handles are required to unwind LIFO, the same
// invariant the original enforces implicitly via C++ destruction order.
func (s *LocalScope) Release(h *LocalHandle) {
	if s.head != h.node {
		panic(fmt.Sprintf("gc: local handle released out of LIFO order in scope %p", s))
	}
	s.head = h.node.prev
}

// Object returns the handle's referent.
func (h *LocalHandle) Object() *Object { return h.node.obj }

// globalHandles is the process-wide registry of live GlobalHandles,
// mirroring the file-scope GlobalHandles set guarded by
// GlobalHandleMapLock in Handle.cpp. It is swiss-table backed per
// SPEC_FULL.md's domain-stack table, the same choice the teacher makes for
// its own hot insert/iterate maps.
var (
	globalHandlesMu sync.Mutex
	globalHandles   = swiss.NewMap[*GlobalHandle, struct{}](16)
)

func registerGlobal(h *GlobalHandle) {
	globalHandlesMu.Lock()
	defer globalHandlesMu.Unlock()
	globalHandles.Put(h, struct{}{})
}

func unregisterGlobal(h *GlobalHandle) {
	globalHandlesMu.Lock()
	defer globalHandlesMu.Unlock()
	globalHandles.Delete(h)
}

func forEachGlobal(f func(*GlobalHandle)) {
	globalHandlesMu.Lock()
	defer globalHandlesMu.Unlock()
	globalHandles.Iter(func(h *GlobalHandle, _ struct{}) bool {
		f(h)
		return false
	})
}
