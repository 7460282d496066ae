package gc

import (
	"fmt"
	"sync"
)

// Creator builds an Allocator from Options, mirroring the GCCreator
// function-pointer typedef and the named-implementation registry (GCs map)
// in Heap.cpp. NoopGC is the only implementation the original registers;
// this port ships the same single entry.
type Creator func(Options) (Allocator, error)

const NoopGCName = "noop"

var creators = map[string]Creator{
	NoopGCName: func(o Options) (Allocator, error) { return NewNoopAllocator(o) },
}

// Heap is the process-wide garbage-collected heap singleton, mirroring
// GCHeap in original_source/Header/BuildScript/GC/Heap.h (declared there,
// defined in Heap.cpp). Unlike the C++ original's static members, Go
// allows multiple heaps to coexist for testing; the package declares no
// package-level singleton, so each caller creates and holds its own Heap.
type Heap struct {
	impl Allocator

	rootsMu sync.Mutex
	roots   map[Rootable]struct{}

	threadsMu sync.Mutex
	threads   map[*LocalScope]struct{}
}

// NewHeap builds a Heap backed by the named implementation, mirroring
// GCHeap::Initialize.
func NewHeap(name string, options Options) (*Heap, error) {
	creator, ok := creators[name]
	if !ok {
		return nil, fmt.Errorf("gc: no implementation registered for %q", name)
	}

	impl, err := creator(options)
	if err != nil {
		return nil, err
	}

	return &Heap{
		impl:    impl,
		roots:   make(map[Rootable]struct{}),
		threads: make(map[*LocalScope]struct{}),
	}, nil
}

// RegisterThread brings up a new participant in this heap, mirroring
// GCHeap::RegisterThread. Every goroutine that will hold live handles must
// register before allocating or collecting, and must call UnregisterThread
// (typically via defer) when it is done; the returned *LocalScope is the
// explicit substitute for the original's implicit thread-local root (see
// LocalScope's doc comment).
func (h *Heap) RegisterThread() *LocalScope {
	scope := &LocalScope{}

	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	h.threads[scope] = struct{}{}

	return scope
}

// UnregisterThread retires scope, mirroring GCHeap::UnregisterThread. It
// panics if scope was never registered (or was already unregistered),
// matching the original's assert.
func (h *Heap) UnregisterThread(scope *LocalScope) {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()

	if _, ok := h.threads[scope]; !ok {
		panic("gc: unregistered thread scope; all threads must be registered in Heap for GC")
	}
	delete(h.threads, scope)
}

// AddRoot registers rootable as a GC root, mirroring GCHeap::AddRoot.
func (h *Heap) AddRoot(rootable Rootable) {
	h.rootsMu.Lock()
	defer h.rootsMu.Unlock()
	h.roots[rootable] = struct{}{}
}

// RemoveRoot unregisters rootable, mirroring GCHeap::RemoveRoot.
func (h *Heap) RemoveRoot(rootable Rootable) {
	h.rootsMu.Lock()
	defer h.rootsMu.Unlock()
	delete(h.roots, rootable)
}

// ScanRoots walks every root reachable through t, mirroring
// GCHeap::ScanGCRoots: the registered Rootable set, the global handle
// registry, and every registered thread's local handle chain (walked
// newest-to-oldest, following the original's m_prev traversal).
func (h *Heap) ScanRoots(t Tracer) {
	h.rootsMu.Lock()
	for rootable := range h.roots {
		rootable.Trace(t)
	}
	h.rootsMu.Unlock()

	forEachGlobal(func(handle *GlobalHandle) {
		t.Visit(handle.Object())
	})

	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	for scope := range h.threads {
		for n := scope.head; n != nil; n = n.prev {
			t.Visit(n.obj)
		}
	}
}

// Allocate requests size bytes from region, mirroring GCAllocator::Allocate
// dispatched through the heap.
func (h *Heap) Allocate(size uintptr, region Region) (*Object, error) {
	return h.impl.Allocate(size, region)
}

// Collect triggers a collection cycle for generation, mirroring
// GCHeap-level access to GCAllocator::Collect. The shipped NoopAllocator
// makes this a no-op.
func (h *Heap) Collect(generation Generation, reason TriggerReason) {
	h.impl.Collect(generation, reason)
}

// HasPendingGC reports whether a collection is scheduled, mirroring
// GCAllocator::HasPendingGC. Always false for the shipped NoopAllocator.
func (h *Heap) HasPendingGC() bool { return h.impl.HasPendingGC() }

// WaitForGC blocks until any pending collection finishes, mirroring
// GCAllocator::WaitForGC. A no-op for the shipped NoopAllocator.
func (h *Heap) WaitForGC() { h.impl.WaitForGC() }

// Statistics reports the backing allocator's pool usage.
func (h *Heap) Statistics() Statistics { return h.impl.Statistics() }

// Close finalizes the backing allocator, releasing its reserved memory.
func (h *Heap) Close() { h.impl.Finalize() }
