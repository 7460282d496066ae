package gc

// Rootable is implemented by any non-garbage-collected object that holds
// references to garbage-collected objects, mirroring GCRootable in
// original_source/Header/BuildScript/GC/Rootable.h. The original
// registers/unregisters itself in its constructor/destructor; Go has no
// destructors, so callers must call Heap.AddRoot/RemoveRoot explicitly
// (typically RemoveRoot via defer right after AddRoot).
type Rootable interface {
	Trace(t Tracer)
}
