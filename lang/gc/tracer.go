package gc

// Tracer visits every heap object reachable from a root during a
// collection cycle, mirroring GCTracer in
// original_source/Header/BuildScript/GC/Tracer.h. The original overloads
// Trace for several handle flavors and a raw value type; Go has no
// overloading, so Rootable.Trace receives the Tracer directly and is
// expected to call Visit once per *Object it holds a reference to.
type Tracer interface {
	Visit(obj *Object)
}

// TracerFunc adapts a plain function to a Tracer.
type TracerFunc func(obj *Object)

func (f TracerFunc) Visit(obj *Object) { f(obj) }
