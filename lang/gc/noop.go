package gc

import (
	"unsafe"

	"go.uber.org/atomic"
)

// NoopAllocator is an allocation-only collector: it bump-allocates out of
// two reserved regions (the main heap and a metadata region) and never
// reclaims, mirroring original_source/Source/GC/Impl/Noop.cpp exactly.
// Collect is a no-op and HasPendingGC is always false.
type NoopAllocator struct {
	baseAllocator

	heap, metadata *MemoryChunk
	heapUsed       atomic.Uintptr
	metadataUsed   atomic.Uintptr
}

var _ Allocator = (*NoopAllocator)(nil)

// NewNoopAllocator reserves options.MaxPoolSize and options.MaxMetadataSize
// bytes of address space, matching NoopGC::Create/NoopGC's constructor.
func NewNoopAllocator(options Options) (*NoopAllocator, error) {
	base, err := newBaseAllocator(options)
	if err != nil {
		return nil, err
	}

	heapSize := roundUpToPage(int(options.MaxPoolSize))
	metaSize := roundUpToPage(int(options.MaxMetadataSize))

	heap, err := NewMemoryChunk(heapSize)
	if err != nil {
		return nil, err
	}
	metadata, err := NewMemoryChunk(metaSize)
	if err != nil {
		heap.Close()
		return nil, err
	}

	return &NoopAllocator{baseAllocator: base, heap: heap, metadata: metadata}, nil
}

func roundUpToPage(size int) int {
	page := PageSize()
	if rem := size % page; rem != 0 {
		size += page - rem
	}
	return size
}

// Allocate bump-allocates size bytes from the selected region, prefixing
// the payload with a stamped ObjectHeader, matching NoopGC::Allocate.
func (n *NoopAllocator) Allocate(size uintptr, region Region) (*Object, error) {
	allocSize := calibrateSize(size)

	var (
		chunk *MemoryChunk
		used  *atomic.Uintptr
	)
	if region == Metadata {
		chunk, used = n.metadata, &n.metadataUsed
	} else {
		chunk, used = n.heap, &n.heapUsed
	}

	offset, ok := allocateFromChunk(chunk, allocSize, used)
	if !ok {
		n.reason.Store(uint32(FailOutOfMemory))
		return nil, errOutOfMemory(region)
	}

	base := chunk.Base()[offset : offset+allocSize]
	for i := range base {
		base[i] = 0
	}

	header := NewObjectHeader(size)
	headerBytes := base[:MaxHeaderSize]
	*(*ObjectHeader)(unsafe.Pointer(&headerBytes[0])) = header

	return &Object{
		Header:  (*ObjectHeader)(unsafe.Pointer(&headerBytes[0])),
		Payload: base[MaxHeaderSize:],
	}, nil
}

// Finalize releases both reserved chunks, matching NoopGC's (implicit,
// compiler-generated) destructor path; the original's Finalize override is
// itself empty.
func (n *NoopAllocator) Finalize() {
	n.close()
	n.heap.Close()
	n.metadata.Close()
}

// Statistics reports pool sizing, matching NoopGC::GetStatistics.
func (n *NoopAllocator) Statistics() Statistics {
	return Statistics{
		MaxPoolSize:         n.options.MaxPoolSize + n.options.MaxMetadataSize,
		GenMetadataSize:     n.options.MaxMetadataSize,
		GenMetadataUsedSize: uint64(n.metadataUsed.Load()),
		GenOldSize:          n.options.MaxPoolSize,
		GenOldUsedSize:      uint64(n.heapUsed.Load()),
	}
}

// Collect does nothing, matching NoopGC::Collect.
func (n *NoopAllocator) Collect(Generation, TriggerReason) {}

// HasPendingGC always reports false, matching NoopGC::HasPendingGC.
func (n *NoopAllocator) HasPendingGC() bool { return false }

// WaitForGC does nothing, matching NoopGC::WaitForGC.
func (n *NoopAllocator) WaitForGC() {}
