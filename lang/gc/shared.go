package gc

import "go.uber.org/atomic"

// calibrateSize pads a requested payload size up to ObjectAlignment and
// reserves room for the header that precedes it, mirroring CalibrateSize
// in original_source/Header/BuildScript/GC/Impl/Shared.h.
func calibrateSize(size uintptr) uintptr {
	if rem := size % ObjectAlignment; rem != 0 {
		size += ObjectAlignment - rem
	}
	size += MaxHeaderSize
	return size
}

// allocateFromChunk bump-allocates size bytes from chunk, committing
// additional pages on demand, mirroring AllocateFromChunk in Shared.h. It
// returns the offset of the allocation within chunk's committed region, or
// ok=false if the chunk has no room left (fully committed, or the next
// commit would overflow the reservation).
//
// used is shared across every goroutine Heap.RegisterThread admitted, and
// Heap.Allocate takes no lock of its own, so the bump pointer is advanced
// with a CAS loop rather than a plain read-modify-write.
func allocateFromChunk(chunk *MemoryChunk, size uintptr, used *atomic.Uintptr) (offset uintptr, ok bool) {
	for {
		cur := used.Load()
		needed := int(size) + int(cur)
		if chunk.CommittedSize() <= needed {
			page := PageSize()
			requestSize := page * (int(size)/page + 1)

			isFull := chunk.CommittedSize() == chunk.ReservedSize()
			isOverflow := chunk.CommittedSize()+requestSize > chunk.ReservedSize()
			if isFull || isOverflow {
				return 0, false
			}

			if err := chunk.Commit(requestSize); err != nil {
				return 0, false
			}
		}

		if used.CAS(cur, cur+size) {
			return cur, true
		}
	}
}
