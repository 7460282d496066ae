package gc

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Statistics is a snapshot of pool usage, mirroring GCStatistics (declared
// alongside GCAllocator in Allocator.h; no separate header exists for it).
type Statistics struct {
	MaxPoolSize         uint64
	GenMetadataSize     uint64
	GenMetadataUsedSize uint64
	GenOldSize          uint64
	GenOldUsedSize      uint64
}

// Object is a heap allocation: its ObjectHeader plus the payload bytes
// that follow it, mirroring the header-immediately-before-payload layout
// GCObjectHeader/ToObject/FromObject establish in ObjectHeader.h.
type Object struct {
	Header  *ObjectHeader
	Payload []byte
}

// Allocator is the pluggable garbage-collection implementation interface,
// mirroring GCAllocator in original_source/Header/BuildScript/GC/Allocator.h.
// The shipped implementation, NoopAllocator, never reclaims.
type Allocator interface {
	Allocate(size uintptr, region Region) (*Object, error)
	Finalize()
	Statistics() Statistics
	LastFailReason() FailReason
	Collect(generation Generation, reason TriggerReason)
	HasPendingGC() bool
	WaitForGC()
}

// baseAllocator holds the state every Allocator implementation shares,
// mirroring the protected members of GCAllocator: the options, the
// optional gc-log file (opened with zap, the teacher's structured logging
// library, rather than GCAllocator.cpp's raw stdio FILE*), and the last
// failure reason. reason is stored atomically because Heap.Allocate takes
// no lock, so concurrently registered threads may record a failure at the
// same time LastFailReason is read from another goroutine.
type baseAllocator struct {
	options Options
	log     *zap.Logger
	reason  atomic.Uint32
}

func newBaseAllocator(options Options) (baseAllocator, error) {
	b := baseAllocator{options: options}
	b.reason.Store(uint32(FailNone))

	if options.EnableGCLog {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{options.GCLogPath}
		logger, err := cfg.Build()
		if err != nil {
			return baseAllocator{}, err
		}
		b.log = logger
	} else {
		b.log = zap.NewNop()
	}

	return b, nil
}

func (b *baseAllocator) close() error {
	if b.log != nil {
		return b.log.Sync()
	}
	return nil
}

func (b *baseAllocator) LastFailReason() FailReason { return FailReason(b.reason.Load()) }
