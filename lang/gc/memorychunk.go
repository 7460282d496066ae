package gc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pageSize mirrors MemoryChunk::GetPageSize's cached OSGetPageSize() call.
var pageSize = unix.Getpagesize()

// PageSize returns the host's page size, matching MemoryChunk::GetPageSize.
func PageSize() int { return pageSize }

// MemoryChunk reserves a page-aligned address range up front and commits
// it in page multiples on demand, mirroring
// original_source/Source/Platform/MemoryChunk.cpp. The original supports
// both VirtualAlloc (Windows) and mmap/mprotect (POSIX); this port targets
// the mmap/mprotect path via golang.org/x/sys/unix, matching the
// deployment target this module ships for.
//
// A MemoryChunk must not be copied: copying duplicates m_base without
// duplicating the underlying mapping, so the zero value is unusable and
// callers always hold a *MemoryChunk.
type MemoryChunk struct {
	size      int
	base      []byte
	committed int
}

// NewMemoryChunk reserves size bytes of address space without committing
// any of it. size must be a multiple of PageSize().
func NewMemoryChunk(size int) (*MemoryChunk, error) {
	if size%pageSize != 0 {
		return nil, fmt.Errorf("gc: chunk size %d is not page aligned (page size %d)", size, pageSize)
	}

	base, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("gc: reserve %d bytes: %w", size, err)
	}

	return &MemoryChunk{size: size, base: base}, nil
}

// Commit grows the committed prefix of the chunk by size bytes, making it
// readable/writable. size must be a multiple of PageSize().
func (c *MemoryChunk) Commit(size int) error {
	if size%pageSize != 0 {
		return fmt.Errorf("gc: commit size %d is not page aligned", size)
	}
	if c.committed+size > c.size {
		return fmt.Errorf("gc: commit %d would exceed reserved size %d", c.committed+size, c.size)
	}

	region := c.base[c.committed : c.committed+size]
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("gc: commit %d bytes: %w", size, err)
	}

	c.committed += size
	return nil
}

// Release shrinks the committed prefix by size bytes, matching
// MemoryChunk::Release's trailing-region semantics.
func (c *MemoryChunk) Release(size int) error {
	if size%pageSize != 0 {
		return fmt.Errorf("gc: release size %d is not page aligned", size)
	}
	if size > c.committed {
		return fmt.Errorf("gc: release %d exceeds committed size %d", size, c.committed)
	}

	region := c.base[c.committed-size : c.committed]
	if err := unix.Mprotect(region, unix.PROT_NONE); err != nil {
		return fmt.Errorf("gc: release %d bytes: %w", size, err)
	}

	c.committed -= size
	return nil
}

// Close unmaps the entire reserved region, matching ~MemoryChunk.
func (c *MemoryChunk) Close() error {
	if c.base == nil {
		return nil
	}
	err := unix.Munmap(c.base)
	c.base = nil
	return err
}

// Base returns the committed region as a byte slice; it grows (by
// re-slicing, never by copying) as Commit is called.
func (c *MemoryChunk) Base() []byte { return c.base[:c.committed] }

// ReservedSize returns the total address space reserved.
func (c *MemoryChunk) ReservedSize() int { return c.size }

// CommittedSize returns the currently committed prefix length.
func (c *MemoryChunk) CommittedSize() int { return c.committed }
