package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/gc"
)

func TestMemoryChunkCommitAndRelease(t *testing.T) {
	page := gc.PageSize()
	chunk, err := gc.NewMemoryChunk(page * 4)
	require.NoError(t, err)
	defer chunk.Close()

	assert.Equal(t, page*4, chunk.ReservedSize())
	assert.Equal(t, 0, chunk.CommittedSize())

	require.NoError(t, chunk.Commit(page*2))
	assert.Equal(t, page*2, chunk.CommittedSize())
	assert.Len(t, chunk.Base(), page*2)

	require.NoError(t, chunk.Release(page))
	assert.Equal(t, page, chunk.CommittedSize())
}

func TestMemoryChunkRejectsUnalignedSize(t *testing.T) {
	_, err := gc.NewMemoryChunk(gc.PageSize() + 1)
	assert.Error(t, err)
}

func TestMemoryChunkCommitBeyondReservationFails(t *testing.T) {
	page := gc.PageSize()
	chunk, err := gc.NewMemoryChunk(page)
	require.NoError(t, err)
	defer chunk.Close()

	assert.Error(t, chunk.Commit(page*2))
}
