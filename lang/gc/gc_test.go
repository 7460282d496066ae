package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klang/buildscript/lang/gc"
)

func testOptions() gc.Options {
	o := gc.DefaultOptions()
	o.MaxPoolSize = uint64(gc.PageSize())
	o.MaxMetadataSize = uint64(gc.PageSize())
	return o
}

func TestHeapAllocateStampsHeader(t *testing.T) {
	h, err := gc.NewHeap(gc.NoopGCName, testOptions())
	require.NoError(t, err)
	defer h.Close()

	obj, err := h.Allocate(32, gc.Main)
	require.NoError(t, err)
	assert.Equal(t, uintptr(32), obj.Header.Size)
	assert.Equal(t, gc.MarkWhite, obj.Header.Mark)
	assert.Equal(t, gc.GenerationNursery, obj.Header.Generation)
	assert.GreaterOrEqual(t, len(obj.Payload), 32)
}

func TestHeapAllocateExhaustsReservation(t *testing.T) {
	o := testOptions()
	h, err := gc.NewHeap(gc.NoopGCName, o)
	require.NoError(t, err)
	defer h.Close()

	var lastErr error
	for i := 0; i < 10_000; i++ {
		if _, err := h.Allocate(64, gc.Main); err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr, "expected allocation to eventually fail once the reserved region is exhausted")
}

func TestHeapHasPendingGCAlwaysFalseForNoop(t *testing.T) {
	h, err := gc.NewHeap(gc.NoopGCName, testOptions())
	require.NoError(t, err)
	defer h.Close()

	h.Collect(gc.GenerationOld, gc.UserRequested)
	assert.False(t, h.HasPendingGC())
}

type fakeRootable struct {
	traced []*gc.Object
}

func (r *fakeRootable) Trace(t gc.Tracer) {
	for _, obj := range r.traced {
		t.Visit(obj)
	}
}

func TestScanRootsVisitsRootablesGlobalsAndLocals(t *testing.T) {
	h, err := gc.NewHeap(gc.NoopGCName, testOptions())
	require.NoError(t, err)
	defer h.Close()

	a, err := h.Allocate(16, gc.Main)
	require.NoError(t, err)
	b, err := h.Allocate(16, gc.Main)
	require.NoError(t, err)
	c, err := h.Allocate(16, gc.Main)
	require.NoError(t, err)

	root := &fakeRootable{traced: []*gc.Object{a}}
	h.AddRoot(root)
	defer h.RemoveRoot(root)

	global := gc.NewGlobal(b)
	defer global.Release()

	scope := h.RegisterThread()
	defer h.UnregisterThread(scope)
	local := scope.NewLocal(c)
	defer scope.Release(local)

	var visited []*gc.Object
	h.ScanRoots(gc.TracerFunc(func(obj *gc.Object) {
		visited = append(visited, obj)
	}))

	assert.ElementsMatch(t, []*gc.Object{a, b, c}, visited)
}

func TestLocalScopeReleaseOutOfOrderPanics(t *testing.T) {
	h, err := gc.NewHeap(gc.NoopGCName, testOptions())
	require.NoError(t, err)
	defer h.Close()

	obj, err := h.Allocate(8, gc.Main)
	require.NoError(t, err)

	scope := h.RegisterThread()
	defer h.UnregisterThread(scope)

	first := scope.NewLocal(obj)
	second := scope.NewLocal(obj)
	_ = second

	assert.Panics(t, func() { scope.Release(first) })
}

func TestUnregisterUnknownThreadPanics(t *testing.T) {
	h, err := gc.NewHeap(gc.NoopGCName, testOptions())
	require.NoError(t, err)
	defer h.Close()

	assert.Panics(t, func() { h.UnregisterThread(&gc.LocalScope{}) })
}
