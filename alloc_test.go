// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestInitMallocFree is spec.md §8 end-to-end scenario 1.
func TestInitMallocFree(t *testing.T) {
	a := New()
	require.NoError(t, a.Init())
	defer a.Close()

	p, err := a.Malloc(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Zero(t, addrOf(p)%dwordSize, "payload pointer must be double-word aligned")

	require.NoError(t, a.Free(p))
	require.Equal(t, 1, a.freeListLen())
}

// TestSplitAndReuse is spec.md §8 end-to-end scenario 2: first-fit
// reuses the most recently freed head block.
func TestSplitAndReuse(t *testing.T) {
	a := newTestAllocator(t)

	x, err := a.Malloc(24)
	require.NoError(t, err)
	y, err := a.Malloc(24)
	require.NoError(t, err)
	_ = y

	require.NoError(t, a.Free(x))
	z, err := a.Malloc(24)
	require.NoError(t, err)

	require.Equal(t, addrOf(x), addrOf(z), "first-fit should reuse the just-freed head block")
}

// TestReallocInPlaceGrow is spec.md §8 end-to-end scenario 4.
func TestReallocInPlaceGrow(t *testing.T) {
	a := newTestAllocator(t)

	x, err := a.Malloc(32)
	require.NoError(t, err)
	y, err := a.Malloc(32)
	require.NoError(t, err)

	require.NoError(t, a.Free(y))

	grown, err := a.Realloc(x, 48)
	require.NoError(t, err)
	require.Equal(t, addrOf(x), addrOf(grown), "in-place grow must not move the block")

	other, err := a.Malloc(32)
	require.NoError(t, err)
	require.NotEqual(t, addrOf(x), addrOf(other))
}

// TestReallocCopiesAndMoves is spec.md §8 end-to-end scenario 5.
func TestReallocCopiesAndMoves(t *testing.T) {
	a := newTestAllocator(t)

	x, err := a.Malloc(32)
	require.NoError(t, err)
	_, err = a.Malloc(32) // pin the successor so x can't grow in place
	require.NoError(t, err)

	for i := range x {
		x[i] = byte(i)
	}

	grown, err := a.Realloc(x, 128)
	require.NoError(t, err)
	require.NotEqual(t, addrOf(x), addrOf(grown))
	require.Len(t, grown, 128)

	for i := 0; i < 32; i++ {
		require.Equalf(t, byte(i), grown[i], "byte %d not preserved across realloc move", i)
	}
}

// TestReallocIdempotentShrink is the "Idempotence of shrink-realloc"
// testable property from spec.md §8.
func TestReallocIdempotentShrink(t *testing.T) {
	a := newTestAllocator(t)

	b, err := a.Malloc(64)
	require.NoError(t, err)

	shrunk, err := a.Realloc(b, 8)
	require.NoError(t, err)
	require.Equal(t, addrOf(b), addrOf(shrunk))
	require.Len(t, shrunk, 8)
}

func TestReallocZeroFrees(t *testing.T) {
	a := newTestAllocator(t)

	b, err := a.Malloc(16)
	require.NoError(t, err)

	r, err := a.Realloc(b, 0)
	require.NoError(t, err)
	require.Nil(t, r)
	require.Equal(t, int64(1), a.Stats().Frees)
}

func TestReallocNilActsLikeMalloc(t *testing.T) {
	a := newTestAllocator(t)

	r, err := a.Realloc(nil, 16)
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Len(t, r, 16)
}

func TestReallocNegativeSizeIsNoop(t *testing.T) {
	a := newTestAllocator(t)

	r, err := a.Realloc(nil, -1)
	require.NoError(t, err)
	require.Nil(t, r)
}

func TestMallocZeroReturnsNil(t *testing.T) {
	a := newTestAllocator(t)

	r, err := a.Malloc(0)
	require.NoError(t, err)
	require.Nil(t, r)
}

func TestFreeNilIsNoop(t *testing.T) {
	a := newTestAllocator(t)
	require.NoError(t, a.Free(nil))
}

func TestCapacityWritesDoNotCorruptNeighbors(t *testing.T) {
	a := newTestAllocator(t)

	guard, err := a.Malloc(16)
	require.NoError(t, err)
	for i := range guard {
		guard[i] = 0xAA
	}

	target, err := a.Malloc(40)
	require.NoError(t, err)
	for i := range target {
		target[i] = byte(i)
	}

	other, err := a.Malloc(16)
	require.NoError(t, err)
	for i := range other {
		other[i] = 0xBB
	}

	for i, v := range guard {
		require.Equalf(t, byte(0xAA), v, "guard block byte %d corrupted", i)
	}
	for i, v := range other {
		require.Equalf(t, byte(0xBB), v, "trailing block byte %d corrupted", i)
	}
	for i, v := range target {
		require.Equalf(t, byte(i), v, "target block byte %d corrupted", i)
	}
}
