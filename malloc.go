// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"os"
)

// Trace, when set, makes Malloc, Free and Realloc write a call trace
// to os.Stderr, mirroring the teacher's compile-time trace flag.
var Trace = false

// Allocator is a single-threaded boundary-tag allocator over a
// HeapProvider-supplied region. Its zero value is ready for use: the
// first Malloc lazily performs the equivalent of Init. Callers that
// want to observe provider failure before the first allocation, or
// that want to pass Options, should call New or Init explicitly.
//
// An Allocator must not be used from more than one goroutine at a
// time; spec.md explicitly rules out thread safety.
type Allocator struct {
	provider    HeapProvider
	firstBlock  uintptr // prologue's payload pointer; implicit-walk anchor
	listHead    uintptr // free list head, 0 = null
	chunkSize   int
	initialized bool

	stats Stats
}

// New constructs an Allocator with the given options applied before
// the first use. Init is not called yet; it runs lazily on first
// Malloc, or can be forced with an explicit Init call.
func New(opts ...Option) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Malloc allocates a block with at least size bytes of payload and
// returns it as a byte slice. It returns (nil, nil) for size == 0
// (spec.md's "ignore spurious requests"), and (nil, err) if the
// HeapProvider cannot supply more memory.
func (a *Allocator) Malloc(size int) (r []byte, err error) {
	if Trace {
		defer func() {
			var p *byte
			if len(r) != 0 {
				p = &r[0]
			}
			fmt.Fprintf(os.Stderr, "Malloc(%#x) %p, %v\n", size, p, err)
		}()
	}
	if size < 0 {
		return nil, fmt.Errorf("malloc: negative size %d", size)
	}
	if size == 0 {
		return nil, nil
	}
	if err := a.ensureInit(); err != nil {
		return nil, err
	}

	asize := alignedSize(size)
	bp, ok := a.findFit(asize)
	if !ok {
		extendBytes := asize
		if c := uintptr(a.chunkSize); c > extendBytes {
			extendBytes = c
		}
		extended, err := a.extendHeap(extendBytes / wordSize)
		if err != nil {
			return nil, err
		}
		bp = extended
	}

	a.place(bp, asize)
	a.stats.Mallocs++
	a.stats.BytesRequested += int64(size)

	capacity := int(payloadCapacity(blockSize(bp)))
	return bytesOf(bp, size, capacity), nil
}

// Calloc is like Malloc except the returned memory is zeroed.
func (a *Allocator) Calloc(size int) ([]byte, error) {
	b, err := a.Malloc(size)
	if err != nil || b == nil {
		return b, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free deallocates a block previously returned by Malloc, Calloc or
// Realloc. Freeing nil (or a zero-length reslice of a freed-size-0
// allocation) is a no-op. Double-free and freeing a wild pointer are
// undefined behavior, as in C: this package does not detect them.
func (a *Allocator) Free(b []byte) (err error) {
	if Trace {
		var p *byte
		if len(b) != 0 {
			p = &b[0]
		}
		defer func() {
			fmt.Fprintf(os.Stderr, "Free(%#x) %v\n", p, err)
		}()
	}
	bp := addrOf(b)
	if bp == 0 {
		return nil
	}

	size := blockSize(bp)
	writeTags(bp, size, false)
	a.coalesce(bp)

	a.stats.Frees++
	return nil
}

// Realloc resizes the block backing b to size bytes, preserving
// min(len(b), size) bytes of content, per spec.md §4.11.
//
//   - size == 0 frees b and returns (nil, nil).
//   - size < 0 is a defensive no-op, returning (nil, nil).
//   - b == nil (cap 0) behaves like Malloc(size).
//   - if the existing block already has room, b is returned unchanged
//     (reference-identical), reslicing to the new logical length.
//   - if the physical successor is free and large enough, it is
//     absorbed in place without moving the payload.
//   - otherwise a new block is allocated, the old content copied, and
//     the old block freed.
func (a *Allocator) Realloc(b []byte, size int) (r []byte, err error) {
	if Trace {
		var p0, p *byte
		if len(b) != 0 {
			p0 = &b[0]
		}
		defer func() {
			if len(r) != 0 {
				p = &r[0]
			}
			fmt.Fprintf(os.Stderr, "Realloc(%p, %#x) %p, %v\n", p0, size, p, err)
		}()
	}

	switch {
	case size == 0:
		return nil, a.Free(b)
	case size < 0:
		return nil, nil
	}

	bp := addrOf(b)
	if bp == 0 {
		return a.Malloc(size)
	}

	presize := blockSize(bp)
	reqsize := uintptr(size) + dwordSize // s + 2W; 2W == D, see spec.md §4.11

	if presize >= reqsize {
		return bytesOf(bp, size, int(payloadCapacity(presize))), nil
	}

	next := nextBlock(bp)
	if !isAllocated(next) {
		combined := presize + blockSize(next)
		if combined >= reqsize {
			a.freeListRemove(next)
			writeTags(bp, combined, true)
			return bytesOf(bp, size, int(payloadCapacity(combined))), nil
		}
	}

	grown, err := a.Malloc(size)
	if err != nil {
		return nil, err
	}
	copy(grown, b)
	if err := a.Free(b); err != nil {
		return nil, err
	}
	return grown, nil
}

// findFit performs a first-fit search of the free list for a block of
// at least asize bytes (spec.md §4.4).
func (a *Allocator) findFit(asize uintptr) (uintptr, bool) {
	for bp := a.listHead; bp != 0; bp = nextFree(bp) {
		if blockSize(bp) >= asize {
			return bp, true
		}
	}
	return 0, false
}

// place installs an allocated block of asize bytes at bp, splitting
// off and freeing the remainder if it is at least minBlockSize
// (spec.md §4.5).
func (a *Allocator) place(bp, asize uintptr) {
	total := blockSize(bp)
	remainder := total - asize

	if remainder >= minBlockSize {
		writeTags(bp, asize, true)
		a.freeListRemove(bp)

		rest := bp + asize
		writeTags(rest, remainder, false)
		a.freeListInsert(rest)
		return
	}

	writeTags(bp, total, true)
	a.freeListRemove(bp)
}
