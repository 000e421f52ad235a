// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"io"
)

// CheckOptions configures CheckHeap's verbosity.
type CheckOptions struct {
	// Verbose prints one line per block (mirroring the source's
	// printblock) to w before running the checks.
	Verbose bool
}

// CheckHeap walks the implicit block sequence and the free list,
// reporting any invariant violation to w (spec.md §4.12). Its return
// value and the exact text it writes are informational, not part of
// the allocator's contract — tests use the bool to assert the heap is
// consistent, not the message text.
//
// It never mutates allocator state.
func (a *Allocator) CheckHeap(w io.Writer, opts CheckOptions) bool {
	if !a.initialized {
		return true
	}

	ok := true
	report := func(format string, args ...any) {
		ok = false
		fmt.Fprintf(w, format+"\n", args...)
	}

	if opts.Verbose {
		a.printBlocks(w)
	}

	checks := []func(reporter) bool{
		a.checkPrologue,
		a.checkImplicitWalk,
		a.checkBounds,
		a.checkNoAdjacentFree,
		a.checkFreeListAllocBit,
		a.checkFreeListHeapAgreement,
	}
	for _, check := range checks {
		if !check(report) {
			ok = false
		}
	}
	return ok
}

type reporter func(format string, args ...any)

// checkPrologue verifies the prologue sentinel's shape (spec.md
// invariant 4).
func (a *Allocator) checkPrologue(report reporter) bool {
	ok := true
	if blockSize(a.firstBlock) != dwordSize || !isAllocated(a.firstBlock) {
		report("bad prologue header at %#x", header(a.firstBlock))
		ok = false
	}
	return ok
}

// checkImplicitWalk traverses every block by physical address,
// checking per-block alignment and header/footer equality (spec.md
// invariants 1-3), and that the sequence ends on a well-formed
// epilogue (invariant 5).
func (a *Allocator) checkImplicitWalk(report reporter) bool {
	ok := true
	bp := a.firstBlock
	for {
		size := blockSize(bp)
		if size == 0 {
			if !isAllocated(bp) {
				report("bad epilogue header at %#x", header(bp))
				ok = false
			}
			break
		}

		if bp%dwordSize != 0 {
			report("%#x is not double-word aligned", bp)
			ok = false
		}
		// The prologue is a dwordSize sentinel and is exempt from
		// the minimum real-block size (spec.md invariant 4 vs. 3).
		minSize := minBlockSize
		if bp == a.firstBlock {
			minSize = dwordSize
		}
		if size < minSize || size%dwordSize != 0 {
			report("block at %#x has invalid size %d", bp, size)
			ok = false
		}
		if loadWord(header(bp)) != loadWord(footer(bp)) {
			report("block at %#x: header != footer", bp)
			ok = false
		}

		bp = nextBlock(bp)
	}
	return ok
}

// checkBounds verifies every free-list member lies within
// [heap_low, heap_high] (spec.md invariant 8).
func (a *Allocator) checkBounds(report reporter) bool {
	ok := true
	low, high := a.provider.Low(), a.provider.High()
	for bp := a.listHead; bp != 0; bp = nextFree(bp) {
		if bp < low || bp > high {
			report("free block at %#x is out of heap bounds [%#x, %#x]", bp, low, high)
			ok = false
		}
	}
	return ok
}

// checkNoAdjacentFree verifies coalescing completeness: no free block
// in the heap has a free physical successor (spec.md invariant 6).
func (a *Allocator) checkNoAdjacentFree(report reporter) bool {
	ok := true
	bp := a.firstBlock
	for blockSize(bp) > 0 {
		next := nextBlock(bp)
		if !isAllocated(bp) && blockSize(next) > 0 && !isAllocated(next) {
			report("adjacent free blocks at %#x and %#x were not coalesced", bp, next)
			ok = false
		}
		bp = next
	}
	return ok
}

// checkFreeListAllocBit verifies no free-list member is marked
// allocated (spec.md invariant 7).
func (a *Allocator) checkFreeListAllocBit(report reporter) bool {
	ok := true
	for bp := a.listHead; bp != 0; bp = nextFree(bp) {
		if isAllocated(bp) {
			report("allocated block at %#x found in free list", bp)
			ok = false
		}
	}
	return ok
}

// checkFreeListHeapAgreement verifies the free list and the implicit
// walk agree on how many free blocks exist (spec.md invariant 9).
func (a *Allocator) checkFreeListHeapAgreement(report reporter) bool {
	heapCount := 0
	for bp := a.firstBlock; blockSize(bp) > 0; bp = nextBlock(bp) {
		if !isAllocated(bp) {
			heapCount++
		}
	}
	listCount := a.freeListLen()
	if heapCount != listCount {
		report("free block count mismatch: heap walk found %d, free list has %d", heapCount, listCount)
		return false
	}
	return true
}

// printBlocks prints one line per block in the implicit sequence, the
// way the source's printblock did under checkheap(verbose=true).
func (a *Allocator) printBlocks(w io.Writer) {
	for bp := a.firstBlock; ; bp = nextBlock(bp) {
		size := blockSize(bp)
		if size == 0 {
			fmt.Fprintf(w, "%#x: end of heap\n", bp)
			return
		}
		state := "free"
		if isAllocated(bp) {
			state = "alloc"
		}
		fmt.Fprintf(w, "%#x: size=%d %s\n", bp, size, state)
	}
}
