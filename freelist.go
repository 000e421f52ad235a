// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

// Free blocks are threaded through a doubly linked list stored in the
// first two words of their own payload: word 0 is the previous-free
// link, word 1 is the next-free link. The list head lives on the
// Allocator; 0 is the null link (no address in a HeapProvider-backed
// heap is ever zero, so it doubles as the sentinel).

func prevFree(bp uintptr) uintptr { return loadWord(bp) }
func nextFree(bp uintptr) uintptr { return loadWord(bp + wordSize) }
func setPrevFree(bp, v uintptr)   { storeWord(bp, v) }
func setNextFree(bp, v uintptr)   { storeWord(bp+wordSize, v) }

// freeListInsert pushes bp onto the head of the free list.
func (a *Allocator) freeListInsert(bp uintptr) {
	setNextFree(bp, a.listHead)
	if a.listHead != 0 {
		setPrevFree(a.listHead, bp)
	}
	setPrevFree(bp, 0)
	a.listHead = bp
}

// freeListRemove splices bp out of the free list. Unlike the source's
// remove_list, it guards the write to next.prev when bp is the list's
// last member (spec.md §9 "remove_list when next is null").
func (a *Allocator) freeListRemove(bp uintptr) {
	prev := prevFree(bp)
	next := nextFree(bp)
	if prev != 0 {
		setNextFree(prev, next)
	} else {
		a.listHead = next
	}
	if next != 0 {
		setPrevFree(next, prev)
	}
}

// freeListLen counts the free list for diagnostics and tests.
func (a *Allocator) freeListLen() int {
	n := 0
	for bp := a.listHead; bp != 0; bp = nextFree(bp) {
		n++
	}
	return n
}
