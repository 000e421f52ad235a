// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "fmt"

// HeapProvider is the allocator's only collaborator: a source of
// page-granular, contiguous, growable address space. The allocator
// never shrinks what it is given back. Extend, Low and High mirror
// the classic memlib mem_sbrk/mem_heap_lo/mem_heap_hi trio.
type HeapProvider interface {
	// Extend grows the region by n bytes and returns the address the
	// region ended at before the growth (the "old break"). It
	// returns an error if the provider cannot satisfy the request.
	Extend(n int) (uintptr, error)
	// Low reports the lowest valid address in the region.
	Low() uintptr
	// High reports the highest valid address in the region.
	High() uintptr
}

// defaultChunkSize is the quantum by which the heap grows when a
// malloc can't be satisfied from the free list (CHUNKSIZE in
// original_source/Proj/code/mm.c).
const defaultChunkSize = 4096

// Option configures an Allocator at construction time. There is no
// persisted configuration and no environment/CLI surface (spec.md
// §6); these are compile-time-equivalent tunables exposed as
// constructor options so tests can shrink them cheaply.
type Option func(*Allocator)

// WithChunkSize overrides the default heap-extension quantum.
// extendHeap takes it as n/wordSize words, so it is truncated to whole
// words and then rounded up to an even word count.
func WithChunkSize(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// WithHeapProvider overrides the default OS-backed HeapProvider, for
// tests that want to inject failures or inspect the raw region.
func WithHeapProvider(p HeapProvider) Option {
	return func(a *Allocator) { a.provider = p }
}

// ensureInit lazily performs §4.8's init the first time the allocator
// is used, mirroring the teacher's "zero value is ready for use"
// convention while still exposing Init as its own operation for
// callers that want to observe provider failure up front.
func (a *Allocator) ensureInit() error {
	if a.initialized {
		return nil
	}
	return a.Init()
}

// Init requests the initial sentinel region and the first heap chunk
// from the HeapProvider. It is idempotent: calling it again after a
// successful Init is a no-op.
func (a *Allocator) Init() error {
	if a.initialized {
		return nil
	}
	if a.provider == nil {
		a.provider = newDefaultProvider()
	}
	if a.chunkSize <= 0 {
		a.chunkSize = defaultChunkSize
	}

	base, err := a.provider.Extend(4 * int(wordSize))
	if err != nil {
		return fmt.Errorf("malloc: init: %w", ErrHeapExhausted)
	}

	storeWord(base, 0)                                    // alignment pad
	storeWord(base+wordSize, pack(dwordSize, true))       // prologue header
	storeWord(base+2*wordSize, pack(dwordSize, true))     // prologue footer
	storeWord(base+3*wordSize, pack(0, true))             // epilogue header

	a.firstBlock = base + 2*wordSize // prologue's payload pointer
	a.listHead = 0                   // null head (spec.md §9 open question, resolved)

	if _, err := a.extendHeap(uintptr(a.chunkSize) / wordSize); err != nil {
		return fmt.Errorf("malloc: init: %w", err)
	}

	a.initialized = true
	return nil
}

// extendHeap grows the heap by at least words words (rounded up to an
// even count to preserve double-word alignment), installs a new
// epilogue, and coalesces the new block with a free physical
// predecessor if one exists (spec.md §4.7).
func (a *Allocator) extendHeap(words uintptr) (uintptr, error) {
	if words%2 != 0 {
		words++
	}
	bytes := words * wordSize

	old, err := a.provider.Extend(int(bytes))
	if err != nil {
		return 0, fmt.Errorf("%w", ErrHeapExhausted)
	}

	// old is the address the previous epilogue header occupied,
	// reused directly as the new block's payload pointer: its header
	// lands at old-wordSize, exactly where the epilogue used to be.
	bp := old
	writeTags(bp, bytes, false)
	storeWord(bp+bytes-wordSize, pack(0, true)) // new epilogue header

	a.stats.BytesExtended += int64(bytes)
	a.stats.Extensions++

	return a.coalesce(bp), nil
}

// Close releases the HeapProvider's reserved address space, if it
// supports release, and resets the Allocator to its zero value. It is
// not part of spec.md's contract (the heap never shrinks while in
// use) but mirrors the teacher's Close, useful for test harnesses that
// construct many allocators in one process.
func (a *Allocator) Close() error {
	var err error
	if c, ok := a.provider.(interface{ Close() error }); ok {
		err = c.Close()
	}
	*a = Allocator{}
	return err
}
