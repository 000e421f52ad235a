// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "unsafe"

const (
	// wordSize is the native pointer width, the unit header and
	// footer words are measured in.
	wordSize = unsafe.Sizeof(uintptr(0))
	// dwordSize is the alignment unit (D = 2W in the glossary).
	dwordSize = 2 * wordSize
	// minBlockSize is the smallest block a free list node can occupy:
	// header + footer + two link words.
	minBlockSize = 4 * wordSize

	allocBit = uintptr(1)
	sizeMask = ^uintptr(dwordSize - 1)
)

// loadWord and storeWord are the only two functions in the package
// that dereference a raw heap address. Every other file computes
// addresses as plain uintptr arithmetic and goes through these to
// touch memory; spec.md §9 calls this out as a "heap view" boundary
// isolating the unsafe bits from the layout/free-list/coalesce logic.
// It is safe here only because addr always points into memory
// reserved by a HeapProvider outside the Go heap (see heap_unix.go /
// heap_windows.go): that memory is never moved or collected by the
// garbage collector, so carrying its addresses as bare uintptr values
// across calls does not invalidate them the way it would for ordinary
// Go-allocated memory.
func loadWord(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func storeWord(addr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = v
}

// pack combines a block size with its allocation bit. size must
// already be a multiple of dwordSize.
func pack(size uintptr, alloc bool) uintptr {
	if alloc {
		return size | allocBit
	}
	return size
}

// header returns the address of bp's header word.
func header(bp uintptr) uintptr { return bp - wordSize }

// blockSize reads the total size (header + payload + footer) of the
// block whose payload pointer is bp.
func blockSize(bp uintptr) uintptr { return loadWord(header(bp)) & sizeMask }

// allocBitAt reads the allocation bit out of the header or footer word
// stored at addr.
func allocBitAt(addr uintptr) bool { return loadWord(addr)&allocBit != 0 }

// isAllocated reports whether bp's block is currently allocated.
func isAllocated(bp uintptr) bool { return allocBitAt(header(bp)) }

// footer returns the address of bp's footer word.
func footer(bp uintptr) uintptr { return bp + blockSize(bp) - dwordSize }

// nextBlock returns the payload pointer of the block physically
// following bp.
func nextBlock(bp uintptr) uintptr { return bp + blockSize(bp) }

// prevBlock returns the payload pointer of the block physically
// preceding bp, read in O(1) from that block's footer (the boundary
// tag two words below bp, just under bp's header).
func prevBlock(bp uintptr) uintptr {
	prevSize := loadWord(bp-dwordSize) & sizeMask
	return bp - prevSize
}

// writeTags writes size|alloc into both the header and footer of the
// block at bp.
func writeTags(bp, size uintptr, alloc bool) {
	v := pack(size, alloc)
	storeWord(header(bp), v)
	storeWord(footer(bp), v)
}

// payloadCapacity is the number of payload bytes available in a block
// of the given total size.
func payloadCapacity(size uintptr) uintptr { return size - dwordSize }

// alignedSize computes the internal block size ("asize" in spec.md
// §4.3) needed to satisfy an external request of n bytes.
func alignedSize(n int) uintptr {
	size := uintptr(n)
	if size <= dwordSize {
		return 2 * dwordSize
	}
	return dwordSize * ((size + dwordSize + (dwordSize - 1)) / dwordSize)
}

// bytesOf returns a byte slice view of length n over the capacity
// bytes available at bp. bp must be a live, allocated payload pointer.
func bytesOf(bp uintptr, n, capacity int) []byte {
	if capacity == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(bp)), capacity)[:n:capacity]
}

// addrOf recovers the payload pointer backing a byte slice returned
// by Malloc/Realloc, using its full capacity so a reslice by the
// caller (e.g. b[:0]) still resolves to the original block.
func addrOf(b []byte) uintptr {
	full := b[:cap(b)]
	if len(full) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&full[0]))
}
