// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"unsafe"
)

// defaultReservation is the address space ceiling reserved up front
// for the default HeapProvider. Because the backing pages are
// demand-paged (see heap_unix.go / heap_windows.go), reserving this
// much costs nothing until Extend's logical break actually walks into
// a page and the process touches it.
const defaultReservation = 1 << 30 // 1 GiB

// osHeap is the default HeapProvider: a single reserved region of raw
// address space with a monotonically advancing logical break,
// emulating classic sbrk(2) growth over an mmap'd (or, on Windows, a
// paging-file-backed) reservation.
type osHeap struct {
	region []byte // keeps the reservation alive and Close()-able
	base   uintptr
	brk    uintptr
	ceil   uintptr
}

func newDefaultProvider() *osHeap {
	return newOSHeap(defaultReservation)
}

func newOSHeap(capacity int) *osHeap {
	b, err := reserveRegion(capacity)
	if err != nil {
		// A failure to reserve address space up front is reported
		// lazily on the first Extend call, keeping HeapProvider's
		// constructor-free contract (spec.md only knows about
		// Extend/Low/High, not construction failure).
		return &osHeap{}
	}
	base := uintptr(unsafe.Pointer(&b[0]))
	return &osHeap{region: b, base: base, brk: base, ceil: base + uintptr(capacity)}
}

func (h *osHeap) Extend(n int) (uintptr, error) {
	if h.region == nil {
		return 0, fmt.Errorf("malloc: heap provider has no reserved region")
	}
	old := h.brk
	next := old + uintptr(n)
	if next > h.ceil {
		return 0, fmt.Errorf("malloc: heap provider exhausted its %d-byte reservation", len(h.region))
	}
	h.brk = next
	return old, nil
}

func (h *osHeap) Low() uintptr { return h.base }

func (h *osHeap) High() uintptr {
	if h.brk == h.base {
		return h.base
	}
	return h.brk - 1
}

// Close releases the reserved region back to the OS.
func (h *osHeap) Close() error {
	if h.region == nil {
		return nil
	}
	err := releaseRegion(h.region)
	*h = osHeap{}
	return err
}
