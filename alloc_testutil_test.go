// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "testing"

// newTestAllocator returns an initialized Allocator with a small
// chunk size, so tests exercise heap-extension paths without pulling
// in the full default 4KiB chunk per extension.
func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a := New(WithChunkSize(256))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// boundedProvider wraps an *osHeap but caps the total bytes it will
// ever hand out, letting tests exercise provider exhaustion (§7
// "provider exhaustion") without reserving an enormous region.
type boundedProvider struct {
	*osHeap
	remaining int
}

func newBoundedProvider(t *testing.T, capacity int) *boundedProvider {
	t.Helper()
	h := newOSHeap(capacity)
	t.Cleanup(func() { h.Close() })
	return &boundedProvider{osHeap: h, remaining: capacity}
}

func (b *boundedProvider) Extend(n int) (uintptr, error) {
	if n > b.remaining {
		return 0, ErrHeapExhausted
	}
	old, err := b.osHeap.Extend(n)
	if err != nil {
		return 0, err
	}
	b.remaining -= n
	return old, nil
}
