// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package malloc implements a single-threaded, boundary-tag memory
// allocator over a growable heap region supplied by a HeapProvider.
//
// The design follows the classic implicit-list-of-blocks /
// explicit-free-list allocator: every block carries a header and a
// footer word encoding size and allocation state, free blocks are
// threaded through a doubly linked list stored in their own payload,
// and freshly freed or extended memory is coalesced with its physical
// neighbors in O(1) using the boundary tags.
//
// Changelog
//
// 2026-07-31 Reworked from a slab/buddy design to a boundary-tag,
// explicit-free-list design over an OS-reserved (not GC-managed) heap
// region, so header/footer and free-list link words can be read and
// written as raw addresses across calls without the backing memory
// ever moving or being collected out from under a live pointer.
package malloc
