// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

//go:build unix

package malloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// reserveRegion reserves size bytes of anonymous, zero-filled address
// space. The pages are demand-paged by the kernel, so reserving a
// large ceiling up front costs no physical memory until a page is
// actually touched — the same trick that makes sbrk-emulation over
// mmap practical.
func reserveRegion(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("malloc: reserve %d bytes: %w", size, err)
	}
	return b, nil
}

func releaseRegion(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("malloc: release region: %w", err)
	}
	return nil
}
