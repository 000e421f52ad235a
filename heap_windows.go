// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

package malloc

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// handleMap lets releaseRegion recover the file-mapping handle that
// belongs to a previously reserved region's base address.
var handleMap = map[uintptr]syscall.Handle{}

// reserveRegion reserves size bytes of address space backed by the
// system paging file. As on unix, pages are committed lazily by the
// OS as they're touched, so a generous reservation ceiling is cheap.
func reserveRegion(size int) ([]byte, error) {
	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.InvalidHandle, nil, syscall.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", errno)
	}

	addr, errno := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if addr == 0 {
		syscall.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", errno)
	}

	handleMap[addr] = h
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func releaseRegion(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if err := syscall.UnmapViewOfFile(addr); err != nil {
		return fmt.Errorf("malloc: release region: %w", err)
	}

	handle, ok := handleMap[addr]
	if !ok {
		return errors.New("malloc: release region: unknown base address")
	}
	delete(handleMap, addr)

	if err := syscall.CloseHandle(handle); err != nil {
		return os.NewSyscallError("CloseHandle", err)
	}
	return nil
}
