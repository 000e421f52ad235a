// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "errors"

// ErrHeapExhausted is returned, wrapped, when a HeapProvider refuses
// to extend the heap. It is never fatal: callers are expected to
// handle a failed allocation themselves, the same way C's malloc
// leaves errno set and returns NULL rather than aborting.
var ErrHeapExhausted = errors.New("malloc: heap provider exhausted")
