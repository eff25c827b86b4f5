// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact holds conversion results in memory until they are
// downloaded or superseded. A Handle must be released by its owner; reads
// after release fail.
package artifact

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrReleased is returned when reading a handle that has been released.
var ErrReleased = errors.New("artifact released")

var live atomic.Int64

// Live returns the number of handles created and not yet released.
func Live() int64 {
	return live.Load()
}

// Handle is an in-memory reference to a binary conversion result.
type Handle struct {
	mime     string
	filename string
	size     int

	mu       sync.RWMutex
	data     []byte
	released bool
}

// New wraps data as an artifact of the given content type.
func New(data []byte, mime, filename string) *Handle {
	live.Add(1)
	return &Handle{data: data, mime: mime, filename: filename, size: len(data)}
}

// MIME returns the artifact content type.
func (h *Handle) MIME() string { return h.mime }

// Filename returns the suggested download filename.
func (h *Handle) Filename() string { return h.filename }

// Size returns the artifact size in bytes, also after release.
func (h *Handle) Size() int { return h.size }

// Reader returns a reader over the artifact contents.
func (h *Handle) Reader() (io.Reader, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return nil, ErrReleased
	}
	return bytes.NewReader(h.data), nil
}

// WriteTo writes the artifact contents to w.
func (h *Handle) WriteTo(w io.Writer) (int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return 0, ErrReleased
	}
	n, err := w.Write(h.data)
	return int64(n), err
}

// Release frees the contents. It is safe to call more than once.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	h.data = nil
	live.Add(-1)
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}
