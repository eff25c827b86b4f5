// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"io"
	"os"
	"time"
)

// Payload gives access to the raw bytes of a staged file. It is opened once
// per submission, so implementations must support repeated Open calls.
type Payload interface {
	Open() (io.ReadCloser, error)
}

// PathPayload reads a file from the local filesystem.
type PathPayload string

// Open opens the file at the path.
func (p PathPayload) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesPayload serves an in-memory buffer.
type BytesPayload []byte

// Open returns a reader over the buffer.
func (b BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// RawFile is a file as handed to intake, before it has an identity.
type RawFile struct {
	// Name is the base filename shown to the user.
	Name string

	// Size is the byte size when known, or -1.
	Size int64

	Payload Payload
}

// StagedFile is a selected input file awaiting or undergoing conversion.
type StagedFile struct {
	// ID is unique within the staged set for the lifetime of the intake.
	ID string `json:"id" yaml:"id"`

	// DisplayName is the original filename.
	DisplayName string `json:"display_name" yaml:"display_name"`

	Size int64 `json:"size" yaml:"size"`

	// AddedAt is when the file was acquired by intake.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`

	Payload Payload `json:"-" yaml:"-"`
}
